package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kmv-events/gallery-backend/internal/models"
)

// GalleryUpdatedPayload is the wire form of the gallery_updated event:
// the full photo list, newest first.
func GalleryUpdatedPayload(photos []models.Photo) ([]byte, error) {
	return json.Marshal(map[string]any{
		"event":  "gallery_updated",
		"photos": photos,
	})
}

// Handler upgrades the connection, sends a fresh snapshot, then holds the
// conn in the hub until the client disconnects.
func Handler(hub *Hub, snapshot func(ctx context.Context) ([]models.Photo, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, "ws upgrade failed", http.StatusBadRequest)
			return
		}

		hub.Register(conn)
		defer hub.Unregister(conn)

		// every subscriber gets the current list once on connect
		photos, err := snapshot(r.Context())
		if err == nil {
			if payload, merr := GalleryUpdatedPayload(photos); merr == nil {
				hub.Send(conn, payload)
			}
		}

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
