package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/kmv-events/gallery-backend/internal/config"
	"github.com/kmv-events/gallery-backend/internal/delivery"
	ws "github.com/kmv-events/gallery-backend/internal/delivery/ws"
	"github.com/kmv-events/gallery-backend/internal/domain"
	"github.com/kmv-events/gallery-backend/internal/infra"
	"go.uber.org/zap"
)

func main() {

	// LOGGER
	zcore, _ := zap.NewProduction()
	zl := logger.NewZapLogger(zcore.Sugar())

	// CONFIG
	cfg := config.FromEnv()
	for _, key := range cfg.DefaultedSecrets {
		zl.Log(logger.LogEntry{
			Level:   "warn",
			Message: "config value left on hardcoded default, do not run like this in production",
			Fields:  map[string]any{"key": key},
		})
	}

	ctx := context.Background()

	// MONGO
	client, err := infra.NewMongoClient(ctx, cfg.MongoURI)
	if err != nil {
		panic("cannot connect mongo: " + err.Error())
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	repo := infra.NewMongoPhotoRepo(client.Database(cfg.MongoDB))

	// MINIO
	ctxMinio, cancelMinio := context.WithTimeout(ctx, 10*time.Second)
	assets, err := infra.NewMinioAssetStore(ctxMinio, infra.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	cancelMinio()
	if err != nil {
		panic("cannot init asset store: " + err.Error())
	}

	// STAGE AREA
	stage, err := domain.NewStageArea(cfg.StageDir)
	if err != nil {
		panic("cannot init stage area: " + err.Error())
	}

	// SERVICE
	gallery := domain.NewGalleryService(repo, assets, stage, zl)

	// WS HUB
	hub := ws.NewHub()

	// BROADCAST LISTENER
	go func() {
		for ev := range gallery.Events() {
			payload, err := ws.GalleryUpdatedPayload(ev.Photos)
			if err != nil {
				zl.Log(logger.LogEntry{
					Level:   "error",
					Message: "gallery event marshal failed",
					Error:   err,
				})
				continue
			}
			hub.Broadcast(payload)
		}
	}()

	// HANDLERS
	h := delivery.NewGalleryHandler(gallery, zl, !cfg.Production())

	// ROUTER
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	delivery.RegisterRoutes(r, h, cfg.AdminToken)

	r.Get("/ws", ws.Handler(hub, gallery.List))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "gallery server started",
		Fields:  map[string]any{"port": cfg.Port},
	})

	// drain in-flight requests on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "server crashed",
			Error:   err,
		})
	}
}
