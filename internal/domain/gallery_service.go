package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/kmv-events/gallery-backend/internal/models"
	"github.com/kmv-events/gallery-backend/internal/ports"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	DefaultCaption  = "No caption"
	DefaultUploader = "Admin"

	assetPushTimeout = 60 * time.Second
)

// GalleryService orchestrates the upload and delete pipelines over the
// record store, the asset store and the local stage area. Mutations emit a
// GalleryEvent with the refreshed list on the Events channel.
type GalleryService struct {
	repo   ports.PhotoRepository
	assets ports.AssetStore
	stage  *StageArea
	log    *logger.ZapLogger

	maxUploadBytes int64
	events         chan ports.GalleryEvent
}

func NewGalleryService(
	repo ports.PhotoRepository,
	assets ports.AssetStore,
	stage *StageArea,
	log *logger.ZapLogger,
) *GalleryService {
	return &GalleryService{
		repo:           repo,
		assets:         assets,
		stage:          stage,
		log:            log,
		maxUploadBytes: MaxUploadBytes,
		events:         make(chan ports.GalleryEvent, 16),
	}
}

func (g *GalleryService) Events() <-chan ports.GalleryEvent { return g.events }

func (g *GalleryService) List(ctx context.Context) ([]models.Photo, error) {
	photos, err := g.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordStore, err)
	}
	return photos, nil
}

func (g *GalleryService) Get(ctx context.Context, id bson.ObjectID) (*models.Photo, error) {
	photo, err := g.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordStore, err)
	}
	if photo == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id.Hex())
	}
	return photo, nil
}

func (g *GalleryService) Ping(ctx context.Context) error {
	return g.repo.Ping(ctx)
}

// Upload runs the upload pipeline: validate, stage, push to the asset
// store, persist, broadcast. The staged file is removed on every exit path;
// an asset already pushed when persistence fails is NOT retracted, only
// logged (accepted inconsistency, the record store stays authoritative).
func (g *GalleryService) Upload(
	ctx context.Context,
	file io.Reader,
	header *multipart.FileHeader,
	caption, uploader string,
) (*models.Photo, error) {

	var (
		staged *models.StagedUpload
		pushed *ports.UploadResult
		photo  *models.Photo
	)

	defer func() {
		if staged == nil {
			return
		}
		if err := g.stage.Remove(staged); err != nil {
			g.log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "staged file cleanup failed",
				Fields:  map[string]any{"path": staged.Path},
				Error:   err,
			})
		}
	}()

	steps := []step{
		{name: "validate", fatal: true, run: func(ctx context.Context) error {
			return ValidateUpload(header, g.maxUploadBytes)
		}},
		{name: "stage", fatal: true, run: func(ctx context.Context) error {
			st, err := g.stage.Stage(file, header)
			if err != nil {
				return err
			}
			staged = st
			return nil
		}},
		{name: "push_asset", fatal: true, run: func(ctx context.Context) error {
			pushCtx, cancel := context.WithTimeout(ctx, assetPushTimeout)
			defer cancel()

			res, err := g.assets.Upload(pushCtx, staged.Path, staged.FileName, staged.ContentType)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrAssetStore, err)
			}
			pushed = res
			return nil
		}},
		{name: "persist", fatal: true, run: func(ctx context.Context) error {
			saved, err := g.repo.Insert(ctx, &models.Photo{
				AssetURL: pushed.URL,
				AssetID:  pushed.AssetID,
				Caption:  orDefault(caption, DefaultCaption),
				Uploader: orDefault(uploader, DefaultUploader),
			})
			if err != nil {
				g.log.Log(logger.LogEntry{
					Level:   "error",
					Message: "photo record not saved, remote asset orphaned",
					Fields:  map[string]any{"assetId": pushed.AssetID},
					Error:   err,
				})
				return fmt.Errorf("%w: %v", ErrRecordStore, err)
			}
			photo = saved
			return nil
		}},
		{name: "broadcast", fatal: false, run: g.publishGallery},
	}

	if err := g.runPipeline(ctx, "upload", steps); err != nil {
		return nil, err
	}

	g.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "photo uploaded",
		Fields: map[string]any{
			"id":      photo.ID.Hex(),
			"assetId": photo.AssetID,
			"size":    staged.Size,
		},
	})

	return photo, nil
}

// CreateFromURL registers an externally hosted photo without touching the
// stage area or the asset store.
func (g *GalleryService) CreateFromURL(
	ctx context.Context,
	assetURL, assetID, caption, uploader string,
) (*models.Photo, error) {

	if strings.TrimSpace(assetURL) == "" {
		return nil, fmt.Errorf("%w: photo URL is required", ErrValidation)
	}

	var photo *models.Photo

	steps := []step{
		{name: "persist", fatal: true, run: func(ctx context.Context) error {
			saved, err := g.repo.Insert(ctx, &models.Photo{
				AssetURL: assetURL,
				AssetID:  assetID,
				Caption:  orDefault(caption, DefaultCaption),
				Uploader: orDefault(uploader, DefaultUploader),
			})
			if err != nil {
				return fmt.Errorf("%w: %v", ErrRecordStore, err)
			}
			photo = saved
			return nil
		}},
		{name: "broadcast", fatal: false, run: g.publishGallery},
	}

	if err := g.runPipeline(ctx, "create", steps); err != nil {
		return nil, err
	}

	return photo, nil
}

// Delete runs the delete pipeline. The asset-store delete is best-effort:
// its failure is logged and the record is removed anyway, so the database
// stays consistent even when the remote store misbehaves.
func (g *GalleryService) Delete(ctx context.Context, id bson.ObjectID) (*models.Photo, error) {
	var photo *models.Photo

	steps := []step{
		{name: "lookup", fatal: true, run: func(ctx context.Context) error {
			p, err := g.repo.GetByID(ctx, id)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrRecordStore, err)
			}
			if p == nil {
				return fmt.Errorf("%w: %s", ErrNotFound, id.Hex())
			}
			photo = p
			return nil
		}},
		{name: "delete_asset", fatal: false, run: func(ctx context.Context) error {
			if photo.AssetID == "" {
				return nil
			}
			if err := g.assets.Delete(ctx, photo.AssetID); err != nil {
				return fmt.Errorf("%w: %v", ErrAssetStore, err)
			}
			return nil
		}},
		{name: "delete_record", fatal: true, run: func(ctx context.Context) error {
			if err := g.repo.DeleteByID(ctx, id); err != nil {
				return fmt.Errorf("%w: %v", ErrRecordStore, err)
			}
			return nil
		}},
		{name: "broadcast", fatal: false, run: g.publishGallery},
	}

	if err := g.runPipeline(ctx, "delete", steps); err != nil {
		return nil, err
	}

	g.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "photo removed",
		Fields:  map[string]any{"id": id.Hex()},
	})

	return photo, nil
}

// publishGallery re-reads the newest-first list and emits it on the events
// channel. The send never blocks a request: a full buffer drops the update.
func (g *GalleryService) publishGallery(ctx context.Context) error {
	photos, err := g.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRecordStore, err)
	}

	select {
	case g.events <- ports.GalleryEvent{Photos: photos}:
		return nil
	default:
		return errors.New("event buffer full, gallery update dropped")
	}
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
