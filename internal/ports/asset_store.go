package ports

import "context"

type UploadResult struct {
	URL     string // public URL of the stored object
	AssetID string // store-side identifier, needed for deletion
}

type AssetStore interface {
	// Upload pushes a staged local file to the remote store.
	Upload(ctx context.Context, localPath, fileName, contentType string) (*UploadResult, error)
	// Delete removes the object identified by assetID.
	Delete(ctx context.Context, assetID string) error
}
