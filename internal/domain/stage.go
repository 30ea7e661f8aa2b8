package domain

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kmv-events/gallery-backend/internal/models"
)

// StageArea is the local directory that holds uploads between the multipart
// parse and the asset-store push. Staged names carry a timestamp plus a
// random suffix so concurrent uploads never collide.
type StageArea struct {
	dir string
}

func NewStageArea(dir string) (*StageArea, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create stage dir %s: %w", dir, err)
	}
	return &StageArea{dir: dir}, nil
}

func (s *StageArea) Stage(file io.Reader, header *multipart.FileHeader) (*models.StagedUpload, error) {
	name := fmt.Sprintf("%d_%s%s",
		time.Now().UnixNano(),
		uuid.NewString(),
		strings.ToLower(filepath.Ext(header.Filename)),
	)
	dest := filepath.Join(s.dir, name)

	dst, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("stage create %s: %w", dest, err)
	}

	written, err := io.Copy(dst, file)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dest)
		return nil, fmt.Errorf("stage write %s: %w", dest, err)
	}

	return &models.StagedUpload{
		Path:        dest,
		FileName:    name,
		ContentType: header.Header.Get("Content-Type"),
		Size:        written,
	}, nil
}

func (s *StageArea) Remove(staged *models.StagedUpload) error {
	return os.Remove(staged.Path)
}
