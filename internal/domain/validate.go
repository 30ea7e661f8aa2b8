package domain

import (
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// MaxUploadBytes is the default upload ceiling (10 MiB).
const MaxUploadBytes int64 = 10 << 20

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var allowedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateUpload checks the declared metadata of an incoming file. Both the
// file extension and the declared media type must be on the allow-list;
// either one alone is attacker-controlled.
func ValidateUpload(header *multipart.FileHeader, maxBytes int64) error {
	if header == nil {
		return fmt.Errorf("%w: no image file uploaded", ErrValidation)
	}

	if header.Size > maxBytes {
		return fmt.Errorf("%w: file too large (%d bytes, limit %d)", ErrValidation, header.Size, maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: file extension %q is not an allowed image type", ErrValidation, ext)
	}

	declared := header.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || !allowedMediaTypes[mediaType] {
		return fmt.Errorf("%w: media type %q is not an allowed image type", ErrValidation, declared)
	}

	return nil
}
