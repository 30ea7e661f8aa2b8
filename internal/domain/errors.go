package domain

import "errors"

var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("photo not found")
	ErrAssetStore  = errors.New("asset store failure")
	ErrRecordStore = errors.New("record store failure")
)
