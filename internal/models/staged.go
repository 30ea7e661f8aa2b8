package models

// StagedUpload is an incoming file parked on local disk between the
// multipart parse and the asset-store push. It never outlives one request.
type StagedUpload struct {
	Path        string // location inside the stage area
	FileName    string // generated staged name; becomes the asset store key
	ContentType string // media type declared by the client
	Size        int64
}
