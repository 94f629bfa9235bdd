package storage

import (
	"io"
	"net/http"

	"postboard/config"
)

// Storage persists uploaded post images under flat names.
type Storage interface {
	Save(name string, reader io.Reader) (int64, error)
	Load(name string, writer io.Writer) (int64, error)
	Serve(name string, request *http.Request, writer http.ResponseWriter)
	Delete(name string) error
}

// Init picks the configured backend: S3 when S3_BUCKET is set, local disk
// otherwise.
func Init() Storage {
	if config.S3_BUCKET != "" {
		return NewS3Storage(config.S3_BUCKET, config.S3_REGION, config.S3_PREFIX)
	}
	return NewDiskStorage(config.UPLOADS_DIR)
}
