package blob

import (
	"context"
	"io"
	"os"

	"canvas-earth/blob/filesystem"
	"canvas-earth/blob/s3"

	"github.com/sirupsen/logrus"
)

// Store is the external blob-store collaborator: it accepts bytes plus
// metadata and returns a stable content URL. It knows nothing about canvas
// objects.
type Store interface {
	Put(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// GetStore selects a blob backend from the BLOB_STORAGE_TYPE environment
// variable. The default is local files under an uploads directory.
func GetStore() Store {
	blobType := os.Getenv("BLOB_STORAGE_TYPE")
	var store Store

	blobField := logrus.Fields{
		"blobStorageType": blobType,
	}

	switch blobType {
	case "s3":
		bucketName := os.Getenv("S3_BUCKET_NAME")
		if bucketName == "" {
			logrus.Fatal("S3_BUCKET_NAME environment variable must be set for s3 blob storage type")
		}
		blobField["bucketName"] = bucketName
		store = s3.NewStore(bucketName, os.Getenv("S3_PUBLIC_BASE_URL"))
	default:
		basePath := os.Getenv("UPLOAD_PATH")
		if basePath == "" {
			basePath = "./uploads" // Default path
		}
		blobField["basePath"] = basePath
		blobField["blobStorageType"] = "filesystem"
		store = filesystem.NewStore(basePath)
	}
	logrus.WithFields(blobField).Info("Use blob storage")
	return store
}
