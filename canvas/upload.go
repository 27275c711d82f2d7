package canvas

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"canvas-earth/core"

	"github.com/sirupsen/logrus"
)

// Upload limits per object type. Oversized or mistyped files are rejected
// before any bytes reach the blob store.
const (
	maxImageSize = 10 << 20  // 10 MiB
	maxVideoSize = 100 << 20 // 100 MiB
)

var (
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
	videoExtensions = map[string]bool{".mp4": true, ".webm": true, ".mov": true}
)

// UploadParams describes an incoming file plus the geometry of the object to
// create for it.
type UploadParams struct {
	Filename    string
	ContentType string
	Size        int64
	File        io.Reader

	CreateParams
}

// UploadAndCreate persists the file through the blob-store collaborator and
// creates a canvas object pointing at the returned URL. If the blob is stored
// but the create fails, the blob is orphaned; that is logged loudly rather
// than cleaned up.
func (s *Service) UploadAndCreate(ctx context.Context, p UploadParams) (*core.CanvasObject, error) {
	if s.blobs == nil {
		return nil, &core.BlobError{Err: fmt.Errorf("no blob store configured")}
	}
	// Validate the object request before touching the blob store so most
	// failures happen with nothing written yet.
	if err := validateCreate(&p.CreateParams); err != nil {
		return nil, err
	}
	if err := checkUploadFile(&p); err != nil {
		return nil, err
	}

	url, err := s.blobs.Put(ctx, p.Filename, p.ContentType, p.File)
	if err != nil {
		return nil, &core.BlobError{Err: err}
	}

	create := p.CreateParams
	create.ContentURL = url
	object, err := s.Create(ctx, create)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"content_url": url,
			"error":       err,
		}).Warn("Blob stored but object create failed, blob is orphaned")
		return nil, err
	}
	return object, nil
}

func checkUploadFile(p *UploadParams) error {
	if p.File == nil || p.Size == 0 {
		return &core.ValidationError{Field: "file", Reason: "is empty"}
	}

	ext := strings.ToLower(path.Ext(path.Base(p.Filename)))

	switch p.ObjectType {
	case core.ObjectTypeImage:
		if p.Size > maxImageSize {
			return &core.ValidationError{Field: "file", Reason: fmt.Sprintf("image files may not exceed %dMB", maxImageSize>>20)}
		}
		if !imageExtensions[ext] {
			return &core.ValidationError{Field: "file", Reason: "image format not allowed (jpg, jpeg, png, gif, webp)"}
		}
		if p.ContentType != "" && !strings.HasPrefix(p.ContentType, "image/") {
			return &core.ValidationError{Field: "file", Reason: "only image files can be uploaded for IMAGE objects"}
		}
	case core.ObjectTypeVideo:
		if p.Size > maxVideoSize {
			return &core.ValidationError{Field: "file", Reason: fmt.Sprintf("video files may not exceed %dMB", maxVideoSize>>20)}
		}
		if !videoExtensions[ext] {
			return &core.ValidationError{Field: "file", Reason: "video format not allowed (mp4, webm, mov)"}
		}
		if p.ContentType != "" && !strings.HasPrefix(p.ContentType, "video/") {
			return &core.ValidationError{Field: "file", Reason: "only video files can be uploaded for VIDEO objects"}
		}
	default:
		return &core.ValidationError{Field: "objectType", Reason: "uploads are only supported for IMAGE and VIDEO objects"}
	}
	return nil
}
