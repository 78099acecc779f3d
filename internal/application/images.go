package application

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/lostudea/lostudea-api/pkg/helpers"
)

// ImageUploader turns the opaque base64 blobs submitted by the report
// forms into public object URLs. When no bucket is configured the blob is
// kept inline, which preserves the original data-URI behavior for local
// development.
type ImageUploader struct {
	GCS    *storage.Client
	Bucket string
}

func NewImageUploader(gcs *storage.Client, bucket string) *ImageUploader {
	return &ImageUploader{GCS: gcs, Bucket: bucket}
}

// Store accepts either a data URI ("data:image/png;base64,...") or a bare
// base64 payload, uploads it under reports/<userID>/, and returns the
// public URL. An empty blob returns an empty string.
func (u *ImageUploader) Store(ctx context.Context, userID, blob string) (string, error) {
	if blob == "" {
		return "", nil
	}
	if u == nil || u.GCS == nil || u.Bucket == "" {
		return blob, nil
	}

	contentType, payload := splitDataURI(blob)
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decoding image blob: %w", err)
	}

	objectPath := "reports/" + userID + "/" + uuid.NewString() + extensionFor(contentType)
	return helpers.UploadObject(ctx, u.GCS, u.Bucket, objectPath, contentType, bytes.NewReader(raw))
}

func splitDataURI(blob string) (contentType, payload string) {
	contentType = "application/octet-stream"
	payload = blob
	if !strings.HasPrefix(blob, "data:") {
		return
	}
	rest := strings.TrimPrefix(blob, "data:")
	semi := strings.Index(rest, ";base64,")
	if semi < 0 {
		return
	}
	if mt := rest[:semi]; mt != "" {
		contentType = mt
	}
	payload = rest[semi+len(";base64,"):]
	return
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
