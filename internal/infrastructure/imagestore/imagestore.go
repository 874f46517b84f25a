// Package imagestore keeps uploaded place and user images either in a
// Google Cloud Storage bucket or on local disk.
package imagestore

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/oksasatya/go-places-api/internal/application"
)

var extByType = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
}

// objectName returns folder/<uuid><ext> for an accepted image type.
func objectName(folder string, img application.Upload) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(img.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	ext, ok := extByType[ct]
	if !ok {
		return "", fmt.Errorf("%w: invalid mime type %q", application.ErrInvalidInput, img.ContentType)
	}
	return path.Join(folder, uuid.NewString()+ext), nil
}
