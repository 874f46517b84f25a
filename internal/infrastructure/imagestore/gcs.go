package imagestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/pkg/helpers"
)

// GCS stores images as public objects in a bucket and references them by
// their public URL.
type GCS struct {
	Client *storage.Client
	Bucket string
}

func NewGCS(client *storage.Client, bucket string) *GCS {
	return &GCS{Client: client, Bucket: bucket}
}

func (s *GCS) Save(ctx context.Context, folder string, img application.Upload) (string, error) {
	name, err := objectName(folder, img)
	if err != nil {
		return "", err
	}
	return helpers.UploadObject(ctx, s.Client, s.Bucket, name, img.ContentType, img.Body)
}

// Delete removes the object behind ref. A missing object is not an error.
func (s *GCS) Delete(ctx context.Context, ref string) error {
	obj, ok := helpers.ObjectPathFromURL(s.Bucket, ref)
	if !ok {
		return fmt.Errorf("image %q is not in bucket %s", ref, s.Bucket)
	}
	err := helpers.DeleteObject(ctx, s.Client, s.Bucket, obj)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}
