package application

import (
	"context"
	"errors"
	"io"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
)

// Upload is an image received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ImageStore keeps uploaded images and hands back a reference (URL or
// path) that is stored on the record.
type ImageStore interface {
	Save(ctx context.Context, folder string, img Upload) (string, error)
	Delete(ctx context.Context, ref string) error
}

// ErrAddressNotFound is returned by a Geocoder that has no match.
var ErrAddressNotFound = errors.New("address not found")

// Geocoder turns a free-text address into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (entity.Coordinates, error)
}

// PlaceIndex is a full-text index of places. Writes are best-effort.
type PlaceIndex interface {
	Index(ctx context.Context, p *entity.Place) error
	Remove(ctx context.Context, placeID string) error
	Search(ctx context.Context, q string, size int) ([]string, error)
}

// JobPublisher puts background jobs on a queue.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}
