package application

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
)

const (
	placeImageFolder = "places"
	cleanupTimeout   = 10 * time.Second
	indexTimeout     = 3 * time.Second
)

var (
	placesCreated       = expvar.NewInt("places_created")
	placesDeleted       = expvar.NewInt("places_deleted")
	imageCleanupFailure = expvar.NewInt("image_cleanup_failures")
)

type PlaceService struct {
	Store    repository.Store
	Images   ImageStore
	Geocoder Geocoder
	Index    PlaceIndex // optional
	Logger   *logrus.Logger

	cleanup sync.WaitGroup
}

func NewPlaceService(store repository.Store, images ImageStore, geocoder Geocoder, index PlaceIndex, logger *logrus.Logger) *PlaceService {
	return &PlaceService{
		Store:    store,
		Images:   images,
		Geocoder: geocoder,
		Index:    index,
		Logger:   logger,
	}
}

type CreatePlaceInput struct {
	Title       string
	Description string
	Address     string
	Image       *Upload
}

type UpdatePlaceInput struct {
	Title       string
	Description string
}

// authorize is the single ownership check for every place mutation.
func authorize(creatorID, callerID string) error {
	if callerID == "" || creatorID != callerID {
		return ErrForbidden
	}
	return nil
}

func (s *PlaceService) GetByID(ctx context.Context, placeID string) (*entity.Place, error) {
	p, err := s.Store.Places().GetByID(ctx, placeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlaceNotFound
		}
		return nil, persistence("load place", err)
	}
	return p, nil
}

// ListByOwner returns the owner's places in insertion order. An unknown
// owner is ErrUserNotFound; a known owner without places gets an empty
// slice.
func (s *PlaceService) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Place, error) {
	if _, err := s.Store.Users().GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, persistence("load owner", err)
	}
	places, err := s.Store.Places().ListByCreator(ctx, ownerID)
	if err != nil {
		return nil, persistence("list places", err)
	}
	return places, nil
}

// Create stores a new place owned by ownerID and appends it to the
// owner's place list in one transaction.
func (s *PlaceService) Create(ctx context.Context, ownerID string, in CreatePlaceInput) (*entity.Place, error) {
	if in.Image == nil {
		return nil, fmt.Errorf("%w: image is required", ErrInvalidInput)
	}
	if _, err := s.Store.Users().GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, persistence("load owner", err)
	}

	coords, err := s.Geocoder.Geocode(ctx, in.Address)
	if err != nil {
		if errors.Is(err, ErrAddressNotFound) {
			return nil, fmt.Errorf("%w: could not find location for the specified address", ErrInvalidInput)
		}
		return nil, fmt.Errorf("geocode address: %w", err)
	}

	imageURL, err := s.Images.Save(ctx, placeImageFolder, *in.Image)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	place := &entity.Place{
		Title:       in.Title,
		Description: in.Description,
		Address:     in.Address,
		Location:    coords,
		ImageURL:    imageURL,
		Creator:     ownerID,
	}
	err = s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.Places().Create(ctx, place); err != nil {
			return persistence("insert place", err)
		}
		if err := tx.Users().AppendPlace(ctx, ownerID, place.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return persistence("append place to owner", err)
		}
		return nil
	})
	if err != nil {
		// the record never became visible, so neither should its image
		s.scheduleImageDelete(imageURL, place.ID)
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrPersistence) {
			return nil, err
		}
		return nil, persistence("create place", err)
	}

	placesCreated.Add(1)
	s.index(ctx, place)
	s.logger().WithFields(logrus.Fields{"place_id": place.ID, "user_id": ownerID}).Info("place created")
	return place, nil
}

// Update changes title and description of a place owned by callerID.
func (s *PlaceService) Update(ctx context.Context, placeID, callerID string, in UpdatePlaceInput) (*entity.Place, error) {
	place, err := s.GetByID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if err := authorize(place.Creator, callerID); err != nil {
		return nil, err
	}

	place.Title = in.Title
	place.Description = in.Description
	if err := s.Store.Places().UpdateDetails(ctx, place); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlaceNotFound
		}
		return nil, persistence("update place", err)
	}

	s.index(ctx, place)
	return place, nil
}

// Delete removes a place owned by callerID together with its entry in
// the owner's place list. The image is cleaned up after commit on a best
// effort basis.
func (s *PlaceService) Delete(ctx context.Context, placeID, callerID string) error {
	var deleted *entity.Place
	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		place, err := tx.Places().GetByID(ctx, placeID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrPlaceNotFound
			}
			return persistence("load place", err)
		}
		owner, err := tx.Users().GetByID(ctx, place.Creator)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return persistence("load owner", err)
		}
		if err := authorize(owner.ID, callerID); err != nil {
			return err
		}
		if err := tx.Places().Delete(ctx, place.ID); err != nil {
			// a concurrent delete won the race
			if errors.Is(err, repository.ErrNotFound) {
				return ErrPlaceNotFound
			}
			return persistence("delete place", err)
		}
		if err := tx.Users().RemovePlace(ctx, owner.ID, place.ID); err != nil {
			return persistence("remove place from owner", err)
		}
		deleted = place
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrPlaceNotFound), errors.Is(err, ErrUserNotFound),
			errors.Is(err, ErrForbidden), errors.Is(err, ErrPersistence):
			return err
		default:
			return persistence("delete place", err)
		}
	}

	placesDeleted.Add(1)
	s.scheduleImageDelete(deleted.ImageURL, deleted.ID)
	s.unindex(ctx, deleted.ID)
	s.logger().WithFields(logrus.Fields{"place_id": deleted.ID, "user_id": callerID}).Info("place deleted")
	return nil
}

// Search looks places up in the full-text index. Without an index it
// returns no results.
func (s *PlaceService) Search(ctx context.Context, q string, size int) ([]*entity.Place, error) {
	out := []*entity.Place{}
	q = strings.TrimSpace(q)
	if s.Index == nil || q == "" {
		return out, nil
	}
	ids, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, fmt.Errorf("search places: %w", err)
	}
	for _, id := range ids {
		p, err := s.Store.Places().GetByID(ctx, id)
		if err != nil {
			// stale index entry
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, persistence("load place", err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Wait blocks until pending image clean-ups have finished.
func (s *PlaceService) Wait() {
	s.cleanup.Wait()
}

func (s *PlaceService) scheduleImageDelete(ref, placeID string) {
	if ref == "" || s.Images == nil {
		return
	}
	s.cleanup.Add(1)
	go func() {
		defer s.cleanup.Done()
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if err := s.Images.Delete(ctx, ref); err != nil {
			imageCleanupFailure.Add(1)
			s.logger().WithError(err).WithFields(logrus.Fields{"place_id": placeID, "image": ref}).
				Warn("image cleanup failed")
		}
	}()
}

func (s *PlaceService) index(ctx context.Context, p *entity.Place) {
	if s.Index == nil {
		return
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexTimeout)
	defer cancel()
	if err := s.Index.Index(c, p); err != nil {
		s.logger().WithError(err).WithField("place_id", p.ID).Warn("search index failed")
	}
}

func (s *PlaceService) unindex(ctx context.Context, placeID string) {
	if s.Index == nil {
		return
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexTimeout)
	defer cancel()
	if err := s.Index.Remove(c, placeID); err != nil {
		s.logger().WithError(err).WithField("place_id", placeID).Warn("search unindex failed")
	}
}

func (s *PlaceService) logger() *logrus.Logger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}
