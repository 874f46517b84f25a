package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
	"github.com/oksasatya/go-places-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-places-api/pkg/helpers"
)

var errInjected = errors.New("injected store failure")

// faultyStore wraps a store and fails chosen writes inside transactions.
type faultyStore struct {
	repository.Store
	failAppend bool
	failRemove bool
	// returned by place deletes inside transactions when set
	deleteErr error
}

func (s *faultyStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return fn(ctx, faultyTx{Tx: tx, s: s})
	})
}

type faultyTx struct {
	repository.Tx
	s *faultyStore
}

func (t faultyTx) Users() repository.UserRepository {
	return faultyUsers{UserRepository: t.Tx.Users(), s: t.s}
}

func (t faultyTx) Places() repository.PlaceRepository {
	return faultyPlaces{PlaceRepository: t.Tx.Places(), s: t.s}
}

type faultyPlaces struct {
	repository.PlaceRepository
	s *faultyStore
}

func (p faultyPlaces) Delete(ctx context.Context, id string) error {
	if p.s.deleteErr != nil {
		return p.s.deleteErr
	}
	return p.PlaceRepository.Delete(ctx, id)
}

type faultyUsers struct {
	repository.UserRepository
	s *faultyStore
}

func (u faultyUsers) AppendPlace(ctx context.Context, userID, placeID string) error {
	if u.s.failAppend {
		return errInjected
	}
	return u.UserRepository.AppendPlace(ctx, userID, placeID)
}

func (u faultyUsers) RemovePlace(ctx context.Context, userID, placeID string) error {
	if u.s.failRemove {
		return errInjected
	}
	return u.UserRepository.RemovePlace(ctx, userID, placeID)
}

type fakeImages struct {
	mu        sync.Mutex
	n         int
	saved     []string
	deleted   []string
	saveErr   error
	deleteErr error
}

func (f *fakeImages) Save(_ context.Context, folder string, img Upload) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	if _, err := io.ReadAll(img.Body); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	ref := fmt.Sprintf("mem://%s/%d.png", folder, f.n)
	f.saved = append(f.saved, ref)
	return ref, nil
}

func (f *fakeImages) Delete(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	return f.deleteErr
}

func (f *fakeImages) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type fakeGeocoder struct {
	coords entity.Coordinates
	err    error
}

func (g fakeGeocoder) Geocode(context.Context, string) (entity.Coordinates, error) {
	return g.coords, g.err
}

type fakeIndex struct {
	indexed []string
	removed []string
	hits    []string
	err     error
}

func (x *fakeIndex) Index(_ context.Context, p *entity.Place) error {
	x.indexed = append(x.indexed, p.ID)
	return x.err
}

func (x *fakeIndex) Remove(_ context.Context, id string) error {
	x.removed = append(x.removed, id)
	return x.err
}

func (x *fakeIndex) Search(context.Context, string, int) ([]string, error) {
	return x.hits, x.err
}

type fakePublisher struct {
	jobs []any
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.jobs = append(p.jobs, body)
	return p.err
}

func pngUpload() *Upload {
	return &Upload{Filename: "pic.png", ContentType: "image/png", Body: strings.NewReader("png")}
}

func addUser(t *testing.T, s repository.Store, email string) *entity.User {
	t.Helper()
	u := &entity.User{Name: "n", Email: email, Password: "hash", Places: []string{}}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

type placeFixture struct {
	store  *faultyStore
	images *fakeImages
	index  *fakeIndex
	svc    *PlaceService
}

func newPlaceFixture() *placeFixture {
	f := &placeFixture{
		store:  &faultyStore{Store: memory.NewStore()},
		images: &fakeImages{},
		index:  &fakeIndex{},
	}
	f.svc = NewPlaceService(f.store, f.images, fakeGeocoder{coords: entity.Coordinates{Lat: 1, Lng: 2}}, f.index, helpers.NewNopLogger())
	return f
}

func (f *placeFixture) create(t *testing.T, ownerID string) *entity.Place {
	t.Helper()
	p, err := f.svc.Create(context.Background(), ownerID, CreatePlaceInput{
		Title:       "Empire State Building",
		Description: "A very tall building",
		Address:     "20 W 34th St",
		Image:       pngUpload(),
	})
	require.NoError(t, err)
	return p
}
