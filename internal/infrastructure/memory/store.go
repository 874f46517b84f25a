package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
)

type state struct {
	users   map[string]*entity.User
	emails  map[string]string // email -> user id
	places  map[string]*entity.Place
	order   []string // place ids in insertion order
	userSeq []string // user ids in insertion order
}

func newState() *state {
	return &state{
		users:  make(map[string]*entity.User),
		emails: make(map[string]string),
		places: make(map[string]*entity.Place),
	}
}

func (s *state) clone() *state {
	c := &state{
		users:   make(map[string]*entity.User, len(s.users)),
		emails:  make(map[string]string, len(s.emails)),
		places:  make(map[string]*entity.Place, len(s.places)),
		order:   append([]string(nil), s.order...),
		userSeq: append([]string(nil), s.userSeq...),
	}
	for k, u := range s.users {
		c.users[k] = u.Clone()
	}
	for k, v := range s.emails {
		c.emails[k] = v
	}
	for k, p := range s.places {
		c.places[k] = p.Clone()
	}
	return c
}

// Store keeps users and places in process memory. Transactions work on a
// private copy of the data under the writer lock and swap it in on
// commit, so readers never observe half-applied writes.
type Store struct {
	mu    sync.RWMutex
	data  *state
	newID func() string
}

func NewStore() *Store {
	return &Store{data: newState(), newID: uuid.NewString}
}

func (s *Store) Users() repository.UserRepository   { return &UserRepository{acc: s} }
func (s *Store) Places() repository.PlaceRepository { return &PlaceRepository{acc: s} }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{staged: s.data.clone(), newID: s.newID}
	if err := fn(ctx, t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = t.staged
	return nil
}

func (s *Store) read(fn func(st *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

func (s *Store) write(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) id() string { return s.newID() }

// tx is only used by the goroutine running the transaction function and
// the store's writer lock is held throughout, so it needs no locking.
type tx struct {
	staged *state
	newID  func() string
}

func (t *tx) Users() repository.UserRepository   { return &UserRepository{acc: t} }
func (t *tx) Places() repository.PlaceRepository { return &PlaceRepository{acc: t} }

func (t *tx) read(fn func(st *state) error) error  { return fn(t.staged) }
func (t *tx) write(fn func(st *state) error) error { return fn(t.staged) }
func (t *tx) id() string                           { return t.newID() }

// accessor abstracts committed vs. staged data for the repositories.
type accessor interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
	id() string
}

var _ repository.Store = (*Store)(nil)
