package memory

import (
	"context"
	"slices"
	"time"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
)

type UserRepository struct {
	acc accessor
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	return r.acc.write(func(st *state) error {
		if _, exists := st.emails[u.Email]; exists {
			return repository.ErrDuplicateEmail
		}
		now := time.Now().UTC()
		u.ID = r.acc.id()
		u.CreatedAt, u.UpdatedAt = now, now
		if u.Places == nil {
			u.Places = []string{}
		}
		st.users[u.ID] = u.Clone()
		st.emails[u.Email] = u.ID
		st.userSeq = append(st.userSeq, u.ID)
		return nil
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.acc.read(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = u.Clone()
		return nil
	})
	return out, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.acc.read(func(st *state) error {
		id, ok := st.emails[email]
		if !ok {
			return repository.ErrNotFound
		}
		out = st.users[id].Clone()
		return nil
	})
	return out, err
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	var out []*entity.User
	err := r.acc.read(func(st *state) error {
		out = make([]*entity.User, 0, len(st.userSeq))
		for _, id := range st.userSeq {
			out = append(out, st.users[id].Clone())
		}
		return nil
	})
	return out, err
}

func (r *UserRepository) AppendPlace(ctx context.Context, userID, placeID string) error {
	return r.acc.write(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return repository.ErrNotFound
		}
		u.Places = append(u.Places, placeID)
		u.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *UserRepository) RemovePlace(ctx context.Context, userID, placeID string) error {
	return r.acc.write(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return repository.ErrNotFound
		}
		u.Places = slices.DeleteFunc(u.Places, func(id string) bool { return id == placeID })
		u.UpdatedAt = time.Now().UTC()
		return nil
	})
}

var _ repository.UserRepository = (*UserRepository)(nil)
