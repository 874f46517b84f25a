package memory

import (
	"context"
	"slices"
	"time"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
)

type PlaceRepository struct {
	acc accessor
}

func (r *PlaceRepository) Create(ctx context.Context, p *entity.Place) error {
	return r.acc.write(func(st *state) error {
		now := time.Now().UTC()
		p.ID = r.acc.id()
		p.CreatedAt, p.UpdatedAt = now, now
		st.places[p.ID] = p.Clone()
		st.order = append(st.order, p.ID)
		return nil
	})
}

func (r *PlaceRepository) GetByID(ctx context.Context, id string) (*entity.Place, error) {
	var out *entity.Place
	err := r.acc.read(func(st *state) error {
		p, ok := st.places[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = p.Clone()
		return nil
	})
	return out, err
}

func (r *PlaceRepository) ListByCreator(ctx context.Context, creatorID string) ([]*entity.Place, error) {
	out := []*entity.Place{}
	err := r.acc.read(func(st *state) error {
		for _, id := range st.order {
			if p := st.places[id]; p.Creator == creatorID {
				out = append(out, p.Clone())
			}
		}
		return nil
	})
	return out, err
}

func (r *PlaceRepository) UpdateDetails(ctx context.Context, p *entity.Place) error {
	return r.acc.write(func(st *state) error {
		cur, ok := st.places[p.ID]
		if !ok {
			return repository.ErrNotFound
		}
		cur.Title = p.Title
		cur.Description = p.Description
		cur.UpdatedAt = time.Now().UTC()
		p.UpdatedAt = cur.UpdatedAt
		return nil
	})
}

func (r *PlaceRepository) Delete(ctx context.Context, id string) error {
	return r.acc.write(func(st *state) error {
		if _, ok := st.places[id]; !ok {
			return repository.ErrNotFound
		}
		delete(st.places, id)
		st.order = slices.DeleteFunc(st.order, func(v string) bool { return v == id })
		return nil
	})
}

var _ repository.PlaceRepository = (*PlaceRepository)(nil)
