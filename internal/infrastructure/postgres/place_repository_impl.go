package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
)

const placeColumns = `id::text, title, description, address, lat, lng, image_url, creator_id::text, created_at, updated_at`

type PlaceRepository struct {
	db querier
}

func scanPlace(row pgx.Row) (*entity.Place, error) {
	p := &entity.Place{}
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Address, &p.Location.Lat, &p.Location.Lng,
		&p.ImageURL, &p.Creator, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (r *PlaceRepository) Create(ctx context.Context, p *entity.Place) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO places (title, description, address, lat, lng, image_url, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text, created_at, updated_at
	`, p.Title, p.Description, p.Address, p.Location.Lat, p.Location.Lng, p.ImageURL, p.Creator)

	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PlaceRepository) GetByID(ctx context.Context, id string) (*entity.Place, error) {
	return scanPlace(r.db.QueryRow(ctx, `SELECT `+placeColumns+` FROM places WHERE id = $1`, id))
}

func (r *PlaceRepository) ListByCreator(ctx context.Context, creatorID string) ([]*entity.Place, error) {
	rows, err := r.db.Query(ctx, `SELECT `+placeColumns+` FROM places WHERE creator_id = $1 ORDER BY seq`, creatorID)
	if err != nil {
		if errors.Is(translate(err), repository.ErrNotFound) {
			return []*entity.Place{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	out := []*entity.Place{}
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		if errors.Is(translate(err), repository.ErrNotFound) {
			return []*entity.Place{}, nil
		}
		return nil, err
	}
	return out, nil
}

func (r *PlaceRepository) UpdateDetails(ctx context.Context, p *entity.Place) error {
	row := r.db.QueryRow(ctx, `
		UPDATE places
		SET title = $1, description = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at
	`, p.Title, p.Description, p.ID)

	if err := row.Scan(&p.UpdatedAt); err != nil {
		return translate(err)
	}
	return nil
}

func (r *PlaceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM places WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.PlaceRepository = (*PlaceRepository)(nil)
