package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
)

const userColumns = `id::text, name, email, password_hash, image_url, place_ids::text[], created_at, updated_at`

type UserRepository struct {
	db querier
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.ImageURL, &u.Places,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	if u.Places == nil {
		u.Places = []string{}
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, place_ids::text[], created_at, updated_at
	`, u.Name, u.Email, u.Password, u.ImageURL)

	if err := row.Scan(&u.ID, &u.Places, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	if u.Places == nil {
		u.Places = []string{}
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepository) AppendPlace(ctx context.Context, userID, placeID string) error {
	return r.execOne(ctx, `
		UPDATE users
		SET place_ids = array_append(place_ids, $2::uuid), updated_at = now()
		WHERE id = $1
	`, userID, placeID)
}

func (r *UserRepository) RemovePlace(ctx context.Context, userID, placeID string) error {
	return r.execOne(ctx, `
		UPDATE users
		SET place_ids = array_remove(place_ids, $2::uuid), updated_at = now()
		WHERE id = $1
	`, userID, placeID)
}

func (r *UserRepository) execOne(ctx context.Context, sql string, args ...any) error {
	res, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return translate(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
