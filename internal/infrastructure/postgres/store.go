package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-places-api/internal/domain/repository"
)

const (
	codeUniqueViolation = "23505"
	codeInvalidText     = "22P02"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// repository code runs inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Users() repository.UserRepository   { return &UserRepository{db: s.pool} }
func (s *Store) Places() repository.PlaceRepository { return &PlaceRepository{db: s.pool} }

// WithinTx runs fn in a read-committed transaction. Row locks taken by
// the UPDATE on the owner's row serialise writers for the same user.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, txRepos{tx: tx})
	})
}

type txRepos struct {
	tx pgx.Tx
}

func (t txRepos) Users() repository.UserRepository   { return &UserRepository{db: t.tx} }
func (t txRepos) Places() repository.PlaceRepository { return &PlaceRepository{db: t.tx} }

// translate maps driver errors onto repository sentinels.
func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeInvalidText {
		// malformed uuid in a lookup: nothing can match it
		return repository.ErrNotFound
	}
	return err
}

var _ repository.Store = (*Store)(nil)
