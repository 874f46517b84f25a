package repository

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Tx is a transaction handle. Repositories obtained from it see the
// transaction's uncommitted writes and take part in its commit or abort.
type Tx interface {
	Users() UserRepository
	Places() PlaceRepository
}

// Store gives access to both collections outside a transaction and
// demarcates transactions spanning them.
type Store interface {
	Tx
	// WithinTx runs fn inside a transaction. The transaction commits when
	// fn returns nil and aborts otherwise; the error from fn is returned
	// as is. Isolation between concurrent transactions is the store's job.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
