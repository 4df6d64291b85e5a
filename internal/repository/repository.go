package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique name is already taken.
	ErrDuplicate = errors.New("record with this name already exists")
	// ErrReferenced is returned when a row cannot be deleted because orders point at it.
	ErrReferenced = errors.New("record is still referenced by orders")
	// ErrAlreadyAdmin is returned when promoting an account that already has admin rights.
	ErrAlreadyAdmin = errors.New("account is already an admin")
	// ErrNotCompletable is returned when completing an order that is not pending or ready.
	ErrNotCompletable = errors.New("order cannot be completed in its current status")
)

// Postgres error codes translated into sentinel errors.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

type Repository struct {
	db Database
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database) *Repository {
	return &Repository{db: db}
}

// translate maps driver errors onto the package sentinels and leaves anything else untouched.
func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return ErrReferenced
		case pgUniqueViolation:
			return ErrDuplicate
		}
	}

	return err
}
