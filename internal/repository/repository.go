package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "github.com/Hajjjaj37/gestion-pole-Dia/pkg/errors"
)

// Repository aggregates the data access interfaces.
type Repository struct {
	Slot      SlotRepository
	Directory DirectoryRepository

	db *gorm.DB
}

// NewRepository builds the aggregate over db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Slot:      NewSlotRepo(db),
		Directory: NewDirectoryRepo(db),
		db:        db,
	}
}

// Transaction runs fn with a Repository bound to one transaction. Calling
// Transaction on an already transactional Repository opens a savepoint, so a
// failing fn only rolls back its own writes.
//
// A Repository assembled without a database (unit tests) runs fn directly.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// isDuplicateKey reports unique-constraint violations from gorm's error
// translation or straight from the postgres driver.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if isDuplicateKey(err) {
		return pkgerrors.ErrDuplicateKey
	}
	return err
}
