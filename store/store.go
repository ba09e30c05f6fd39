// Package store persists users, assignments, bids, chats and payments with GORM.
package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrStale means a conditional write matched no row: the state it was
	// conditioned on changed after it was read.
	ErrStale = errors.New("stale state")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn against a store bound to one database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// translate maps driver errors onto the store sentinels.
func translate(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(ErrNotFound, msg)
	case isDuplicate(err):
		return errors.Wrap(ErrDuplicate, msg)
	default:
		return errors.Wrap(err, msg)
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "UNIQUE constraint failed") || strings.Contains(s, "duplicate key value")
}

func affected(res *gorm.DB, msg string) error {
	if res.Error != nil {
		return translate(res.Error, msg)
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(ErrStale, msg)
	}
	return nil
}
