package services

import (
	"context"

	"gorm.io/gorm"
)

// Store is the reservation store: the gorm handle plus the one
// transaction boundary every multi-step write goes through.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) WithContext(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

// Transaction runs fn atomically. Any error returned by fn, including a
// constraint violation raised on commit, rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.DB.WithContext(ctx).Transaction(fn)
}
