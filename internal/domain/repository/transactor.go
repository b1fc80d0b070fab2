package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Transactor hands out database sessions. Everything done with the tx passed
// to fn commits or rolls back together.
type Transactor interface {
	DB(ctx context.Context) *gorm.DB
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Errors translated from storage constraint violations.
var (
	ErrDuplicateEmail = errors.New("email already exists")
	ErrDuplicateSlot  = errors.New("slot already has an active appointment")
)
