// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., sqlrepo).
package repository

import (
	"context"
	"errors"

	"photoapp/internal/model"
)

// ErrNoRowsAffected is returned when a write statement succeeded but changed nothing.
var ErrNoRowsAffected = errors.New("no rows affected")

// PhotoRepository defines data access for photo records using SQL queries only.
// No business logic here, strictly persistence operations.
type PhotoRepository interface {
	// Create inserts a new photo record.
	Create(ctx context.Context, photo model.Photo) error

	// List returns every photo record in insertion order.
	List(ctx context.Context) ([]model.Photo, error)
}
