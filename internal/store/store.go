// Package store defines the record store backing the assessments table.
package store

import (
	"context"
	"errors"

	"oral-health-intake-service/internal/assessment"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// Store is an append-only assessment table.
type Store interface {
	// Insert writes rec in one call and sets rec.ID when the backend assigns one.
	Insert(ctx context.Context, rec *assessment.Record) error

	// FetchAll returns every stored record in store order.
	FetchAll(ctx context.Context) ([]assessment.Record, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}
