package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines the interface for expense and income storage. Writes
// join the caller's DB transaction when the context carries one.
type Repository interface {
	// Create stores a new record of r.Kind
	Create(ctx context.Context, r *Record) error

	// Get retrieves a record by kind and ID
	Get(ctx context.Context, kind Kind, id uuid.UUID) (*Record, error)

	// List retrieves records of a kind, newest first
	List(ctx context.Context, kind Kind, filter ListFilter) ([]*Record, error)

	// Update updates an existing record
	Update(ctx context.Context, r *Record) error

	// Delete deletes a record, returning false when it did not exist
	Delete(ctx context.Context, kind Kind, id uuid.UUID) (bool, error)

	// Aggregate sums amounts per currency, category and month
	Aggregate(ctx context.Context, kind Kind, filter AggregateFilter) ([]Bucket, error)
}

// Converter converts between currencies of the rate table
type Converter interface {
	Supports(code string) bool
	Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}
