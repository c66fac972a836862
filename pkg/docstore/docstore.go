package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNoDocument is returned by FindOne when nothing matches the filter.
	ErrNoDocument = errors.New("document not found")
	// ErrConflict is returned by InsertUnique when the uniqueness guard fails.
	ErrConflict = errors.New("document conflicts with an existing one")
)

// IDField is the reserved document key holding the assigned identifier.
const IDField = "_id"

// Document is a single schemaless record. Values survive a JSON round trip,
// so numbers are float64 and nested values are plain maps/slices.
type Document map[string]any

// Range is a filter value matching field values between GTE and LTE,
// inclusive on both ends. A nil bound is unbounded on that side.
type Range struct {
	GTE any
	LTE any
}

// Filter selects documents. Plain values match by equality, Range values by
// inclusive comparison. Multiple keys are combined by conjunction.
type Filter map[string]any

// FindOptions controls FindMany ordering.
type FindOptions struct {
	SortField string
	SortDesc  bool
}

type AggregateOp int

const (
	// OpCount counts matched documents.
	OpCount AggregateOp = iota
	// OpSum sums the numeric Field across matched documents.
	OpSum
	// OpCountIf counts documents whose Field equals Equals.
	OpCountIf
)

// AggregateField is one computed output of an aggregation.
type AggregateField struct {
	Name   string
	Op     AggregateOp
	Field  string
	Equals any
}

// Aggregation is a match-then-group pipeline. An empty GroupBy groups the
// whole matched set into a single result; otherwise one result is produced
// per distinct value of the GroupBy field.
type Aggregation struct {
	Match   Filter
	GroupBy string
	Fields  []AggregateField
}

// GroupResult is one group produced by Aggregate. Key is nil for a
// whole-set aggregation.
type GroupResult struct {
	Key    any
	Values map[string]float64
}

// Store is the capability set every storage backend must provide. The rest
// of the application is written only against this interface; the backend is
// picked once at startup.
type Store interface {
	FindOne(ctx context.Context, collection string, filter Filter) (Document, error)
	FindMany(ctx context.Context, collection string, filter Filter, opts *FindOptions) ([]Document, error)
	InsertOne(ctx context.Context, collection string, doc Document) (string, error)

	// InsertUnique behaves like InsertOne but fails with ErrConflict when
	// another document in the collection carries the same value for field.
	// The check-then-insert sequence is atomic with respect to concurrent
	// InsertUnique calls on the same store.
	InsertUnique(ctx context.Context, collection string, doc Document, field string) (string, error)

	UpdateOne(ctx context.Context, collection string, filter Filter, set Document) (int64, error)
	DeleteOne(ctx context.Context, collection string, filter Filter) (int64, error)
	Aggregate(ctx context.Context, collection string, agg Aggregation) ([]GroupResult, error)
}
