// Package sink persists capture records. Every sink receives records one at a
// time, in order, and never retries.
package sink

import (
	"context"
	"errors"

	"waybackseller/internal/models"
)

// Sink errors.
var (
	// ErrDuplicate means the record was already stored and was skipped.
	ErrDuplicate = errors.New("record already exists")
	// ErrUnknownKind is returned for a sink kind the factory does not know.
	ErrUnknownKind = errors.New("unknown sink kind")
)

// Sink kinds selectable by configuration.
const (
	KindCSV = "csv"
	KindD1  = "d1"
	KindSQL = "sql"
)

// Sink stores one record.
type Sink interface {
	Record(ctx context.Context, rec models.CaptureRecord) error
}

// Preparer is implemented by sinks that need a pre-flight step before the
// fetch. An error from Prepare aborts the run.
type Preparer interface {
	Prepare(ctx context.Context) error
}
