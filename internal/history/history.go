// Package history keeps a durable, size-bounded log of past ingestions.
//
// Every write appends one entry and trims the log back to the retention
// bound inside the same transaction, so a reader never observes more than
// Retention entries and a committed insert is never trimmed by its own write.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultRetention is the number of entries kept after every write.
const DefaultRetention = 5

// UploadTimeLayout is the display format persisted in the upload_time column.
const UploadTimeLayout = "02/01/2006, 15:04"

// Entry records one successful ingestion. Entries are never mutated once
// stored; ID is assigned by the store and increases monotonically.
type Entry struct {
	ID          int64     `json:"id"`
	SourceName  string    `json:"filename" validate:"required"`
	IngestedAt  time.Time `json:"ingested_at" validate:"required"`
	UnitCount   int       `json:"units" validate:"min=0"`
	AvgPressure *float64  `json:"avg_pressure"`
}

// UploadTime formats IngestedAt the way the history table stores it.
func (e Entry) UploadTime() string {
	return e.IngestedAt.Local().Format(UploadTimeLayout)
}

// Store is the persistence contract used by the ingestion service.
type Store interface {
	// Init ensures the backing schema exists. Safe to call repeatedly.
	Init(ctx context.Context) error

	// Record appends e and trims the log to the retention bound atomically.
	// The returned entry carries its assigned ID.
	Record(ctx context.Context, e Entry) (Entry, error)

	// List returns at most Retention entries, newest first.
	List(ctx context.Context) ([]Entry, error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkEntry rejects entries that would violate the table's NOT NULL columns.
func checkEntry(e Entry) error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("invalid history entry: %w", err)
	}
	return nil
}
