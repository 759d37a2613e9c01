package history

import (
	"context"
	"errors"
)

// DegradedStore stands in for a medium that could not be opened. Every
// call fails with an UnavailableError carrying the original cause, so
// ingestion keeps publishing views while history reports HIST001.
type DegradedStore struct {
	cause error
}

// Degraded returns a store that reports cause on every call.
func Degraded(cause error) *DegradedStore {
	var ue *UnavailableError
	if errors.As(cause, &ue) {
		cause = ue.Err
	}
	return &DegradedStore{cause: cause}
}

func (d *DegradedStore) Init(context.Context) error {
	return unavailable("init", d.cause)
}

func (d *DegradedStore) Record(_ context.Context, e Entry) (Entry, error) {
	return e, unavailable("record", d.cause)
}

func (d *DegradedStore) List(context.Context) ([]Entry, error) {
	return nil, unavailable("list", d.cause)
}
