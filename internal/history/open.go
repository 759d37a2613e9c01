package history

import (
	"context"
	"strings"
)

// Memory is the driver name for the process-local store.
const Memory = "memory"

// OpenStore opens the store named by driver and ensures its schema exists.
// The returned close func is never nil.
func OpenStore(ctx context.Context, driver, dsn string, retention int) (Store, func() error, error) {
	noop := func() error { return nil }

	if strings.EqualFold(driver, Memory) {
		return NewMemoryStore(retention), noop, nil
	}

	store, err := Open(strings.ToLower(driver), dsn, retention)
	if err != nil {
		return nil, noop, err
	}
	if err := store.Init(ctx); err != nil {
		store.Close()
		return nil, noop, err
	}
	return store, store.Close, nil
}
