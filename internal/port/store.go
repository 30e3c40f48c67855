package port

import (
	"context"

	"github.com/fsk/redis-orders/internal/core/domain"
)

// KVStore is the networked key-value store the service runs on. Keys are
// namespaced strings of the form <entityType>:<id>.
type KVStore interface {
	// Get returns the scalar value at key, or domain.ErrKeyAbsent.
	Get(ctx context.Context, key string) (string, error)

	Set(ctx context.Context, key, value string) error

	// GetDocument returns the hash document at key, or domain.ErrKeyAbsent.
	GetDocument(ctx context.Context, key string) (domain.Document, error)

	// PutDocument replaces the document at key.
	PutDocument(ctx context.Context, key string, doc domain.Document) error

	Delete(ctx context.Context, key string) error

	// Keys lists keys matching a glob pattern, e.g. "product:*".
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Atomic runs fn with watchKeys under observation. Reads through the
	// AtomicUnit see committed state; staged writes are applied
	// all-or-nothing after fn returns nil, and only if no watched key was
	// modified since the watch began (domain.ErrTxConflict otherwise).
	// A non-nil error from fn discards every staged write.
	Atomic(ctx context.Context, watchKeys []string, fn func(AtomicUnit) error) error
}

// AtomicUnit is the view of the store inside one Atomic call: watched
// reads plus writes staged for the conditional commit.
type AtomicUnit interface {
	Get(ctx context.Context, key string) (string, error)
	GetDocument(ctx context.Context, key string) (domain.Document, error)
	StageSet(key, value string)
	StagePutDocument(key string, doc domain.Document)
}
