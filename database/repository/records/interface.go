package recordsRepo

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("record not found")

// Set stores opaque JSON records, one key per record, ordered by score
// (creation time). A record may carry a unique value; at most one record
// per unique value exists at any time. Every mutation is a single atomic
// server-side operation, so concurrent writers never overwrite each other.
type Set interface {
	// Insert stores data under id unless another record already owns uniq.
	// It returns the stored (or pre-existing) data and whether it was created.
	Insert(ctx context.Context, id, uniq string, data []byte, score float64) ([]byte, bool, error)
	Get(ctx context.Context, id string) ([]byte, error)
	GetByUnique(ctx context.Context, uniq string) ([]byte, error)
	All(ctx context.Context) ([][]byte, error)
	Count(ctx context.Context) (int64, error)
	// Delete removes id and frees its unique value. It reports false when id
	// does not exist.
	Delete(ctx context.Context, id string) (bool, error)
	// Clear removes every record and returns how many there were.
	Clear(ctx context.Context) (int64, error)
}
