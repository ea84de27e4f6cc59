package conversation

import "context"

// Store keeps conversation state keyed by platform identity. Implementations
// return sentinel.ErrNotFound from Get when no conversation exists; Clear is
// idempotent.
type Store interface {
	Get(ctx context.Context, id int64) (*State, error)
	Set(ctx context.Context, id int64, state *State) error
	Clear(ctx context.Context, id int64) error
}
