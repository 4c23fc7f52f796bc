package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrBadSession means the code does not exist or the token does not
	// match. The two cases are deliberately indistinguishable so callers
	// cannot probe which codes are live.
	ErrBadSession = errors.New("session: bad session credentials")

	// ErrCapacityExhausted means every allocation round collided. The
	// caller should retry the whole operation.
	ErrCapacityExhausted = errors.New("session: allocation failed")

	// ErrConflict means a compare-and-set found the stored value changed
	// or gone since it was read.
	ErrConflict = errors.New("session: concurrent modification")
)

// Store defines the coordination-store operations the control plane
// needs. Implementations (e.g., Redis) must remain stateless; all mutual
// exclusion is expressed through the store's atomic primitives.
type Store interface {
	// CreateIfAbsent atomically inserts a session under code with the
	// given TTL. Returns false when the code is already taken.
	CreateIfAbsent(ctx context.Context, code string, info Info, ttl time.Duration) (bool, error)

	// Get returns the session stored under code, or nil when absent.
	Get(ctx context.Context, code string) (*Info, error)

	// Renew rewrites the session with a refreshed TTL iff the stored
	// value still equals info. Returns ErrConflict otherwise, so a dead
	// or rotated session is never resurrected.
	Renew(ctx context.Context, code string, info Info, ttl time.Duration) error

	// DeleteIfUnchanged removes the session iff the stored value still
	// equals info. Returns ErrConflict otherwise.
	DeleteIfUnchanged(ctx context.Context, code string, info Info) error

	// SetState writes the presentation state for token, last writer wins.
	SetState(ctx context.Context, token string, state PresentationState) error

	// GetState returns the presentation state for token, or nil when
	// absent.
	GetState(ctx context.Context, token string) (*PresentationState, error)
}
