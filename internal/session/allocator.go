package session

import (
	"context"
	"time"
)

const (
	// AllocRounds bounds allocation attempts. Each round widens the code
	// by one digit, shrinking the collision probability as the set of
	// live codes grows.
	AllocRounds = 7

	// BaseCodeLength is the length of the first-round code. Short codes
	// are easy to read out and type.
	BaseCodeLength = 4
)

// Allocator creates sessions: a fresh token bound to a connection code
// claimed atomically in the store.
type Allocator struct {
	store Store
	ttl   time.Duration
}

// NewAllocator creates an allocator. ttl is the session lifetime applied
// at creation; renewal refreshes it.
func NewAllocator(store Store, ttl time.Duration) *Allocator {
	return &Allocator{store: store, ttl: ttl}
}

// Allocate creates a session and its zero presentation state. It returns
// ErrCapacityExhausted when every round collided; the caller retries the
// whole operation.
func (a *Allocator) Allocate(ctx context.Context) (string, *Info, error) {
	token, err := GenerateToken()
	if err != nil {
		return "", nil, err
	}

	info := Info{
		Token:     token,
		CreatedAt: time.Now().UnixMilli(),
	}

	for i := 0; i < AllocRounds; i++ {
		code, err := GenerateCode(BaseCodeLength + i)
		if err != nil {
			return "", nil, err
		}

		ok, err := a.store.CreateIfAbsent(ctx, code, info, a.ttl)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			// Collision: another session holds this code. Try a wider one.
			continue
		}

		state := PresentationState{
			TotalPages:  0,
			CurrentPage: 0,
			UpdateTime:  time.Now().UnixMilli(),
		}
		if err := a.store.SetState(ctx, token, state); err != nil {
			return "", nil, err
		}

		return code, &info, nil
	}

	return "", nil, ErrCapacityExhausted
}
