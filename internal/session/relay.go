package session

import (
	"context"
	"time"
)

const (
	// DefaultPollRounds caps a single poll at ~15 seconds. The bound
	// keeps every request's resource holding time finite and caps
	// worst-case staleness even if a notification is missed.
	DefaultPollRounds = 15

	// DefaultPollInterval is the sleep between state reads.
	DefaultPollInterval = time.Second
)

// Relay implements bounded-wait long polling over plain state reads.
// Concurrent pollers for the same session are independent; no
// coordination between them exists or is needed.
type Relay struct {
	store    Store
	rounds   int
	interval time.Duration
}

// NewRelay creates a relay with the default 15x1s window.
func NewRelay(store Store) *Relay {
	return NewRelayWithConfig(store, DefaultPollRounds, DefaultPollInterval)
}

// NewRelayWithConfig creates a relay with a custom poll window.
func NewRelayWithConfig(store Store, rounds int, interval time.Duration) *Relay {
	if rounds <= 0 {
		rounds = DefaultPollRounds
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Relay{store: store, rounds: rounds, interval: interval}
}

// Poll returns the presentation state for token as soon as its
// UpdateTime exceeds lastTime, or (nil, nil) when nothing newer appeared
// within the window. The wait is cancelled by ctx, so a client
// disconnect aborts the loop.
func (r *Relay) Poll(ctx context.Context, token string, lastTime int64) (*PresentationState, error) {
	for i := 0; i < r.rounds; i++ {
		state, err := r.store.GetState(ctx, token)
		if err != nil {
			return nil, err
		}
		if state != nil && state.UpdateTime > lastTime {
			return state, nil
		}

		if i == r.rounds-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.interval):
		}
	}

	return nil, nil // no newer state within the window
}
