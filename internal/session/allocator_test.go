package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collidingStore reports every code as taken for the first rejects
// attempts, recording the code lengths it saw.
type collidingStore struct {
	Store
	mu       sync.Mutex
	rejects  int
	attempts int
	lengths  []int
}

func (s *collidingStore) CreateIfAbsent(ctx context.Context, code string, info Info, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	s.lengths = append(s.lengths, len(code))
	if s.attempts <= s.rejects {
		return false, nil
	}
	return s.Store.CreateIfAbsent(ctx, code, info, ttl)
}

func TestAllocateFirstRound(t *testing.T) {
	store, _ := setupTestRedis(t)
	alloc := NewAllocator(store, time.Hour)

	code, info, err := alloc.Allocate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, info)

	assert.Len(t, code, BaseCodeLength)
	assert.Len(t, info.Token, TokenBytes*2)

	// The session must be readable under its code...
	got, err := store.Get(context.Background(), code)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, info.Token, got.Token)

	// ...and its presentation state initialized to zero.
	state, err := store.GetState(context.Background(), info.Token)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Zero(t, state.TotalPages)
	assert.Zero(t, state.CurrentPage)
	assert.Positive(t, state.UpdateTime)
}

func TestAllocateWidensOnCollision(t *testing.T) {
	inner, _ := setupTestRedis(t)
	store := &collidingStore{Store: inner, rejects: 3}
	alloc := NewAllocator(store, time.Hour)

	code, _, err := alloc.Allocate(context.Background())
	require.NoError(t, err)

	// Rounds 4, 5, 6 collided; the winning code comes from round 4 (7 digits).
	assert.Len(t, code, BaseCodeLength+3)
	assert.Equal(t, []int{4, 5, 6, 7}, store.lengths)
}

func TestAllocateCapacityExhausted(t *testing.T) {
	inner, _ := setupTestRedis(t)
	store := &collidingStore{Store: inner, rejects: AllocRounds + 100}
	alloc := NewAllocator(store, time.Hour)

	_, _, err := alloc.Allocate(context.Background())
	assert.ErrorIs(t, err, ErrCapacityExhausted)
	// Bounded: exactly one attempt per round, no endless retrying.
	assert.Equal(t, AllocRounds, store.attempts)
}

func TestAllocateConcurrentUniqueness(t *testing.T) {
	store, _ := setupTestRedis(t)
	alloc := NewAllocator(store, time.Hour)

	const n = 32
	var (
		mu    sync.Mutex
		codes = make(map[string]struct{}, n)
		errs  []error
		wg    sync.WaitGroup
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, _, err := alloc.Allocate(context.Background())
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			codes[code] = struct{}{}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)

	// Insert-if-absent guarantees no two sessions share a code.
	assert.Len(t, codes, n)
}
