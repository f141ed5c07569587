package scope

import (
	"context"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/bjarneo/swrcache/cache"
)

// Mode overrides how cache-wrapped calls under a Store behave.
type Mode string

const (
	// ModeDefault applies no override.
	ModeDefault Mode = ""
	// ModeForceNoStore bypasses cache reads for every wrapped call, forcing
	// a fresh computation.
	ModeForceNoStore Mode = "force-no-store"
	// ModeForceCache prefers cached entries regardless of staleness.
	ModeForceCache Mode = "force-cache"
)

// policyState is the cumulative, mutable half of a Store. It is shared by
// reference across clones so policy accumulated and background work scheduled
// under a sub-context stay visible to the render machinery that owns the
// root Store.
type policyState struct {
	mu          sync.Mutex
	revalidate  cache.Revalidate
	tags        []string
	nextOrdinal int
	pending     map[string]<-chan struct{}
}

// Store is the ambient policy context for one logical render or request.
// Stores must be created with NewStore (or Clone); the zero value has no
// policy state and the accessor methods panic on it. The exported fields are
// configured by the owning machinery before the Store is installed; the
// cumulative policy (revalidate, tags, call counter, pending registry) is
// mutated through the accessor methods, which hold an internal mutex across
// each read-modify-write.
type Store struct {
	// Route is the render's route pattern, used as the diagnostic locator
	// when no request path is known.
	Route string
	// Path and Query describe the active request, when there is one.
	Path  string
	Query url.Values
	// Backend is the cache handle for this render. When nil, wrapped calls
	// fall back to the process-global registration.
	Backend cache.Backend
	// SoftTags are implicit invalidation tags derived by the owning
	// machinery; wrapped calls pass them through to the backend.
	SoftTags []string
	// FetchCache overrides the cache behavior of wrapped calls.
	FetchCache Mode
	// IsOnDemandRevalidate marks an operator-requested revalidation pass.
	IsOnDemandRevalidate bool
	// IsDraftMode marks a draft render; results are computed fresh and never
	// persisted.
	IsDraftMode bool
	// IsCacheCallback marks execution inside a cache-wrapped function.
	IsCacheCallback bool
	// RenderID identifies this render in diagnostics.
	RenderID string

	state *policyState
}

// NewStore returns a Store ready to be installed with With.
func NewStore() *Store {
	return &Store{
		RenderID: uuid.NewString(),
		state: &policyState{
			pending: make(map[string]<-chan struct{}),
		},
	}
}

// Clone returns a copy of the Store for running a sub-context with different
// flags. The cumulative policy state is shared with the original.
func (s *Store) Clone() *Store {
	c := *s
	return &c
}

func (s *Store) policy() *policyState {
	if s.state == nil {
		panic("scope: Store must be created with NewStore")
	}
	return s.state
}

type contextKey struct{}

// With returns a context carrying st.
func With(ctx context.Context, st *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, st)
}

// From returns the Store carried by ctx, if any.
func From(ctx context.Context) (*Store, bool) {
	st, ok := ctx.Value(contextKey{}).(*Store)
	return st, ok
}

// RunWith executes f with st installed for its duration.
func RunWith(ctx context.Context, st *Store, f func(ctx context.Context) error) error {
	return f(With(ctx, st))
}

// UpdatePolicy applies f to the cumulative revalidate policy and tag set
// atomically. f must not block.
func (s *Store) UpdatePolicy(f func(rev cache.Revalidate, tags []string) (cache.Revalidate, []string)) {
	st := s.policy()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.revalidate, st.tags = f(st.revalidate, st.tags)
}

// Revalidate returns the cumulative revalidate policy.
func (s *Store) Revalidate() cache.Revalidate {
	st := s.policy()
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.revalidate
}

// Tags returns a snapshot of the cumulative tag set.
func (s *Store) Tags() []string {
	st := s.policy()
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]string(nil), st.tags...)
}

// NextCallOrdinal returns the next per-render call number, starting at 1.
func (s *Store) NextCallOrdinal() int {
	st := s.policy()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.nextOrdinal++
	return st.nextOrdinal
}

// TrackPending registers an in-flight background revalidation for an
// invocation key. A later registration for the same key replaces the
// earlier one.
func (s *Store) TrackPending(invocationKey string, done <-chan struct{}) {
	st := s.policy()
	st.mu.Lock()
	st.pending[invocationKey] = done
	st.mu.Unlock()
}

// PendingCount returns the number of registered background revalidations.
func (s *Store) PendingCount() int {
	st := s.policy()
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.pending)
}

// Wait blocks until every registered background revalidation has completed
// or ctx is cancelled. The render machinery calls this before tearing the
// Store down so no refresh is lost.
func (s *Store) Wait(ctx context.Context) error {
	st := s.policy()
	for {
		st.mu.Lock()
		var done <-chan struct{}
		var key string
		for k, ch := range st.pending {
			key, done = k, ch
			break
		}
		st.mu.Unlock()
		if done == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			st.mu.Lock()
			if st.pending[key] == done {
				delete(st.pending, key)
			}
			st.mu.Unlock()
		}
	}
}
