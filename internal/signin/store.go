package signin

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type storedFlow struct {
	flow    *Flow
	touched time.Time
}

// FlowStore keeps OTP flows between requests, keyed by an attempt ID the browser holds
// in a cookie. Flows untouched for longer than the TTL are dropped.
type FlowStore struct {
	mu    sync.Mutex
	flows map[string]*storedFlow
	ttl   time.Duration
	now   func() time.Time
}

// NewFlowStore creates a store; ttl <= 0 means 15 minutes.
func NewFlowStore(ttl time.Duration) *FlowStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &FlowStore{flows: map[string]*storedFlow{}, ttl: ttl, now: time.Now}
}

// Put stores f under a new attempt ID and returns the ID.
func (s *FlowStore) Put(f *Flow) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.flows[id] = &storedFlow{flow: f, touched: s.now()}
	s.mu.Unlock()
	return id
}

// Get returns the flow for id and refreshes its TTL. Expired flows are not returned.
func (s *FlowStore) Get(id string) (*Flow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sf, ok := s.flows[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(sf.touched) > s.ttl {
		delete(s.flows, id)
		return nil, false
	}
	sf.touched = now
	return sf.flow, true
}

// Delete forgets a flow.
func (s *FlowStore) Delete(id string) {
	s.mu.Lock()
	delete(s.flows, id)
	s.mu.Unlock()
}

// Len is the number of stored flows, expired or not.
func (s *FlowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flows)
}

// Purge drops expired flows and returns how many were dropped.
func (s *FlowStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, sf := range s.flows {
		if now.Sub(sf.touched) > s.ttl {
			delete(s.flows, id)
			n++
		}
	}
	return n
}

// Run purges every interval until ctx is done.
func (s *FlowStore) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Purge()
		}
	}
}
