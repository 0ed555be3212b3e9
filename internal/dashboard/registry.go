package dashboard

import (
	"context"
	"sync"
	"time"

	"foodDeliveryAdmin/models"
)

// BackendFactory binds the backend client to a session's access token.
type BackendFactory func(accessToken string) Backend

// Registry maps session IDs to workspaces.
type Registry struct {
	newAPI BackendFactory
	deps   Deps

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewRegistry creates an empty registry.
func NewRegistry(newAPI BackendFactory, deps Deps) *Registry {
	return &Registry{newAPI: newAPI, deps: deps, workspaces: map[string]*Workspace{}}
}

// For returns the workspace of s, creating it on first use.
func (r *Registry) For(s *models.Session) *Workspace {
	r.mu.Lock()
	ws, ok := r.workspaces[s.ID]
	if !ok {
		ws = NewWorkspace(s.ID, s.UserID, r.newAPI(s.AccessToken), r.deps)
		r.workspaces[s.ID] = ws
	}
	r.mu.Unlock()
	ws.touch()
	return ws
}

// Drop forgets the workspace of a session. It is wired to session end.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	delete(r.workspaces, sessionID)
	r.mu.Unlock()
}

// Len is the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Prune drops workspaces unused for longer than maxIdle. They are rebuilt on next access.
func (r *Registry) Prune(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-maxIdle)
	n := 0
	for id, ws := range r.workspaces {
		if ws.idleSince().Before(cutoff) {
			delete(r.workspaces, id)
			n++
		}
	}
	return n
}

// Run prunes every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Prune(maxIdle)
		}
	}
}
