package agent

import (
	"fmt"
	"sync"
)

// Registry maps requester identities to their single live session. The
// at-most-one-live-session-per-identity invariant is enforced at insertion
// time; callers never hold two sessions for one identity.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the live session for an identity, if any.
func (r *Registry) Get(identity string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[identity]
	return s, ok
}

// Insert registers a session under its identity. It fails if a live session
// already exists for that identity.
func (r *Registry) Insert(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[s.Identity()]; ok {
		return fmt.Errorf("identity %q already owns live session %s", s.Identity(), existing.ID())
	}
	r.sessions[s.Identity()] = s
	return nil
}

// Remove clears the identity's session, if present.
func (r *Registry) Remove(identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, identity)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
