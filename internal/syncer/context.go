package syncer

import (
	"sync"
	"time"
)

// Context tracks one client's last write to one session so its own changes can be recognised
// when the store echoes them back.
type Context struct {
	ClientID  string
	SessionID string

	mu        sync.Mutex
	lastWrite time.Time
}

// MarkWrite records a write stamped at.
func (c *Context) MarkWrite(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if at.After(c.lastWrite) {
		c.lastWrite = at
	}
}

func (c *Context) LastWrite() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastWrite
}

// IsEcho reports whether a stored change is this client's own write coming back.
// Timestamps compare at millisecond precision, the resolution the store keeps.
func (c *Context) IsEcho(updatedBy string, updatedAt time.Time) bool {
	if updatedBy == "" || updatedBy != c.ClientID {
		return false
	}
	last := c.LastWrite()
	if last.IsZero() {
		return false
	}
	return !updatedAt.Truncate(time.Millisecond).After(last.Truncate(time.Millisecond))
}

// Contexts is the set of live (client, session) contexts.
type Contexts struct {
	mu   sync.Mutex
	byID map[string]*Context
}

func NewContexts() *Contexts {
	return &Contexts{byID: map[string]*Context{}}
}

func contextKey(clientID, sessionID string) string {
	return clientID + "|" + sessionID
}

// Get returns the context for (clientID, sessionID), creating it on first use.
func (s *Contexts) Get(clientID, sessionID string) *Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := contextKey(clientID, sessionID)
	c, ok := s.byID[k]
	if !ok {
		c = &Context{ClientID: clientID, SessionID: sessionID}
		s.byID[k] = c
	}
	return c
}

// DropSession forgets every context of sessionID.
func (s *Contexts) DropSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, c := range s.byID {
		if c.SessionID == sessionID {
			delete(s.byID, k)
		}
	}
}

func (s *Contexts) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
