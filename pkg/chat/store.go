// Package chat keeps per-visitor question-and-answer conversations about the
// landmark currently on display. Conversations are keyed by an opaque session
// ID generated client-side and expire after a period of inactivity.
package chat

import (
	"sync"
	"time"

	"snaptour/pkg/model"
)

// cleanupInterval is how often Conversation() triggers lazy eviction of
// expired sessions.
const cleanupInterval = 100

// Conversation is the ordered message history of one chat session. A
// conversation is bound to a single landmark; switching landmarks starts a
// fresh transcript.
type Conversation struct {
	mu       sync.Mutex
	landmark string
	messages []model.ChatMessage
}

// Append records an exchanged message.
func (c *Conversation) Append(role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, model.ChatMessage{Role: role, Content: content})
}

// History returns a copy of the transcript so far.
func (c *Conversation) History() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// BindLandmark resets the transcript when the conversation moves to a
// different landmark. Returns true if a reset happened.
func (c *Conversation) BindLandmark(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.landmark == name {
		return false
	}
	c.landmark = name
	c.messages = nil
	return true
}

// Landmark returns the landmark this conversation is bound to.
func (c *Conversation) Landmark() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.landmark
}

type entry struct {
	conv       *Conversation
	lastAccess time.Time
}

// Store is a thread-safe conversation store with TTL-based eviction.
type Store struct {
	mu       sync.Mutex
	entries  map[string]*entry
	ttl      time.Duration
	getCalls int
}

// NewStore creates a Store that evicts conversations inactive longer than ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
	}
}

// Conversation returns the conversation for the given session, creating it if
// needed. Each call refreshes the session's last-access timestamp.
func (s *Store) Conversation(id string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getCalls++
	if s.getCalls%cleanupInterval == 0 {
		s.cleanupLocked()
	}

	e, ok := s.entries[id]
	if !ok {
		e = &entry{conv: &Conversation{}}
		s.entries[id] = e
	}
	e.lastAccess = time.Now()
	return e.conv
}

// Cleanup evicts all conversations inactive longer than the TTL.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked()
}

func (s *Store) cleanupLocked() {
	cutoff := time.Now().Add(-s.ttl)
	for id, e := range s.entries {
		if e.lastAccess.Before(cutoff) {
			delete(s.entries, id)
		}
	}
}

// Len returns the number of active conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
