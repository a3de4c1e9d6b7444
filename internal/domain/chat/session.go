// Package chat implements the conversational RAG workflow over the guideline
// corpus: retrieval per turn, generation over injected passages, and
// in-memory multi-turn session history.
package chat

import "sync"

// Turn is one message in a session's history.
type Turn struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// session holds one conversation's history. Its mutex serialises turn
// processing: two concurrent messages for the same session run one at a time.
type session struct {
	mu    sync.Mutex
	turns []Turn
}

// Store is the in-memory session store. Safe for concurrent use; sessions
// are created on first touch.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*session)}
}

// acquire returns the session for id, creating it if needed, with its mutex
// held. The caller must call release when the turn is finished.
func (s *Store) acquire(id string) *session {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	s.mu.Unlock()
	sess.mu.Lock()
	return sess
}

func (s *session) release() {
	s.mu.Unlock()
}

// History returns a copy of the session's turns. Unknown sessions yield an
// empty slice.
func (s *Store) History(id string) []Turn {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return []Turn{}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]Turn, len(sess.turns))
	copy(out, sess.turns)
	return out
}

// Clear removes a session. Returns true if the session existed.
func (s *Store) Clear(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}
