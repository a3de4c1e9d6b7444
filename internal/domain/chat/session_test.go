package chat

import (
	"sync"
	"testing"
)

func TestStore_History_UnknownSession_Empty(t *testing.T) {
	t.Parallel()

	s := NewStore()
	if got := s.History("nope"); len(got) != 0 {
		t.Errorf("expected empty history, got %v", got)
	}
}

func TestStore_History_ReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewStore()
	sess := s.acquire("s1")
	sess.turns = append(sess.turns, Turn{Role: "user", Content: "hello"})
	sess.release()

	got := s.History("s1")
	got[0].Content = "mutated"

	if s.History("s1")[0].Content != "hello" {
		t.Error("History returned a reference to internal state")
	}
}

func TestStore_Clear_ReturnsWhetherSessionExisted(t *testing.T) {
	t.Parallel()

	s := NewStore()
	if s.Clear("never-seen") {
		t.Error("Clear of unknown session returned true")
	}

	sess := s.acquire("s1")
	sess.turns = append(sess.turns, Turn{Role: "user", Content: "hi"})
	sess.release()

	if !s.Clear("s1") {
		t.Error("Clear of existing session returned false")
	}
	if len(s.History("s1")) != 0 {
		t.Error("history survived Clear")
	}
	if s.Clear("s1") {
		t.Error("second Clear returned true")
	}
}

func TestStore_ConcurrentSessions_Independent(t *testing.T) {
	t.Parallel()

	s := NewStore()
	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c"} {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				sess := s.acquire(id)
				sess.turns = append(sess.turns, Turn{Role: "user", Content: id})
				sess.release()
			}
		}()
	}
	wg.Wait()

	for _, id := range []string{"a", "b", "c"} {
		if got := len(s.History(id)); got != 50 {
			t.Errorf("session %s has %d turns, want 50", id, got)
		}
	}
}
