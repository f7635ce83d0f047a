package track

import (
	"testing"
	"time"
)

func TestTracker_BeginEnd(t *testing.T) {
	tr := NewTracker()

	if tr.Size() != 0 {
		t.Errorf("Size() = %d, want 0", tr.Size())
	}

	tr.Begin("req-1")
	tr.Begin("req-2")
	if tr.Size() != 2 {
		t.Errorf("Size() = %d, want 2", tr.Size())
	}

	tr.End("req-1")
	if tr.Size() != 1 {
		t.Errorf("Size() = %d, want 1", tr.Size())
	}

	tr.End("req-2")
	if tr.Size() != 0 {
		t.Errorf("Size() = %d, want 0", tr.Size())
	}
}

func TestTracker_EndUnknownID(t *testing.T) {
	tr := NewTracker()

	tr.End("never-started")
	if tr.Size() != 0 {
		t.Errorf("Size() = %d, want 0", tr.Size())
	}
}

func TestTracker_EndIdempotent(t *testing.T) {
	tr := NewTracker()

	tr.Begin("req-1")
	tr.End("req-1")
	tr.End("req-1")
	if tr.Size() != 0 {
		t.Errorf("Size() = %d, want 0", tr.Size())
	}
}

func TestTracker_Active(t *testing.T) {
	tr := NewTracker()

	tr.Begin("old")
	time.Sleep(2 * time.Millisecond)
	tr.Begin("new")

	active := tr.Active()
	if len(active) != 2 {
		t.Fatalf("len(Active()) = %d, want 2", len(active))
	}
	if active[0].ID != "old" {
		t.Errorf("Active()[0].ID = %q, want old (oldest first)", active[0].ID)
	}
	if active[1].ID != "new" {
		t.Errorf("Active()[1].ID = %q, want new", active[1].ID)
	}
	if active[0].StartedAt.IsZero() {
		t.Error("StartedAt is zero")
	}
}

func TestTracker_ConcurrentUse(t *testing.T) {
	tr := NewTracker()

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				id := string(rune('a'+g)) + "-req"
				tr.Begin(id)
				tr.Size()
				tr.End(id)
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	if tr.Size() != 0 {
		t.Errorf("Size() = %d, want 0 after all pairs", tr.Size())
	}
}
