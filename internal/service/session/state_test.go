package session

import (
	"sync"
	"testing"
)

func TestLifecycle_InitialState(t *testing.T) {
	lc := NewLifecycle("sess-1")

	if lc.State() != StateNew {
		t.Errorf("expected StateNew, got %v", lc.State())
	}
	if lc.SessionId() != "sess-1" {
		t.Errorf("expected sess-1, got %v", lc.SessionId())
	}
	if lc.IsClosed() {
		t.Error("expected IsClosed to be false")
	}
	if lc.Encounter() != 0 {
		t.Errorf("expected encounter 0, got %d", lc.Encounter())
	}
}

func TestLifecycle_HappyPath(t *testing.T) {
	lc := NewLifecycle("sess-1")

	steps := []struct {
		name string
		do   func() error
		want State
	}{
		{"submit info", lc.SubmitInfo, StateInfoSubmitted},
		{"populate", lc.Populate, StatePopulated},
		{"save", lc.Save, StateSaved},
	}
	for _, s := range steps {
		if err := s.do(); err != nil {
			t.Fatalf("%s: unexpected error: %v", s.name, err)
		}
		if lc.State() != s.want {
			t.Errorf("%s: expected %v, got %v", s.name, s.want, lc.State())
		}
	}
}

func TestLifecycle_SaveFromAnyOpenState(t *testing.T) {
	for _, setup := range []func(*Lifecycle){
		func(*Lifecycle) {},
		func(l *Lifecycle) { l.SubmitInfo() },
		func(l *Lifecycle) { l.Populate() },
		func(l *Lifecycle) { l.Populate(); l.Save() },
	} {
		lc := NewLifecycle("sess-1")
		setup(lc)
		from := lc.State()
		if err := lc.Save(); err != nil {
			t.Errorf("save from %v: unexpected error: %v", from, err)
		}
		if lc.State() != StateSaved {
			t.Errorf("save from %v: expected StateSaved, got %v", from, lc.State())
		}
	}
}

func TestLifecycle_PopulateAfterSaveStartsNewEncounter(t *testing.T) {
	lc := NewLifecycle("sess-1")
	lc.SubmitInfo()
	lc.Populate()
	lc.Save()

	if err := lc.Populate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lc.State() != StatePopulated {
		t.Errorf("expected StatePopulated, got %v", lc.State())
	}
	if lc.Encounter() != 2 {
		t.Errorf("expected encounter 2, got %d", lc.Encounter())
	}
}

func TestLifecycle_SubmitInfoKeepsPopulatedForm(t *testing.T) {
	lc := NewLifecycle("sess-1")
	lc.Populate()

	if err := lc.SubmitInfo(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lc.State() != StatePopulated {
		t.Errorf("expected StatePopulated, got %v", lc.State())
	}
}

func TestLifecycle_ClosedRejectsEverything(t *testing.T) {
	lc := NewLifecycle("sess-1")
	if !lc.Close() {
		t.Fatal("expected first close to report true")
	}

	if err := lc.SubmitInfo(); err != ErrSessionClosed {
		t.Errorf("SubmitInfo: expected ErrSessionClosed, got %v", err)
	}
	if err := lc.Populate(); err != ErrSessionClosed {
		t.Errorf("Populate: expected ErrSessionClosed, got %v", err)
	}
	if err := lc.Save(); err != ErrSessionClosed {
		t.Errorf("Save: expected ErrSessionClosed, got %v", err)
	}
	if err := lc.CheckOpen(); err != ErrSessionClosed {
		t.Errorf("CheckOpen: expected ErrSessionClosed, got %v", err)
	}
	if lc.Close() {
		t.Error("expected second close to report false")
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateNew, "NEW"},
		{StateInfoSubmitted, "INFO_SUBMITTED"},
		{StatePopulated, "POPULATED"},
		{StateSaved, "SAVED"},
		{StateClosed, "CLOSED"},
		{State(99), "UNKNOWN(99)"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestLifecycle_ConcurrentAccess(t *testing.T) {
	lc := NewLifecycle("sess-1")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 3 {
			case 0:
				lc.SubmitInfo()
			case 1:
				lc.Populate()
			default:
				lc.Save()
			}
			_ = lc.State()
		}(i)
	}
	wg.Wait()
	lc.Close()

	if !lc.IsClosed() {
		t.Error("expected closed after concurrent use")
	}
}
