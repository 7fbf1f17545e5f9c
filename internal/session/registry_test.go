package session_test

import (
	"context"
	"errors"
	"testing"

	"sliver/internal/session"
)

// stubSession is a minimal in-memory Session for registry tests.
type stubSession struct {
	state   session.State
	initErr error
	closed  int
}

func (s *stubSession) Initialize(ctx context.Context) error {
	if s.initErr != nil {
		s.state = session.StateErrored
		return s.initErr
	}
	s.state = session.StateActive
	return nil
}

func (s *stubSession) Slice(ctx context.Context, offsets []int, text string) (session.SliceResult, error) {
	return session.SliceResult{}, nil
}

func (s *stubSession) Diagram(ctx context.Context, text string) (string, error) {
	return "", nil
}

func (s *stubSession) State() session.State { return s.state }

func (s *stubSession) Close() error {
	s.closed++
	s.state = session.StateClosed
	return nil
}

func TestRegistryReplaceClosesPrevious(t *testing.T) {
	reg := session.NewRegistry()

	first := &stubSession{state: session.StateActive}
	second := &stubSession{state: session.StateActive}

	reg.Replace(first)
	reg.Replace(second)

	if first.closed != 1 {
		t.Errorf("first session closed %d times, want 1", first.closed)
	}
	if reg.Current() != second {
		t.Error("second session is not current")
	}

	reg.Drop()
	if second.closed != 1 {
		t.Errorf("second session closed %d times, want 1", second.closed)
	}
	if reg.Current() != nil {
		t.Error("expected no current session after Drop")
	}
}

func TestRegistryEnsureReturnsActiveSession(t *testing.T) {
	reg := session.NewRegistry()
	active := &stubSession{state: session.StateActive}
	reg.Replace(active)

	got, err := reg.Ensure(context.Background(), func() session.Session {
		t.Fatal("factory must not run while an active session exists")
		return nil
	})
	if err != nil || got != active {
		t.Fatalf("Ensure = %v, %v; want the active session", got, err)
	}
}

func TestRegistryEnsureEstablishesLazily(t *testing.T) {
	reg := session.NewRegistry()
	fresh := &stubSession{}

	got, err := reg.Ensure(context.Background(), func() session.Session { return fresh })
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if got != fresh || got.State() != session.StateActive {
		t.Fatalf("Ensure = %v in state %s", got, got.State())
	}
	if reg.Current() != fresh {
		t.Error("established session is not current")
	}
}

func TestRegistryEnsureReplacesErroredSession(t *testing.T) {
	reg := session.NewRegistry()
	errored := &stubSession{state: session.StateErrored}
	reg.Replace(errored)

	fresh := &stubSession{}
	if _, err := reg.Ensure(context.Background(), func() session.Session { return fresh }); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if errored.closed != 1 {
		t.Errorf("errored session closed %d times, want 1", errored.closed)
	}
	if reg.Current() != fresh {
		t.Error("fresh session is not current")
	}
}

func TestRegistryEnsureKeepsFailedSessionObservable(t *testing.T) {
	reg := session.NewRegistry()
	failing := &stubSession{initErr: errors.New("refused")}

	if _, err := reg.Ensure(context.Background(), func() session.Session { return failing }); err == nil {
		t.Fatal("expected establishment error")
	}
	if reg.Current() != failing {
		t.Error("failed session should stay installed for state reporting")
	}
	if reg.Current().State() != session.StateErrored {
		t.Errorf("State = %s, want errored", reg.Current().State())
	}
}
