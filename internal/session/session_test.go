package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/snapcurator/internal/testutil"
)

type fakeSetter struct {
	mu  sync.Mutex
	set []string
}

func (f *fakeSetter) SetSession(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set = append(f.set, name+"="+value)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestTracker_SkipsRepeats(t *testing.T) {
	s := &fakeSetter{}
	tr := NewTracker(s)

	if !tr.Apply("session", "a") {
		t.Error("first apply not stored")
	}
	if tr.Apply("session", "a") {
		t.Error("repeat apply stored")
	}
	if tr.Apply("session", "") {
		t.Error("empty value stored")
	}
	if !tr.Apply("session", "b") {
		t.Error("new value not stored")
	}
	if len(s.set) != 2 || s.set[1] != "session=b" {
		t.Errorf("set = %v", s.set)
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(file, []byte("backend:\n  session_cookie: a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, file, testutil.Logger(), func() { reloads.Add(1) })
	}()
	time.Sleep(100 * time.Millisecond)

	// Unrelated files in the same directory are ignored.
	_ = os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644)
	_ = os.WriteFile(file, []byte("backend:\n  session_cookie: b\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return reloads.Load() == 1
	}, "config change did not trigger a reload")

	// Rewriting identical content does not reload again.
	_ = os.WriteFile(file, []byte("backend:\n  session_cookie: b\n"), 0o644)
	time.Sleep(500 * time.Millisecond)
	if n := reloads.Load(); n != 1 {
		t.Errorf("reloads = %d, want 1", n)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop")
	}
}
