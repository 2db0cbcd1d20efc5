package bramble_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/phanxgames/bramble"
)

// ---- Debug mode tests ------------------------------------------------------

// captureStderr runs fn with debug mode on and returns what it wrote to
// stderr.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	bramble.SetDebugMode(true)
	defer bramble.SetDebugMode(false)

	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w
	func() {
		defer func() { os.Stderr = oldStderr }()
		fn()
	}()
	w.Close()

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func TestDebugMode_SubscriberWarning(t *testing.T) {
	s := bramble.NewState(0)
	var unsubs []bramble.Unsubscribe
	output := captureStderr(t, func() {
		for i := 0; i < 1001; i++ {
			unsubs = append(unsubs, s.Subscribe(func(int) {}))
		}
	})
	for _, u := range unsubs {
		u()
	}
	if !strings.Contains(output, "warning:") || !strings.Contains(output, "1001 subscribers") {
		t.Errorf("expected subscriber warning in stderr, got: %q", output)
	}
}

func TestDebugMode_DetachedFailureReported(t *testing.T) {
	var notify func()
	src := bramble.NewCustom(func() int { return 0 }, func(n func()) func() {
		notify = n
		return func() {}
	})
	unsub := src.Subscribe(func(int) { panic("boom") })
	defer unsub()

	output := captureStderr(t, func() { notify() })
	if !strings.Contains(output, "[bramble]") || !strings.Contains(output, "boom") {
		t.Errorf("expected listener failure in stderr, got: %q", output)
	}
}

func TestDebugMode_OpenSourcesAfterTeardown(t *testing.T) {
	src := bramble.NewCustom(func() int { return 0 }, func(func()) func() { return func() {} })
	unsub := src.Subscribe(func(int) {})
	defer unsub()

	_, root := newRoot(t)
	mustRender(t, root, bramble.New("Folder", nil, nil))
	output := captureStderr(t, func() { _ = root.Unmount() })
	if !strings.Contains(output, "still open after root teardown") {
		t.Errorf("expected open sources warning in stderr, got: %q", output)
	}
}

func TestReleaseMode_Silent(t *testing.T) {
	bramble.SetDebugMode(false)
	if bramble.DebugMode() {
		t.Fatal("debug mode should be off")
	}
	s := bramble.NewState(0)
	unsub := s.Subscribe(func(int) { panic("boom") })
	defer unsub()
	if err := s.Set(1); err == nil {
		t.Error("failures are still returned in release mode")
	}
}
