package game

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/bramble"
	"github.com/phanxgames/bramble/scene"
)

func TestParseRunConfig(t *testing.T) {
	cfg, err := ParseRunConfig([]byte("title: demo\ntps: 30\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Title != "demo" || cfg.TPS != 30 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Width != 640 || cfg.Height != 480 || !cfg.Overlay {
		t.Errorf("unset fields should keep defaults: %+v", cfg)
	}
}

func TestParseRunConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "title: [unclosed"},
		{"zero tps", "tps: 0"},
		{"too wide", "width: 10000"},
		{"empty title", `title: ""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRunConfig([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadRunConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("width: 800\nheight: 600\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 800 || cfg.Height != 600 {
		t.Errorf("cfg = %+v", cfg)
	}
	if _, err := LoadRunConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func newGame(t *testing.T, cfg RunConfig) (*Game, *bramble.Scheduler) {
	t.Helper()
	sched := bramble.NewScheduler()
	g := New(cfg, scene.New(), sched, WithTPS(func() int { return 50 }))
	return g, sched
}

func TestUpdateAdvancesScheduler(t *testing.T) {
	g, sched := newGame(t, DefaultRunConfig())
	sw := bramble.NewStopwatch(bramble.StopwatchProps{}, bramble.WithScheduler(sched))
	sw.Subscribe(func(float64) {})

	for i := 0; i < 5; i++ {
		if err := g.Update(); err != nil {
			t.Fatal(err)
		}
	}
	if sw.Elapsed() != 100*time.Millisecond {
		t.Errorf("Elapsed = %v, want 100ms", sw.Elapsed())
	}
}

func TestUpdateKeepsListenerFailures(t *testing.T) {
	g, sched := newGame(t, DefaultRunConfig())
	ticks := bramble.NewState(0)
	ticks.Subscribe(func(int) { panic("boom") })
	sched.OnFrame(func(bramble.Frame) { _ = ticks.Update(func(v int) int { return v + 1 }) })
	if err := g.Update(); err != nil {
		t.Fatalf("listener failures should not stop the game: %v", err)
	}
	var lf *bramble.ListenerFailure
	if !errors.As(g.Err(), &lf) {
		t.Errorf("Err = %v", g.Err())
	}
}

func TestQuit(t *testing.T) {
	g, _ := newGame(t, DefaultRunConfig())
	g.Quit()
	if err := g.Update(); !errors.Is(err, ebiten.Termination) {
		t.Errorf("Update after Quit = %v", err)
	}
}

func TestOverlayShowsScene(t *testing.T) {
	g, _ := newGame(t, DefaultRunConfig())
	if err := g.Update(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(g.Overlay(), "root (Container)") || !strings.HasPrefix(g.Overlay(), "FPS:") {
		t.Errorf("overlay = %q", g.Overlay())
	}

	cfg := DefaultRunConfig()
	cfg.Overlay = false
	quiet, _ := newGame(t, cfg)
	_ = quiet.Update()
	if quiet.Overlay() != "" {
		t.Error("disabled overlay should stay empty")
	}
}

func TestLayout(t *testing.T) {
	g, _ := newGame(t, RunConfig{Title: "x", Width: 320, Height: 200, TPS: 60})
	w, h := g.Layout(1920, 1080)
	if w != 320 || h != 200 {
		t.Errorf("Layout = %d x %d", w, h)
	}
}

func TestNewRequiresScene(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic")
		}
	}()
	New(DefaultRunConfig(), nil, nil)
}
