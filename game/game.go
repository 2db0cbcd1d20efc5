// Package game runs a bramble scene inside an Ebitengine window. Each
// Ebitengine tick advances the scheduler by one fixed step, so time-driven
// observables run at the configured TPS.
package game

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/bramble"
	"github.com/phanxgames/bramble/scene"
)

// overlayInterval is how often the overlay text is rebuilt.
const overlayInterval = 500 * time.Millisecond

var background = color.RGBA{0x1e, 0x22, 0x2a, 0xff}

// Game implements ebiten.Game for a scene driven by a scheduler.
type Game struct {
	cfg   RunConfig
	scene *scene.Scene
	sched *bramble.Scheduler
	tps   func() int

	sinceOverlay time.Duration
	overlay      string
	quit         bool
	lastErr      error
}

var _ ebiten.Game = (*Game)(nil)

// Option configures a Game.
type Option func(*Game)

// WithTPS overrides the source of the tick rate. It defaults to ebiten.TPS.
func WithTPS(tps func() int) Option {
	return func(g *Game) {
		g.tps = tps
	}
}

// New creates a Game. A nil scheduler uses bramble.DefaultScheduler.
func New(cfg RunConfig, sc *scene.Scene, sched *bramble.Scheduler, opts ...Option) *Game {
	if sc == nil {
		panic("game: scene must not be nil")
	}
	if sched == nil {
		sched = bramble.DefaultScheduler
	}
	g := &Game{cfg: cfg, scene: sc, sched: sched, tps: ebiten.TPS}
	for _, opt := range opts {
		opt(g)
	}
	g.sinceOverlay = overlayInterval
	return g
}

// Config returns the current run config.
func (g *Game) Config() RunConfig {
	return g.cfg
}

// Apply replaces the run config. Window settings take effect immediately.
func (g *Game) Apply(cfg RunConfig) {
	g.cfg = cfg
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetTPS(cfg.TPS)
}

// Quit ends the game after the current tick.
func (g *Game) Quit() {
	g.quit = true
}

// Err returns the failures reported by the most recent tick, if any.
func (g *Game) Err() error {
	return g.lastErr
}

// Update advances the scheduler by one tick.
func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	tps := g.tps()
	if tps <= 0 {
		tps = 60
	}
	dt := time.Second / time.Duration(tps)
	g.lastErr = g.sched.Advance(dt)
	if g.lastErr != nil && g.cfg.Debug {
		fmt.Fprintf(os.Stderr, "[game] warning: %v\n", g.lastErr)
	}

	if g.cfg.Overlay {
		g.sinceOverlay += dt
		if g.sinceOverlay >= overlayInterval {
			g.sinceOverlay = 0
			g.overlay = fmt.Sprintf("FPS: %.1f\nTPS: %.1f\n\n%s",
				ebiten.ActualFPS(), ebiten.ActualTPS(), g.scene.Dump())
		}
	}
	return nil
}

// Overlay returns the text drawn by the overlay.
func (g *Game) Overlay() string {
	return g.overlay
}

// Draw clears the screen and draws the overlay.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	if g.cfg.Overlay {
		ebitenutil.DebugPrint(screen, g.overlay)
	}
}

// Layout keeps the logical screen at the configured size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// Run opens the window and runs g until the window closes or Quit is called.
func Run(g *Game) error {
	g.Apply(g.cfg)
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	return nil
}
