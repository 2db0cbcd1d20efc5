// Package demo builds the counter app used by the bramble command.
package demo

import (
	"fmt"
	"time"

	"github.com/tanema/gween/ease"

	"github.com/phanxgames/bramble"
	"github.com/phanxgames/bramble/scene"
)

// MilestoneEvery is how many clicks separate two milestone entries.
const MilestoneEvery = 5

// App is a click counter with animated feedback.
type App struct {
	// Count is the number of clicks.
	Count *bramble.State[int]
	// Milestones maps "mNN" keys to the count that reached them.
	Milestones *bramble.Record[string, int]
	// Tree decorates the scene root; render it with a Premade-aware Root.
	Tree *bramble.VirtualInstance

	button *bramble.VirtualInstance
}

// New builds the app. Its animations run on sched.
func New(sched *bramble.Scheduler) *App {
	a := &App{
		Count:      bramble.NewState(0),
		Milestones: bramble.NewRecord(map[string]int{}),
	}
	on := bramble.WithScheduler(sched)

	offset := bramble.NewSpring(bramble.Map(a.Count, func(c int) float64 {
		return float64(c%10) * 8
	}), on)
	barWidth := bramble.NewEased(bramble.Map(a.Count, func(c int) float64 {
		return float64(c) * 12
	}), bramble.TweenInfo{Duration: 300 * time.Millisecond, Easing: ease.OutQuad}, on)
	flash := bramble.NewTimer(bramble.TimerProps{Duration: time.Second, PlayOnChange: a.Count}, on)
	uptime := bramble.NewStopwatch(bramble.StopwatchProps{}, on)

	a.button = bramble.New("Button", bramble.Props{
		"Text":                "Click me",
		"Y":                   40,
		"X":                   offset,
		scene.EventActivated: func() { a.click() },
	}, nil)

	log := bramble.New("Container", bramble.Props{"Y": 120}, nil)
	bramble.MapChildren(log, a.Milestones, func(key string, count int) *bramble.VirtualInstance {
		return bramble.New("Text", bramble.Props{"Text": fmt.Sprintf("%d clicks!", count)}, nil)
	})

	a.Tree = bramble.Premade("Container", nil, bramble.Children{
		"Panel": bramble.New("Container", bramble.Props{"X": 20, "Y": 20}, bramble.Children{
			"Title": bramble.New("Text", bramble.Props{
				"Text":     bramble.Map(a.Count, func(c int) string { return fmt.Sprintf("Clicks: %d", c) }),
				"FontSize": 24,
			}, nil),
			"Button": a.button,
			"Bar": bramble.New("Sprite", bramble.Props{
				"Y":      80,
				"Height": 8,
				"Width":  barWidth,
				"Alpha":  bramble.Map(flash, func(v float64) float64 { return 0.4 + 0.6*v }),
			}, nil),
			"Uptime": bramble.New("Text", bramble.Props{
				"Y":    100,
				"Text": bramble.Map(uptime, func(s float64) string { return fmt.Sprintf("up %ds", int(s)) }),
			}, nil),
			"Log": log,
		}),
	})
	return a
}

// Click fires the button's Activated event as a pointer would. It fails
// when the app is not mounted.
func (a *App) Click() error {
	n, ok := a.button.Node().(*scene.Node)
	if !ok {
		return fmt.Errorf("demo: app is not mounted")
	}
	return n.Fire(scene.EventActivated)
}

func (a *App) click() {
	_ = bramble.Batch(func() {
		_ = a.Count.Update(func(c int) int { return c + 1 })
		if c := a.Count.Current(); c%MilestoneEvery == 0 {
			_ = a.Milestones.Set(fmt.Sprintf("m%02d", c), c)
		}
	})
}
