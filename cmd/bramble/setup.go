package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zoobzio/capitan"

	"github.com/phanxgames/bramble"
	"github.com/phanxgames/bramble/internal/demo"
	"github.com/phanxgames/bramble/scene"
)

// app is a mounted demo tree.
type app struct {
	scene *scene.Scene
	sched *bramble.Scheduler
	demo  *demo.App
	root  *bramble.Root
}

// mountDemo applies the persistent flags and renders the demo into a new
// scene driven by sched.
func mountDemo(cmd *cobra.Command, sched *bramble.Scheduler) (*app, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	trace, _ := cmd.Flags().GetBool("trace")

	sc := scene.New()
	sc.SetDebugMode(debug)
	bramble.SetDebugMode(debug)
	if trace {
		hookTrace()
	}

	a := &app{scene: sc, sched: sched, demo: demo.New(sched)}
	a.root = bramble.NewRoot(sc, sc.Root())
	if err := a.root.Render(a.demo.Tree); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	if err := a.root.Unmount(); err != nil {
		fmt.Fprintf(os.Stderr, "unmount: %v\n", err)
	}
	capitan.Shutdown()
}

func hookTrace() {
	lifecycle := func(label string) func(context.Context, *capitan.Event) {
		return func(_ context.Context, e *capitan.Event) {
			class, _ := bramble.KeyClassName.From(e)
			path, _ := bramble.KeyPath.From(e)
			fmt.Fprintf(os.Stderr, "[TRACE] %s %s %s\n", label, class, path)
		}
	}
	failure := func(label string) func(context.Context, *capitan.Event) {
		return func(_ context.Context, e *capitan.Event) {
			msg, _ := bramble.KeyError.From(e)
			fmt.Fprintf(os.Stderr, "[TRACE] %s: %s\n", label, msg)
		}
	}
	capitan.Hook(bramble.InstanceMounted, lifecycle("mounted"))
	capitan.Hook(bramble.InstanceUnmounted, lifecycle("unmounted"))
	capitan.Hook(bramble.ListenerFailed, failure("listener failed"))
	capitan.Hook(bramble.CleanupFailed, failure("cleanup failed"))
}
