// Package watch exposes files on disk as bramble observables. File watches
// a path with fsnotify while it has subscribers, and YAML decodes the
// contents into a typed, validated value.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/phanxgames/bramble"
)

// Contents is a snapshot of a watched file.
type Contents struct {
	Data []byte
	Err  error
}

type fileSource struct {
	path    string
	sched   *bramble.Scheduler
	current Contents
	active  bool
	gen     uint64
}

// File returns an observable of the contents of path. While subscribed,
// the file's directory is watched and every write, create, rename or
// remove of path reloads it. Reloads are dispatched onto sched, so
// subscribers are notified on the graph's goroutine during the next step.
// While inactive, Current reads the file directly.
func File(path string, sched *bramble.Scheduler) *bramble.Custom[Contents] {
	if sched == nil {
		sched = bramble.DefaultScheduler
	}
	src := &fileSource{path: filepath.Clean(path), sched: sched}
	return bramble.NewCustom(src.read, src.open)
}

func (f *fileSource) read() Contents {
	if f.active {
		return f.current
	}
	return load(f.path)
}

func load(path string) Contents {
	data, err := os.ReadFile(path)
	if err != nil {
		return Contents{Err: err}
	}
	return Contents{Data: data}
}

func (f *fileSource) open(notify func()) func() {
	f.gen++
	gen := f.gen
	f.active = true
	f.current = load(f.path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.current.Err = fmt.Errorf("watch: %w", err)
		return func() { f.active = false }
	}
	// Watch the directory so editors that replace the file are still seen.
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		_ = watcher.Close()
		f.current.Err = fmt.Errorf("watch: %w", err)
		return func() { f.active = false }
	}

	deliver := func(c Contents) {
		f.sched.Dispatch(func() {
			if !f.active || f.gen != gen {
				return
			}
			f.current = c
			notify()
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != f.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				deliver(load(f.path))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				deliver(Contents{Err: fmt.Errorf("watch: %w", err)})
			}
		}
	}()

	return func() {
		f.active = false
		cancel()
		_ = watcher.Close()
		<-done
	}
}
