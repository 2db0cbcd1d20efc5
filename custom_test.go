package bramble

import "testing"

type fakeSource struct {
	value  int
	notify func()
	opens  int
	closes int
}

func (f *fakeSource) observable() *Custom[int] {
	return NewCustom(func() int { return f.value }, func(notify func()) func() {
		f.opens++
		f.notify = notify
		return func() {
			f.closes++
			f.notify = nil
		}
	})
}

func (f *fakeSource) set(v int) {
	f.value = v
	if f.notify != nil {
		f.notify()
	}
}

func TestCustomOpensOnFirstSubscriber(t *testing.T) {
	src := &fakeSource{value: 1}
	c := src.observable()
	if c.Active() || src.opens != 0 {
		t.Fatal("stream should stay closed until subscribed")
	}
	if c.Current() != 1 {
		t.Errorf("Current = %d, want 1", c.Current())
	}

	var got []int
	unsub := c.Subscribe(func(v int) { got = append(got, v) })
	if !c.Active() || src.opens != 1 {
		t.Fatal("first subscriber should open the stream")
	}
	src.set(5)
	unsub()
	if c.Active() || src.closes != 1 {
		t.Error("last unsubscribe should close the stream")
	}
	src.set(6)
	if len(got) != 1 || got[0] != 5 {
		t.Errorf("got %v, want [5]", got)
	}
}

func TestCustomReopens(t *testing.T) {
	src := &fakeSource{}
	c := src.observable()
	for i := 0; i < 3; i++ {
		unsub := c.Subscribe(func(int) {})
		unsub()
	}
	if src.opens != 3 || src.closes != 3 {
		t.Errorf("opens = %d, closes = %d, want 3 and 3", src.opens, src.closes)
	}
}

func TestCustomOpenSourcesStat(t *testing.T) {
	src := &fakeSource{}
	c := src.observable()
	before := ReadStats().OpenSources
	unsub := c.Subscribe(func(int) {})
	if got := ReadStats().OpenSources - before; got != 1 {
		t.Errorf("OpenSources delta = %d, want 1", got)
	}
	unsub()
	if got := ReadStats().OpenSources - before; got != 0 {
		t.Errorf("OpenSources delta after close = %d, want 0", got)
	}
}

func TestCustomNotifyFromListenerIsQueued(t *testing.T) {
	src := &fakeSource{}
	c := src.observable()
	var got []int
	c.Subscribe(func(v int) { got = append(got, v) })
	s := NewState(0)
	s.Subscribe(func(v int) { src.set(v * 100) })
	_ = s.Set(1)
	if len(got) != 1 || got[0] != 100 {
		t.Errorf("got %v, want [100]", got)
	}
}
