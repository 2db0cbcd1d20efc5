package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/phanxgames/bramble"
)

func TestCollectorCount(t *testing.T) {
	if n := testutil.CollectAndCount(NewCollector()); n != 7 {
		t.Errorf("collected %d metrics, want 7", n)
	}
}

func TestCollectorValues(t *testing.T) {
	c := newCollector(func() bramble.Stats {
		return bramble.Stats{Mounted: 3, ListenerFailures: 2}
	})
	expected := `
# HELP bramble_mounted_instances Number of currently mounted virtual instances.
# TYPE bramble_mounted_instances gauge
bramble_mounted_instances 3
# HELP bramble_listener_failures_total Total recovered listener panics.
# TYPE bramble_listener_failures_total counter
bramble_listener_failures_total 2
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"bramble_mounted_instances", "bramble_listener_failures_total")
	if err != nil {
		t.Error(err)
	}
}

func TestCollectorTracksEngine(t *testing.T) {
	c := NewCollector()
	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(c)

	before := float64(bramble.ReadStats().Subscriptions)
	s := bramble.NewState(0)
	unsub := s.Subscribe(func(int) {})
	defer unsub()

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range families {
		if f.GetName() != "bramble_subscriptions" {
			continue
		}
		if got := f.GetMetric()[0].GetGauge().GetValue(); got != before+1 {
			t.Errorf("subscriptions = %v, want %v", got, before+1)
		}
		return
	}
	t.Error("bramble_subscriptions not gathered")
}
