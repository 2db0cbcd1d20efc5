package bramble

import "testing"

func TestKindPredicates(t *testing.T) {
	rec := NewRecord(map[string]int{})
	tests := []struct {
		name       string
		v          any
		observable bool
		state      bool
		record     bool
		kind       Kind
	}{
		{"state", NewState(1), true, true, false, KindState},
		{"indexed", rec.Index("a"), true, true, false, KindIndexed},
		{"record", rec, true, false, true, KindRecord},
		{"derived", Map(NewState(1), func(v int) int { return v }), true, false, false, KindDerived},
		{"constant", Const(1), true, false, false, KindConstant},
		{"timer", NewStopwatch(StopwatchProps{}), true, false, false, KindTimed},
		{"plain", 5, false, false, false, 0},
		{"nil", nil, false, false, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsObservable(tt.v); got != tt.observable {
				t.Errorf("IsObservable = %v", got)
			}
			if got := IsState(tt.v); got != tt.state {
				t.Errorf("IsState = %v", got)
			}
			if got := IsRecord(tt.v); got != tt.record {
				t.Errorf("IsRecord = %v", got)
			}
			kind, ok := KindOf(tt.v)
			if ok != tt.observable || kind != tt.kind {
				t.Errorf("KindOf = %s, %v", kind, ok)
			}
		})
	}
}

func TestIsVirtualInstance(t *testing.T) {
	if !IsVirtualInstance(New("Folder", nil, nil)) {
		t.Error("New should build a virtual instance")
	}
	var nilInstance *VirtualInstance
	if IsVirtualInstance(nilInstance) || IsVirtualInstance("Folder") {
		t.Error("nil and plain values are not virtual instances")
	}
}

func TestKindString(t *testing.T) {
	if KindCustom.String() != "custom" || Kind(99).String() != "unknown" {
		t.Error("unexpected Kind names")
	}
}
