package bramble

// IsObservable reports whether v is an observable of any type.
func IsObservable(v any) bool {
	_, ok := v.(Signal)
	return ok
}

// IsState reports whether v is writable: a State or an Indexed record key.
func IsState(v any) bool {
	sig, ok := v.(Signal)
	if !ok {
		return false
	}
	k := sig.Kind()
	return k == KindState || k == KindIndexed
}

// IsRecord reports whether v is a Record.
func IsRecord(v any) bool {
	sig, ok := v.(Signal)
	return ok && sig.Kind() == KindRecord
}

// IsVirtualInstance reports whether v is a *VirtualInstance.
func IsVirtualInstance(v any) bool {
	vi, ok := v.(*VirtualInstance)
	return ok && vi != nil
}

// KindOf returns the observable kind of v.
func KindOf(v any) (Kind, bool) {
	sig, ok := v.(Signal)
	if !ok {
		return 0, false
	}
	return sig.Kind(), true
}
