package pft

import "testing"

// setEnabled forces the activation flag for the duration of a test. Tests
// that touch the flag must not run in parallel.
func setEnabled(tb testing.TB, on bool) {
	tb.Helper()
	prev := runtimeEnabled.Load()
	runtimeEnabled.Store(on)
	tb.Cleanup(func() { runtimeEnabled.Store(prev) })
}

func expectPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic, got none")
		}
	}()
	f()
}
