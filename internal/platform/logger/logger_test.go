package logger

import "testing"

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("loud", false); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewAcceptsLevels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		l, err := New(lvl, lvl == "debug")
		if err != nil {
			t.Fatalf("New(%q): %v", lvl, err)
		}
		l.With("session", "s1").Event("STAGE_ACTIVATED", "s1", "riddle")
	}
}

func TestNopDiscards(t *testing.T) {
	l := NewNop()
	l.Info("hidden", "k", 1)
	l.Warn("hidden")
	l.Error("hidden")
	l.Debug("hidden")
}
