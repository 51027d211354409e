package engine

import (
	"math"
	"testing"

	"github.com/MRamiBalles/GiftQuest/server/internal/domain/stage"
	"github.com/MRamiBalles/GiftQuest/server/internal/events"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/logger"
)

func newTestSequencer() (*Sequencer, *recorder, *events.EventLog) {
	rec := newRecorder()
	journal := events.NewEventLog("seq-test", nil)
	return NewSequencer(rec, rec, journal, logger.NewNop()), rec, journal
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSequencerStartShowsFirstStage(t *testing.T) {
	s, rec, _ := newTestSequencer()
	if _, ok := s.Current(); ok {
		t.Fatal("current stage before Start")
	}
	s.Start()

	current, ok := s.Current()
	if !ok || current != stage.Riddle {
		t.Fatalf("Current() = %v,%v", current, ok)
	}
	if !rec.visible[stage.Riddle] || rec.progress != 0 {
		t.Fatalf("visible %v progress %v", rec.visible, rec.progress)
	}
	if rec.cueCount(CueMagical) != 1 {
		t.Error("start cue missing")
	}
}

func TestSequencerStartTwiceIsNoop(t *testing.T) {
	s, rec, _ := newTestSequencer()
	s.Start()
	s.Advance(stage.Riddle)
	calls := len(rec.calls)

	s.Start()
	if current, _ := s.Current(); current != stage.MemoryMatch {
		t.Fatalf("second Start reset the sequence to %s", current)
	}
	if len(rec.calls) != calls {
		t.Fatal("second Start produced presentation calls")
	}
}

func TestSequencerOrderAndProgress(t *testing.T) {
	s, rec, _ := newTestSequencer()
	s.Start()

	want := []float64{0, 1.0 / 3, 2.0 / 3, 1}
	for i, id := range stage.Order {
		current, ok := s.Current()
		if !ok || current != id {
			t.Fatalf("step %d: current %v, want %v", i, current, id)
		}
		if !approx(rec.progress, want[i]) {
			t.Errorf("step %d: progress %v, want %v", i, rec.progress, want[i])
		}
		visible := 0
		for _, v := range rec.visible {
			if v {
				visible++
			}
		}
		if visible != 1 || !rec.visible[id] {
			t.Fatalf("step %d: visible stages %v", i, rec.visible)
		}
		if !s.Advance(id) {
			t.Fatalf("advance from %s refused", id)
		}
	}

	if !s.Finished() || s.Index() != len(stage.Order) {
		t.Fatalf("not terminal: index %d", s.Index())
	}
	if rec.progress != 1 || s.Progress() != 1 {
		t.Errorf("final progress %v / %v", rec.progress, s.Progress())
	}
	if !rec.visible[stage.Reveal] {
		t.Error("reveal view hidden at the end")
	}
}

func TestSequencerTerminalAdvanceIsFault(t *testing.T) {
	s, rec, journal := newTestSequencer()
	s.Start()
	for _, id := range stage.Order {
		s.Advance(id)
	}
	calls := len(rec.calls)

	if s.Advance(stage.Reveal) {
		t.Fatal("advance after terminal accepted")
	}
	if s.Index() != len(stage.Order) {
		t.Fatalf("index moved to %d", s.Index())
	}
	if len(rec.calls) != calls {
		t.Fatal("terminal advance produced presentation calls")
	}
	if journal.Count(events.EventTypeFault) != 1 {
		t.Error("terminal advance not journaled as fault")
	}
	if journal.Count(events.EventTypeSessionCompleted) != 1 {
		t.Error("session completion journaled more than once")
	}
}

func TestSequencerStaleAdvanceIgnored(t *testing.T) {
	s, _, journal := newTestSequencer()
	if s.Advance(stage.Riddle) {
		t.Fatal("advance before Start accepted")
	}

	s.Start()
	s.Advance(stage.Riddle)
	if s.Advance(stage.Riddle) {
		t.Fatal("repeated advance from riddle accepted")
	}
	if s.Advance(stage.SequenceRecall) {
		t.Fatal("advance from a future stage accepted")
	}
	if current, _ := s.Current(); current != stage.MemoryMatch {
		t.Fatalf("current = %s", current)
	}
	if n := journal.Count(events.EventTypeFault); n != 3 {
		t.Errorf("faults = %d, want 3", n)
	}
}

func TestSequencerActivationHooks(t *testing.T) {
	s, _, _ := newTestSequencer()
	var fired []stage.ID
	for _, id := range stage.Order {
		id := id
		s.OnActivate(id, func() { fired = append(fired, id) })
	}
	s.Start()
	s.Advance(stage.Riddle)
	s.Advance(stage.MemoryMatch)

	if len(fired) != 3 || fired[2] != stage.SequenceRecall {
		t.Fatalf("hooks fired %v", fired)
	}
}
