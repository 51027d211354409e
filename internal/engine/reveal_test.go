package engine

import (
	"testing"
	"time"

	"github.com/MRamiBalles/GiftQuest/server/internal/domain/stage"
	"github.com/MRamiBalles/GiftQuest/server/internal/events"
)

func TestRevealOpensOnce(t *testing.T) {
	f := newFixture(1)
	r := NewReveal(f.rec, f.rec, f.clock, f.adv, f.journal, f.rules)

	r.GiftOpened()
	r.GiftOpened()
	if f.rec.cueCount(CueMagical) != 1 {
		t.Fatalf("magical cues = %d", f.rec.cueCount(CueMagical))
	}
	if r.Celebrated() || f.rec.celebrating {
		t.Fatal("celebration before the reveal delay")
	}

	f.clock.Advance(f.rules.RevealDelay)
	f.clock.Advance(time.Second)

	if !r.Celebrated() || !f.rec.celebrating {
		t.Fatal("celebration not shown")
	}
	if f.rec.progress != 1 {
		t.Errorf("progress = %v", f.rec.progress)
	}
	if f.rec.cueCount(CueCelebrate) != 1 {
		t.Error("celebrate cue missing")
	}
	if len(f.adv.calls) != 1 || f.adv.calls[0] != stage.Reveal {
		t.Fatalf("advance calls = %v", f.adv.calls)
	}
	if f.journal.Count(events.EventTypeGiftOpened) != 1 {
		t.Error("gift opening not journaled once")
	}
}
