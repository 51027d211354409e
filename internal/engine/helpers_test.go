package engine

import (
	"fmt"
	"math/rand"

	"github.com/MRamiBalles/GiftQuest/server/internal/domain/stage"
	"github.com/MRamiBalles/GiftQuest/server/internal/events"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/logger"
)

// recorder is a Presenter and Feedback that keeps the visible state.
type recorder struct {
	visible     map[stage.ID]bool
	progress    float64
	dealt       int
	faces       map[int]bool
	symbols     map[int]string
	pads        map[int]bool
	padPulses   []int
	status      map[stage.ID]string
	celebrating bool
	cues        []Cue
	calls       []string
}

func newRecorder() *recorder {
	return &recorder{
		visible: make(map[stage.ID]bool),
		faces:   make(map[int]bool),
		symbols: make(map[int]string),
		pads:    make(map[int]bool),
		status:  make(map[stage.ID]string),
	}
}

func (r *recorder) log(format string, args ...interface{}) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) ShowStage(id stage.ID) { r.visible[id] = true; r.log("show %s", id) }
func (r *recorder) HideStage(id stage.ID) { r.visible[id] = false; r.log("hide %s", id) }
func (r *recorder) SetProgress(f float64) { r.progress = f; r.log("progress %.2f", f) }
func (r *recorder) DealCards(n int) { r.dealt = n; r.log("deal %d", n) }

func (r *recorder) SetCardFace(id int, symbol string, revealed bool) {
	r.faces[id] = revealed
	r.symbols[id] = symbol
	r.log("face %d %v", id, revealed)
}

func (r *recorder) SetPadActive(id int, active bool) {
	r.pads[id] = active
	if active {
		r.padPulses = append(r.padPulses, id)
	}
	r.log("pad %d %v", id, active)
}

func (r *recorder) SetStatusText(id stage.ID, text string) { r.status[id] = text; r.log("status %s %q", id, text) }
func (r *recorder) ShowCelebration() { r.celebrating = true; r.log("celebrate") }
func (r *recorder) Cue(c Cue) { r.cues = append(r.cues, c) }

func (r *recorder) cueCount(c Cue) int {
	n := 0
	for _, x := range r.cues {
		if x == c {
			n++
		}
	}
	return n
}

// countingAdvancer records Advance calls.
type countingAdvancer struct {
	calls []stage.ID
}

func (a *countingAdvancer) Advance(from stage.ID) bool {
	a.calls = append(a.calls, from)
	return true
}

type fixture struct {
	rec     *recorder
	clock   *VirtualScheduler
	adv     *countingAdvancer
	journal *events.EventLog
	rules   Rules
	rng     *rand.Rand
}

func newFixture(seed int64) *fixture {
	return &fixture{
		rec:     newRecorder(),
		clock:   NewVirtualScheduler(),
		adv:     &countingAdvancer{},
		journal: events.NewEventLog("test-session", nil),
		rules:   DefaultRules(),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (f *fixture) memory() *MemoryMatch {
	return NewMemoryMatch(f.rec, f.rec, f.clock, f.adv, f.journal, logger.NewNop(), f.rng, f.rules)
}

func (f *fixture) recall() *SequenceRecall {
	return NewSequenceRecall(f.rec, f.rec, f.clock, f.adv, f.journal, logger.NewNop(), f.rng, f.rules)
}

// pairsOf returns card ID pairs grouped by symbol, and one mismatched pair.
func pairsOf(m *MemoryMatch) (pairs [][2]int, mismatch [2]int) {
	bySymbol := make(map[string][]int)
	var order []string
	for _, c := range m.Cards() {
		if _, ok := bySymbol[c.Symbol]; !ok {
			order = append(order, c.Symbol)
		}
		bySymbol[c.Symbol] = append(bySymbol[c.Symbol], c.ID)
	}
	for _, s := range order {
		ids := bySymbol[s]
		pairs = append(pairs, [2]int{ids[0], ids[1]})
	}
	mismatch = [2]int{bySymbol[order[0]][0], bySymbol[order[1]][0]}
	return pairs, mismatch
}
