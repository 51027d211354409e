package autoplay

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/GiftQuest/server/internal/events"
)

func TestPerfectRun(t *testing.T) {
	res, err := New(Options{Seed: 1}).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Finished)
	assert.Equal(t, "sim-1", res.SessionID)
	assert.Zero(t, res.Count(events.EventTypeRiddleRejected))
	assert.Zero(t, res.Count(events.EventTypePairMissed))
	assert.Zero(t, res.Count(events.EventTypeSequenceFailed))
	assert.Zero(t, res.Count(events.EventTypeFault))
	assert.Equal(t, 4, res.Count(events.EventTypePairMatched))
	assert.Equal(t, 3, res.Count(events.EventTypeRoundStarted))
	assert.Equal(t, 1, res.Count(events.EventTypeSessionCompleted))
}

func TestRunWithMistakes(t *testing.T) {
	bot := New(Options{Seed: 7, RiddleMistakes: 2, MemoryMistakes: 3, RecallMistakes: 2})
	res, err := bot.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Finished)
	assert.Equal(t, 2, res.Count(events.EventTypeRiddleRejected))
	assert.Equal(t, 3, res.Count(events.EventTypePairMissed))
	assert.Equal(t, 2, res.Count(events.EventTypeSequenceFailed))
	assert.Zero(t, res.Count(events.EventTypeFault))
	// Each recall failure restarts from round 1.
	assert.Equal(t, 3+2, res.Count(events.EventTypeRoundStarted))
	assert.Equal(t, 1.0, bot.Session().Progress())
}

func TestSameSeedSameJournal(t *testing.T) {
	run := func() []events.EventType {
		res, err := New(Options{Seed: 42, MemoryMistakes: 1, RecallMistakes: 1}).Run(context.Background())
		require.NoError(t, err)
		types := make([]events.EventType, len(res.Events))
		for i, e := range res.Events {
			types[i] = e.Type
		}
		return types
	}
	assert.Equal(t, run(), run())
}

func TestStepLimit(t *testing.T) {
	res, err := New(Options{Seed: 3, MaxSteps: 5}).Run(context.Background())
	assert.ErrorIs(t, err, ErrStepLimit)
	assert.False(t, res.Finished)
	assert.Equal(t, 5, res.Steps)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{Seed: 3}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type memPersister struct {
	mu    sync.Mutex
	count int
}

func (m *memPersister) Append(events.GameEvent) error {
	m.mu.Lock()
	m.count++
	m.mu.Unlock()
	return nil
}

func TestRunFlushesPersister(t *testing.T) {
	p := &memPersister{}
	res, err := New(Options{Seed: 5, Persister: p}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(res.Events), p.count)
}
