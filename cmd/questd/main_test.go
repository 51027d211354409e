package main

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/GiftQuest/server/internal/infra/storage"
	"github.com/MRamiBalles/GiftQuest/server/internal/network"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestSimulatePrintsJournal(t *testing.T) {
	out, err := run(t, "simulate", "--seed", "7", "--memory-mistakes", "1", "--recall-mistakes", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "session sim-7")
	assert.Contains(t, out, "finished=true")
	assert.Contains(t, out, "PAIR_MISSED")
	assert.Contains(t, out, "SEQUENCE_FAILED")
	assert.Contains(t, out, "SESSION_COMPLETED")
}

func TestSimulatePersistsForJournal(t *testing.T) {
	db := filepath.Join(t.TempDir(), "quest.db")

	_, err := run(t, "simulate", "--seed", "3", "--riddle-mistakes", "2", "--db", db, "--quiet")
	require.NoError(t, err)

	out, err := run(t, "journal", "sim-3", "--db", db, "--json")
	require.NoError(t, err)
	var recap storage.Recap
	require.NoError(t, json.Unmarshal([]byte(out), &recap))
	assert.True(t, recap.Completed)
	assert.Equal(t, 2, recap.Mistakes.Riddle)
	assert.Equal(t, "reveal", recap.LastStage)

	out, err = run(t, "journal", "--list", "--db", db)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`sim-3\s+reveal\s+\d+\s+true`), out)
}

func TestJournalUnknownSession(t *testing.T) {
	db := filepath.Join(t.TempDir(), "quest.db")
	_, err := run(t, "journal", "nope", "--db", db)
	assert.ErrorContains(t, err, `no journal for session "nope"`)
}

func TestRandomActionsAreWellFormed(t *testing.T) {
	seen := map[string]bool{}
	rng := newTestRand()
	for i := 0; i < 2000; i++ {
		a := randomAction(rng)
		seen[a.Type] = true
		assert.GreaterOrEqual(t, a.CardID, 0)
		assert.GreaterOrEqual(t, a.PadID, 0)
	}
	for _, typ := range []string{network.ActionRiddle, network.ActionCard, network.ActionPad, network.ActionOpenGift, network.ActionRestart} {
		assert.True(t, seen[typ], typ)
	}
}

func newTestRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}
