package engine

import (
	"time"

	"github.com/MRamiBalles/GiftQuest/server/internal/domain/card"
)

// Rules holds the fixed constants of a quest. They are not user tunable;
// DefaultRules is what every live session plays with.
type Rules struct {
	RiddleAnswer       string
	RiddleKeyword      string
	RiddleErrorDisplay time.Duration

	Symbols            []string
	Pairs              int
	MismatchDelay      time.Duration
	MatchCompleteDelay time.Duration

	Pads             int
	MaxRounds        int
	RecallStartDelay time.Duration
	PreRoll          time.Duration
	PlaybackInterval time.Duration
	PadPulse         time.Duration
	RoundDelay       time.Duration
	RestartDelay     time.Duration
	RecallDoneDelay  time.Duration

	RevealDelay time.Duration
}

// DefaultRules returns the quest constants.
func DefaultRules() Rules {
	return Rules{
		RiddleAnswer:       "keyboard",
		RiddleKeyword:      "key",
		RiddleErrorDisplay: 2 * time.Second,

		Symbols:            card.DefaultSymbols,
		Pairs:              4,
		MismatchDelay:      1000 * time.Millisecond, // long enough to see both faces
		MatchCompleteDelay: 1000 * time.Millisecond,

		Pads:             4,
		MaxRounds:        3,
		RecallStartDelay: 1000 * time.Millisecond,
		PreRoll:          500 * time.Millisecond,
		PlaybackInterval: 800 * time.Millisecond,
		PadPulse:         400 * time.Millisecond,
		RoundDelay:       1000 * time.Millisecond,
		RestartDelay:     1000 * time.Millisecond,
		RecallDoneDelay:  1000 * time.Millisecond,

		RevealDelay: 800 * time.Millisecond,
	}
}
