// Package card models the face-down tiles of the Memory Match stage.
package card

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrNotEnoughSymbols is returned when a deck asks for more pairs than there are distinct symbols.
var ErrNotEnoughSymbols = errors.New("not enough distinct symbols")

// Card is one tile. ID is its position in the dealt deck.
type Card struct {
	ID      int    `json:"id"`
	Symbol  string `json:"-"`
	Matched bool   `json:"matched"`
}

// DefaultSymbols is the icon set the quest draws its pairs from.
var DefaultSymbols = []string{"❤️", "🎂", "🌟", "🦄", "🎁", "🌹", "🍭", "🎵"}

// NewDeck builds 2*pairs cards from the first pairs distinct symbols and deals
// them in a uniformly random order.
func NewDeck(symbols []string, pairs int, rng *rand.Rand) ([]Card, error) {
	if pairs < 1 {
		return nil, fmt.Errorf("pairs must be >= 1, got %d", pairs)
	}

	selected := make([]string, 0, pairs)
	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		selected = append(selected, s)
		if len(selected) == pairs {
			break
		}
	}
	if len(selected) < pairs {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughSymbols, pairs, len(selected))
	}

	deck := make([]Card, 0, pairs*2)
	for _, s := range selected {
		deck = append(deck, Card{Symbol: s}, Card{Symbol: s})
	}

	// Fisher-Yates; a sort with a random comparator is not a uniform permutation.
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	for i := range deck {
		deck[i].ID = i
	}
	return deck, nil
}
