// Package stage defines the fixed, ordered phases of a Gift Quest session.
package stage

// ID identifies one stage of the quest.
type ID string

const (
	Riddle         ID = "riddle"
	MemoryMatch    ID = "memory"
	SequenceRecall ID = "sequence"
	Reveal         ID = "reveal"
)

// Order is the only sequence in which stages are ever activated.
var Order = []ID{Riddle, MemoryMatch, SequenceRecall, Reveal}

// Valid reports whether id is one of the known stages.
func (id ID) Valid() bool {
	return id.Index() >= 0
}

// Index returns the position of id in Order, or -1.
func (id ID) Index() int {
	for i, s := range Order {
		if s == id {
			return i
		}
	}
	return -1
}

func (id ID) String() string {
	return string(id)
}

// Title is the human readable name used in recaps and logs.
func (id ID) Title() string {
	switch id {
	case Riddle:
		return "Riddle"
	case MemoryMatch:
		return "Memory Match"
	case SequenceRecall:
		return "Sequence Recall"
	case Reveal:
		return "Reveal"
	default:
		return "Unknown"
	}
}
