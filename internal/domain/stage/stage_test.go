package stage

import "testing"

func TestOrderIsFixed(t *testing.T) {
	want := []ID{Riddle, MemoryMatch, SequenceRecall, Reveal}
	if len(Order) != len(want) {
		t.Fatalf("len(Order) = %d, want %d", len(Order), len(want))
	}
	for i, id := range want {
		if Order[i] != id {
			t.Errorf("Order[%d] = %s, want %s", i, Order[i], id)
		}
		if id.Index() != i {
			t.Errorf("%s.Index() = %d, want %d", id, id.Index(), i)
		}
	}
}

func TestValid(t *testing.T) {
	if !Reveal.Valid() {
		t.Error("Reveal should be valid")
	}
	if ID("lobby").Valid() {
		t.Error("unknown stage reported valid")
	}
	if ID("lobby").Title() != "Unknown" {
		t.Errorf("Title() = %q, want Unknown", ID("lobby").Title())
	}
}
