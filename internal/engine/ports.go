package engine

import "github.com/MRamiBalles/GiftQuest/server/internal/domain/stage"

// Presenter is the presentation port. Calls are fire-and-forget; the engine
// never waits on, or reads back from, the presentation.
type Presenter interface {
	ShowStage(id stage.ID)
	HideStage(id stage.ID)
	// SetProgress takes a fraction in [0, 1].
	SetProgress(fraction float64)
	// DealCards lays out count face-down cards with IDs 0..count-1.
	DealCards(count int)
	// SetCardFace reveals a card with its symbol, or hides it (symbol empty).
	SetCardFace(cardID int, symbol string, revealed bool)
	SetPadActive(padID int, active bool)
	SetStatusText(id stage.ID, text string)
	// ShowCelebration swaps the gift box for the celebration view.
	ShowCelebration()
}

// Cue is a semantic feedback event for audio and particle collaborators.
type Cue string

const (
	CueSuccess   Cue = "success"
	CueError     Cue = "error"
	CueClick     Cue = "click"
	CueMagical   Cue = "magical"
	CueCelebrate Cue = "celebrate"
)

// Feedback receives cues. Its availability never affects game state.
type Feedback interface {
	Cue(c Cue)
}

// NopPresenter discards every presentation command.
type NopPresenter struct{}

func (NopPresenter) ShowStage(stage.ID) {}
func (NopPresenter) HideStage(stage.ID) {}
func (NopPresenter) SetProgress(float64) {}
func (NopPresenter) DealCards(int) {}
func (NopPresenter) SetCardFace(int, string, bool) {}
func (NopPresenter) SetPadActive(int, bool) {}
func (NopPresenter) SetStatusText(stage.ID, string) {}
func (NopPresenter) ShowCelebration() {}

// NopFeedback discards every cue.
type NopFeedback struct{}

func (NopFeedback) Cue(Cue) {}
