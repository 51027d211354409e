package network

import (
	"encoding/json"

	"github.com/MRamiBalles/GiftQuest/server/internal/domain/stage"
	"github.com/MRamiBalles/GiftQuest/server/internal/engine"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/logger"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/metrics"
)

// WirePresenter renders a session as JSON messages on one WebSocket.
// It implements engine.Presenter and engine.Feedback and never blocks:
// when the client cannot keep up the message is dropped and counted.
type WirePresenter struct {
	send    func([]byte) bool
	metrics *metrics.Collector
	logger  *logger.Logger
}

// NewWirePresenter creates a presenter writing through send.
func NewWirePresenter(send func([]byte) bool, m *metrics.Collector, log *logger.Logger) *WirePresenter {
	return &WirePresenter{send: send, metrics: m, logger: log}
}

func (p *WirePresenter) emit(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("failed to encode server message", "type", msg.Type, "error", err)
		return
	}
	if !p.send(data) {
		p.metrics.RecordWSError()
		p.logger.Debug("outbound message dropped", "type", msg.Type)
		return
	}
	p.metrics.RecordWSMessage(false)
}

func (p *WirePresenter) ShowStage(id stage.ID) {
	p.emit(ServerMessage{Type: MsgShowStage, Stage: id.String()})
}

func (p *WirePresenter) HideStage(id stage.ID) {
	p.emit(ServerMessage{Type: MsgHideStage, Stage: id.String()})
}

func (p *WirePresenter) SetProgress(fraction float64) {
	p.emit(ServerMessage{Type: MsgProgress, Progress: floatPtr(fraction)})
}

func (p *WirePresenter) DealCards(count int) {
	p.emit(ServerMessage{Type: MsgDeal, Stage: stage.MemoryMatch.String(), Count: count})
}

// SetCardFace sends the symbol only while the card is revealed.
func (p *WirePresenter) SetCardFace(cardID int, symbol string, revealed bool) {
	msg := ServerMessage{Type: MsgCardFace, CardID: intPtr(cardID), Revealed: boolPtr(revealed)}
	if revealed {
		msg.Symbol = symbol
	}
	p.emit(msg)
}

func (p *WirePresenter) SetPadActive(padID int, active bool) {
	p.emit(ServerMessage{Type: MsgPad, PadID: intPtr(padID), Active: boolPtr(active)})
}

func (p *WirePresenter) SetStatusText(id stage.ID, text string) {
	p.emit(ServerMessage{Type: MsgStatus, Stage: id.String(), Text: stringPtr(text)})
}

func (p *WirePresenter) ShowCelebration() {
	p.emit(ServerMessage{Type: MsgCelebration, Stage: stage.Reveal.String()})
}

// Cue implements engine.Feedback.
func (p *WirePresenter) Cue(c engine.Cue) {
	p.emit(ServerMessage{Type: MsgCue, Cue: string(c)})
}

// Session announces the identifier of a freshly started session.
func (p *WirePresenter) Session(id string) {
	p.emit(ServerMessage{Type: MsgSession, SessionID: id})
}
