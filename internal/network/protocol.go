package network

// Inbound action types.
const (
	ActionStart    = "START"
	ActionRiddle   = "RIDDLE"
	ActionCard     = "CARD"
	ActionPad      = "PAD"
	ActionOpenGift = "OPEN_GIFT"
	ActionRestart  = "RESTART"
)

// Outbound message types.
const (
	MsgShowStage   = "show_stage"
	MsgHideStage   = "hide_stage"
	MsgProgress    = "progress"
	MsgDeal        = "deal"
	MsgCardFace    = "card_face"
	MsgPad         = "pad"
	MsgStatus      = "status"
	MsgCelebration = "celebration"
	MsgCue         = "cue"
	MsgSession     = "session"
)

// PlayerAction represents an incoming command from the frontend.
type PlayerAction struct {
	Type   string `json:"type"`
	CardID int    `json:"card_id"`
	PadID  int    `json:"pad_id"`
	Answer string `json:"answer"`
}

// ServerMessage is one presentation command sent to the frontend.
// Pointer fields are set only by the message types that use them, so zero
// values (card 0, an empty status) still go out.
type ServerMessage struct {
	Type      string   `json:"type"`
	SessionID string   `json:"session_id,omitempty"`
	Stage     string   `json:"stage,omitempty"`
	Progress  *float64 `json:"progress,omitempty"`
	Count     int      `json:"count,omitempty"`
	CardID    *int     `json:"card_id,omitempty"`
	Symbol    string   `json:"symbol,omitempty"`
	Revealed  *bool    `json:"revealed,omitempty"`
	PadID     *int     `json:"pad_id,omitempty"`
	Active    *bool    `json:"active,omitempty"`
	Text      *string  `json:"text,omitempty"`
	Cue       string   `json:"cue,omitempty"`
}

func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }
func stringPtr(v string) *string  { return &v }
