// internal/wire/protocol.go
//
// Message kinds exchanged over the game connection.
//
// Every message starts with a one-byte kind tag followed by its fields in
// declaration order. Integers are big-endian, bools are one byte (0 or 1),
// strings are an i32 byte length followed by UTF-8 bytes.
//
// Sequencing: after a MoveCommand the server sends exactly one MoveResponse
// and one Frame. When the MoveResponse has GameOver set, a FinalResponse
// follows and the server closes the connection.

package wire

import "github.com/robalobadob/pacman/internal/game"

// Kind is the one-byte tag in front of every message.
type Kind uint8

const (
	KindAuthRequest Kind = iota + 1
	KindAuthResponse
	KindMoveCommand
	KindMoveResponse
	KindFrame
	KindFinalResponse
)

// Decoder limits; anything larger is treated as a malformed message.
const (
	MaxStringBytes = 64 << 10
	MaxFrameBytes  = 16 << 20
	MaxFruitNames  = 64
)

func (k Kind) String() string {
	switch k {
	case KindAuthRequest:
		return "AUTH_REQUEST"
	case KindAuthResponse:
		return "AUTH_RESPONSE"
	case KindMoveCommand:
		return "MOVE_COMMAND"
	case KindMoveResponse:
		return "MOVE_RESPONSE"
	case KindFrame:
		return "FRAME"
	case KindFinalResponse:
		return "FINAL_RESPONSE"
	}
	return "UNKNOWN"
}

// Message is implemented by every wire message.
type Message interface {
	Kind() Kind
}

// AuthRequest is the first message a client sends.
type AuthRequest struct {
	User     string
	Password string
}

// AuthResponse answers an AuthRequest. On !OK the server closes the connection.
type AuthResponse struct {
	OK      bool
	Message string
}

// MoveCommand asks the server to step Pac-Man once.
type MoveCommand struct {
	Direction game.Direction
}

// MoveResponse reports the outcome of one MoveCommand.
type MoveResponse struct {
	PacX            int32
	PacY            int32
	Score           int32
	HitWall         bool
	AteFruit        bool
	PointsGained    int32
	GameOver        bool
	FruitsRemaining int32
}

// Frame carries a JPEG of the board. An empty Data means no image was produced.
type Frame struct {
	Data []byte
}

// FinalResponse summarizes a finished game.
type FinalResponse struct {
	PlayerName    string
	TotalScore    int32
	ElapsedMillis int64
	FruitsEaten   []string
}

func (*AuthRequest) Kind() Kind   { return KindAuthRequest }
func (*AuthResponse) Kind() Kind  { return KindAuthResponse }
func (*MoveCommand) Kind() Kind   { return KindMoveCommand }
func (*MoveResponse) Kind() Kind  { return KindMoveResponse }
func (*Frame) Kind() Kind         { return KindFrame }
func (*FinalResponse) Kind() Kind { return KindFinalResponse }

// NewMoveResponse converts an engine step into its wire form.
func NewMoveResponse(r game.StepResult) *MoveResponse {
	return &MoveResponse{
		PacX:            r.Pos.X,
		PacY:            r.Pos.Y,
		Score:           r.Score,
		HitWall:         r.HitWall,
		AteFruit:        r.AteFruit,
		PointsGained:    r.PointsGained,
		GameOver:        r.GameOver,
		FruitsRemaining: r.FruitsRemaining,
	}
}
