package board

import (
	"fmt"

	"github.com/seekerror/stdlib/pkg/lang"
)

// Piece is a single chess piece: its kind, its color, and the per-kind
// first-move state that matters for pawn double-steps and castling
// eligibility. The moved and direction fields are populated only for the
// kinds that need them (Pawn, Rook, King carry moved; Pawn alone carries
// direction); Queen, Bishop and Knight leave both unset.
type Piece struct {
	Kind  Kind  `json:"kind"`
	Color Color `json:"color"`

	// Direction is the pawn's forward row delta toward promotion. Present
	// iff Kind == Pawn.
	Direction lang.Optional[int8] `json:"direction,omitempty"`

	// Moved tracks whether this piece has made its first move. Present iff
	// Kind is one of Pawn, Rook, King.
	Moved lang.Optional[bool] `json:"moved,omitempty"`
}

// NewPiece constructs a fresh, unmoved piece of the given kind and color.
func NewPiece(kind Kind, color Color) Piece {
	p := Piece{Kind: kind, Color: color}
	if kind == Pawn {
		p.Direction = lang.Some(color.Forward())
	}
	if kind.hasFirstMoveState() {
		p.Moved = lang.Some(false)
	}
	return p
}

// HasMoved reports whether the piece has been moved, for kinds that track it.
// Kinds without first-move state (Queen, Bishop, Knight) always report false.
func (p Piece) HasMoved() bool {
	moved, ok := p.Moved.V()
	return ok && moved
}

// Icon returns the Unicode glyph for the piece, per color.
func (p Piece) Icon() string {
	if p.Color == White {
		switch p.Kind {
		case Pawn:
			return "♙" // ♙
		case Knight:
			return "♘" // ♘
		case Bishop:
			return "♗" // ♗
		case Rook:
			return "♖" // ♖
		case Queen:
			return "♕" // ♕
		case King:
			return "♔" // ♔
		}
	}
	switch p.Kind {
	case Pawn:
		return "♟" // ♟
	case Knight:
		return "♞" // ♞
	case Bishop:
		return "♝" // ♝
	case Rook:
		return "♜" // ♜
	case Queen:
		return "♛" // ♛
	case King:
		return "♚" // ♚
	}
	return "?"
}

func (p Piece) String() string {
	return fmt.Sprintf("%v %v", p.Color, p.Kind)
}
