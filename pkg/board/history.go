package board

import (
	"fmt"

	"github.com/seekerror/stdlib/pkg/lang"
)

// History is a single undo record: where a piece moved from and to, what it
// displaced (if anything), and whether this move was the one that first
// flipped the mover's Moved flag.
type History struct {
	From Square `json:"from"`
	To   Square `json:"to"`

	Captured lang.Optional[Piece] `json:"captured,omitempty"`
	HasMoved lang.Optional[bool]  `json:"has_moved,omitempty"`
}

func (h History) String() string {
	if captured, ok := h.Captured.V(); ok {
		return fmt.Sprintf("%v-%vx%v", h.From, h.To, captured.Kind)
	}
	return fmt.Sprintf("%v-%v", h.From, h.To)
}
