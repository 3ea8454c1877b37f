// Package engine is the narrow facade external collaborators (a lobby, a
// transport layer, a textual command protocol) consume to drive a rules
// engine board. It owns no player, turn, or network state of its own —
// that remains the caller's responsibility.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/kallisti-chess/rankfile/pkg/board"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var version = build.NewVersion(0, 1, 0)

// Engine wraps a *board.Board, logging every state-changing call.
type Engine struct {
	name, author string

	mu sync.Mutex
	b  *board.Board
}

// New constructs an Engine with a freshly initialized standard board.
func New(ctx context.Context, name, author string) *Engine {
	e := &Engine{
		name:   name,
		author: author,
		b:      board.NewBoard(),
	}
	logw.Infof(ctx, "Initialized engine: %v", e.Name())
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

// Reset replaces the current board with a fresh standard starting position.
func (e *Engine) Reset(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.b = board.NewBoard()
	logw.Infof(ctx, "Reset to initial position")
}

// Get returns the piece at cell, if any.
func (e *Engine) Get(cell string) (board.Piece, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	opt, err := e.b.Get(cell)
	if err != nil {
		return board.Piece{}, false, err
	}
	p, ok := opt.V()
	return p, ok, nil
}

// Set places or clears the piece at cell. Fails InvalidNotation on a
// malformed cell string.
func (e *Engine) Set(ctx context.Context, cell string, piece lang.Optional[board.Piece]) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.b.Set(cell, piece); err != nil {
		logw.Errorf(ctx, "Set %v failed: %v", cell, err)
		return err
	}
	logw.Infof(ctx, "Set %v", cell)
	return nil
}

// MovesPiece executes a move and logs the result.
func (e *Engine) MovesPiece(ctx context.Context, src, dst string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	summary, err := e.b.MovesPiece(src, dst)
	if err != nil {
		logw.Errorf(ctx, "Move %v-%v failed: %v", src, dst, err)
		return "", err
	}
	logw.Infof(ctx, "Move %v", summary)
	return summary, nil
}

// UndoMoves reverses the most recent move.
func (e *Engine) UndoMoves(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.b.UndoMoves(); err != nil {
		logw.Errorf(ctx, "Undo failed: %v", err)
		return err
	}
	logw.Infof(ctx, "Undo complete")
	return nil
}

// Promote replaces a pawn on its promotion rank.
func (e *Engine) Promote(ctx context.Context, cell string, kind board.Kind) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.b.Promote(cell, kind); err != nil {
		logw.Errorf(ctx, "Promote %v to %v failed: %v", cell, kind, err)
		return err
	}
	logw.Infof(ctx, "Promoted %v to %v", cell, kind)
	return nil
}

// Castling attempts to castle the king and rook at the given cells.
func (e *Engine) Castling(ctx context.Context, kingCell, rookCell string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.b.Castling(kingCell, rookCell); err != nil {
		logw.Errorf(ctx, "Castling %v/%v failed: %v", kingCell, rookCell, err)
		return err
	}
	logw.Infof(ctx, "Castled %v/%v", kingCell, rookCell)
	return nil
}

// GetPossibleMoves returns the pseudo-legal destinations for the piece at cell.
func (e *Engine) GetPossibleMoves(cell string) ([]board.Square, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.GetPossibleMoves(cell)
}

// GetPossibleMovesAsString is GetPossibleMoves, space-joined.
func (e *Engine) GetPossibleMovesAsString(cell string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.GetPossibleMovesAsString(cell)
}

// GetPossibleAttackByColor returns the attack map for the given color.
func (e *Engine) GetPossibleAttackByColor(color board.Color) map[board.Square][]board.Square {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.GetPossibleAttackByColor(color)
}

// GetCaptured returns the pieces of the given color captured so far.
func (e *Engine) GetCaptured(color board.Color) []board.Piece {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.GetCaptured(color)
}

// IsKingChecked reports whether the given color's king is in check.
func (e *Engine) IsKingChecked(color board.Color) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.IsKingChecked(color)
}

// IsCheckmate reports whether the given color is checkmated.
func (e *Engine) IsCheckmate(color board.Color) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.IsCheckmate(color)
}

// IsDraw reports whether the given color is stalemated.
func (e *Engine) IsDraw(color board.Color) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.IsDraw(color)
}

// GetHistory returns the ordered move history.
func (e *Engine) GetHistory() []board.History {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.GetHistory()
}

// String renders the current board, 8 rows of Unicode glyphs.
func (e *Engine) String() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.String()
}
