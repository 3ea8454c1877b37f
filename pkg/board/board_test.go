package board_test

import (
	"encoding/json"
	"testing"

	"github.com/kallisti-chess/rankfile/pkg/board"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squares(cells ...string) []board.Square {
	out := make([]board.Square, len(cells))
	for i, c := range cells {
		sq, err := board.ParseSquare(c)
		if err != nil {
			panic(err)
		}
		out[i] = sq
	}
	return out
}

func TestInitialPossibleMoves(t *testing.T) {
	b := board.NewBoard()

	moves, err := b.GetPossibleMoves("a2")
	require.NoError(t, err)
	assert.Equal(t, squares("a3", "a4"), moves)

	moves, err = b.GetPossibleMoves("b1")
	require.NoError(t, err)
	assert.Equal(t, squares("a3", "c3"), moves)
}

func TestGetPossibleMovesEmptyCell(t *testing.T) {
	b := board.NewBoard()
	_, err := b.GetPossibleMoves("e4")
	require.Error(t, err)

	var re *board.RuleError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, board.IllegalMoves, re.Kind)
}

func TestQueenOpensDiagonalAfterE4(t *testing.T) {
	b := board.NewBoard()
	_, err := b.MovesPiece("e2", "e4")
	require.NoError(t, err)

	byColor := b.GetPossibleMovesByColor(board.White)

	d1, err := board.ParseSquare("d1")
	require.NoError(t, err)
	assert.Equal(t, squares("e2", "f3", "g4", "h5"), byColor[d1])

	h1, err := board.ParseSquare("h1")
	require.NoError(t, err)
	_, ok := byColor[h1]
	assert.False(t, ok)
}

func TestPawnAttackMapIncludesEmptyDiagonals(t *testing.T) {
	b := board.NewBoard()
	_, err := b.MovesPiece("e2", "e4")
	require.NoError(t, err)

	attacks := b.GetPossibleAttackByColor(board.White)
	c2, err := board.ParseSquare("c2")
	require.NoError(t, err)
	assert.Equal(t, squares("b3", "d3"), attacks[c2])
}

func move(t *testing.T, b *board.Board, src, dst string) {
	t.Helper()
	_, err := b.MovesPiece(src, dst)
	require.NoError(t, err, "%v-%v", src, dst)
}

func TestScholarsMate(t *testing.T) {
	b := board.NewBoard()
	move(t, b, "e2", "e4")
	move(t, b, "e7", "e5")
	move(t, b, "d1", "f3")
	move(t, b, "b8", "c6")
	move(t, b, "f1", "c4")
	move(t, b, "f8", "c5")

	assert.False(t, b.IsCheckmate(board.Black))

	move(t, b, "f3", "f7")

	assert.True(t, b.IsCheckmate(board.Black))
}

func TestItalianCastling(t *testing.T) {
	b := board.NewBoard()
	move(t, b, "e2", "e4")
	move(t, b, "e7", "e5")
	move(t, b, "g1", "f3")
	move(t, b, "b8", "c6")
	move(t, b, "f1", "c4")
	move(t, b, "f8", "c5")

	require.NoError(t, b.Castling("e1", "h1"))

	f1, err := b.Get("f1")
	require.NoError(t, err)
	p, ok := f1.V()
	require.True(t, ok)
	assert.Equal(t, board.Rook, p.Kind)

	g1, err := b.Get("g1")
	require.NoError(t, err)
	p, ok = g1.V()
	require.True(t, ok)
	assert.Equal(t, board.King, p.Kind)

	for _, cell := range []string{"e1", "h1"} {
		opt, err := b.Get(cell)
		require.NoError(t, err)
		_, ok := opt.V()
		assert.False(t, ok)
	}
}

func TestPromotionWalk(t *testing.T) {
	b := board.NewBoard()
	move(t, b, "h2", "h4")
	move(t, b, "h4", "h5")
	move(t, b, "h5", "h6")
	move(t, b, "h6", "g7")
	move(t, b, "g7", "f8")

	require.NoError(t, b.Promote("f8", board.Queen))

	f8, err := b.Get("f8")
	require.NoError(t, err)
	p, ok := f8.V()
	require.True(t, ok)
	assert.Equal(t, board.Queen, p.Kind)
	assert.Equal(t, board.White, p.Color)
}

func TestUndoIsExactInverse(t *testing.T) {
	b := board.NewBoard()
	before := b.String()

	move(t, b, "e2", "e4")
	require.NotEqual(t, before, b.String())

	require.NoError(t, b.UndoMoves())
	assert.Equal(t, before, b.String())
	assert.Empty(t, b.GetHistory())
}

func TestMovedFlagTogglesOnceAndUndoes(t *testing.T) {
	b := board.NewBoard()

	e2, err := b.Get("e2")
	require.NoError(t, err)
	p, _ := e2.V()
	assert.False(t, p.HasMoved())

	move(t, b, "e2", "e4")

	e4, err := b.Get("e4")
	require.NoError(t, err)
	p, _ = e4.V()
	assert.True(t, p.HasMoved())

	require.NoError(t, b.UndoMoves())

	e2, err = b.Get("e2")
	require.NoError(t, err)
	p, _ = e2.V()
	assert.False(t, p.HasMoved())
}

func TestUndoEmptyHistoryFails(t *testing.T) {
	b := board.NewBoard()
	err := b.UndoMoves()
	require.Error(t, err)

	var re *board.RuleError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, board.GameError, re.Kind)
}

func TestIllegalMoveRejected(t *testing.T) {
	b := board.NewBoard()
	_, err := b.MovesPiece("e2", "e5")
	require.Error(t, err)

	var re *board.RuleError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, board.IllegalMoves, re.Kind)
}

func TestPromoteNonPawnFails(t *testing.T) {
	b := board.NewBoard()
	err := b.Promote("a1", board.Queen)
	require.Error(t, err)

	var re *board.RuleError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, board.PromotionError, re.Kind)
}

func TestPromoteToPawnOrKingFails(t *testing.T) {
	b := board.NewBoard()
	move(t, b, "h2", "h4")
	move(t, b, "h4", "h5")
	move(t, b, "h5", "h6")
	move(t, b, "h6", "g7")
	move(t, b, "g7", "f8")

	require.Error(t, b.Promote("f8", board.Pawn))
	require.Error(t, b.Promote("f8", board.King))
}

func TestCastlingFailsWhilePathObstructed(t *testing.T) {
	b := board.NewBoard()
	move(t, b, "e2", "e4")
	move(t, b, "e7", "e5")
	move(t, b, "g1", "f3") // clears g1 but f1's bishop hasn't moved yet

	err := b.Castling("e1", "h1")
	require.Error(t, err)

	var re *board.RuleError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, board.CastlingError, re.Kind)
}

func TestGetCapturedOrdersByCaptureOrder(t *testing.T) {
	b := board.NewBoard()
	move(t, b, "e2", "e4")
	move(t, b, "d7", "d5")
	move(t, b, "e4", "d5") // White captures Black's pawn

	captured := b.GetCaptured(board.Black)
	require.Len(t, captured, 1)
	assert.Equal(t, board.Pawn, captured[0].Kind)
	assert.Equal(t, board.Black, captured[0].Color)

	move(t, b, "d8", "d5") // Black's queen captures White's pawn
	move(t, b, "b1", "c3")
	move(t, b, "c3", "d5") // White captures Black's queen

	captured = b.GetCaptured(board.Black)
	require.Len(t, captured, 2)
	assert.Equal(t, board.Pawn, captured[0].Kind)
	assert.Equal(t, board.Queen, captured[1].Kind)
}

func TestGetKingPositionMissingFails(t *testing.T) {
	b := board.NewBoard()
	require.NoError(t, b.Set("e1", lang.Optional[board.Piece]{}))

	_, err := b.GetKingPosition(board.White)
	require.Error(t, err)

	var re *board.RuleError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, board.GameError, re.Kind)
}

func TestSetPlacesAndClears(t *testing.T) {
	b := board.NewBoard()

	require.NoError(t, b.Set("e4", lang.Some(board.NewPiece(board.Queen, board.Black))))
	e4, err := b.Get("e4")
	require.NoError(t, err)
	p, ok := e4.V()
	require.True(t, ok)
	assert.Equal(t, board.Queen, p.Kind)
	assert.Equal(t, board.Black, p.Color)

	require.NoError(t, b.Set("e4", lang.Optional[board.Piece]{}))
	e4, err = b.Get("e4")
	require.NoError(t, err)
	_, ok = e4.V()
	assert.False(t, ok)
}

func TestBoardJSONRoundTrip(t *testing.T) {
	b := board.NewBoard()
	move(t, b, "e2", "e4")

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cells"`)
	assert.Contains(t, string(data), `"history"`)

	restored := &board.Board{}
	require.NoError(t, json.Unmarshal(data, restored))
	assert.Equal(t, b.String(), restored.String())
	assert.Equal(t, b.GetHistory(), restored.GetHistory())
}
