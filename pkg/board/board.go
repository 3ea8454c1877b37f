// Package board implements the chess rules engine: an 8x8 grid of optional
// pieces, pseudo-legal move and attack generation, reversible move
// execution, castling, promotion, and check/checkmate/stalemate queries.
// The package has no notion of players, turns, or network transport; it is
// a narrow library consumed by an external caller (see pkg/engine).
package board

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/seekerror/stdlib/pkg/lang"
)

// Board is an 8x8 cell grid plus its ordered move history. The zero value is
// an empty board with no history (a target for UnmarshalJSON); NewBoard
// returns the standard starting position.
type Board struct {
	cells   [8][8]lang.Optional[Piece]
	history []History
}

// boardRecord is the structured-record shape for Board persistence and
// transport: field names match the data model (spec §3's "cells" and
// "history").
type boardRecord struct {
	Cells   [8][8]lang.Optional[Piece] `json:"cells"`
	History []History                  `json:"history"`
}

// MarshalJSON serializes the full cell grid and move history.
func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(boardRecord{Cells: b.cells, History: b.history})
}

// UnmarshalJSON restores the full cell grid and move history.
func (b *Board) UnmarshalJSON(data []byte) error {
	var rec boardRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	b.cells = rec.Cells
	b.history = rec.History
	return nil
}

// NewBoard returns a Board set up in the standard chess starting position.
func NewBoard() *Board {
	b := &Board{}

	backRank := []Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for col, kind := range backRank {
		b.cells[White.BackRow()][col] = lang.Some(NewPiece(kind, White))
		b.cells[Black.BackRow()][col] = lang.Some(NewPiece(kind, Black))
	}
	for col := 0; col < 8; col++ {
		b.cells[White.BackRow()+1][col] = lang.Some(NewPiece(Pawn, White))
		b.cells[Black.BackRow()-1][col] = lang.Some(NewPiece(Pawn, Black))
	}

	return b
}

// Get returns the piece at cell, if any. Fails InvalidNotation on a
// malformed cell string.
func (b *Board) Get(cell string) (lang.Optional[Piece], error) {
	sq, err := ParseSquare(cell)
	if err != nil {
		return lang.Optional[Piece]{}, err
	}
	return b.at(sq), nil
}

// Set unconditionally places (or clears) a piece at cell. It writes no
// history and is intended for setup and tests.
func (b *Board) Set(cell string, piece lang.Optional[Piece]) error {
	sq, err := ParseSquare(cell)
	if err != nil {
		return err
	}
	b.cells[sq.Row][sq.Col] = piece
	return nil
}

func (b *Board) at(sq Square) lang.Optional[Piece] {
	return b.cells[sq.Row][sq.Col]
}

func (b *Board) clear(sq Square) {
	b.cells[sq.Row][sq.Col] = lang.Optional[Piece]{}
}

func (b *Board) place(sq Square, p Piece) {
	b.cells[sq.Row][sq.Col] = lang.Some(p)
}

// GetHistory returns the ordered move history, oldest first.
func (b *Board) GetHistory() []History {
	return append([]History{}, b.history...)
}

// GetCaptured returns every piece of the given color that appears in history
// as captured, in capture order.
func (b *Board) GetCaptured(color Color) []Piece {
	var captured []Piece
	for _, rec := range b.history {
		if p, ok := rec.Captured.V(); ok && p.Color == color {
			captured = append(captured, p)
		}
	}
	return captured
}

// GetPiecesPositionsByColor returns the occupied squares holding a piece of
// the given color, in row-major order.
func (b *Board) GetPiecesPositionsByColor(color Color) []Square {
	var squares []Square
	for row := int8(0); row < 8; row++ {
		for col := int8(0); col < 8; col++ {
			if p, ok := b.cells[row][col].V(); ok && p.Color == color {
				squares = append(squares, Square{Row: row, Col: col})
			}
		}
	}
	return squares
}

// GetPossibleMoves returns the sorted pseudo-legal destinations for the
// piece at cell. Fails IllegalMoves if cell is empty, InvalidNotation if
// cell is malformed.
func (b *Board) GetPossibleMoves(cell string) ([]Square, error) {
	sq, err := ParseSquare(cell)
	if err != nil {
		return nil, err
	}
	piece, ok := b.at(sq).V()
	if !ok {
		return nil, newIllegalMoves(fmt.Sprintf("no piece at %v", cell))
	}
	return b.movesFrom(sq, piece), nil
}

// GetPossibleMovesAsString is GetPossibleMoves rendered as a space-joined
// string, for simple text protocols.
func (b *Board) GetPossibleMovesAsString(cell string) (string, error) {
	squares, err := b.GetPossibleMoves(cell)
	if err != nil {
		return "", err
	}
	return joinSquares(squares), nil
}

// GetPossibleMovesByColor maps each occupied source square of the given
// color to its non-empty pseudo-legal move list.
func (b *Board) GetPossibleMovesByColor(color Color) map[Square][]Square {
	out := map[Square][]Square{}
	for _, sq := range b.GetPiecesPositionsByColor(color) {
		piece, _ := b.at(sq).V()
		if moves := b.movesFrom(sq, piece); len(moves) > 0 {
			out[sq] = moves
		}
	}
	return out
}

// GetPossibleAttackByColor maps each occupied source square of the given
// color to its non-empty attack set (§4.5). Identical to the move map for
// every kind except Pawn, whose attacks are its two forward diagonals,
// included whether empty or enemy-occupied.
func (b *Board) GetPossibleAttackByColor(color Color) map[Square][]Square {
	out := map[Square][]Square{}
	for _, sq := range b.GetPiecesPositionsByColor(color) {
		piece, _ := b.at(sq).V()
		if attacks := b.attacksFrom(sq, piece); len(attacks) > 0 {
			out[sq] = attacks
		}
	}
	return out
}

// movesFrom computes the pseudo-legal destinations for piece at sq.
func (b *Board) movesFrom(sq Square, piece Piece) []Square {
	if piece.Kind == Pawn {
		return b.pawnMoves(sq, piece)
	}
	return b.walkRays(sq, piece.Color, vectorsFor(piece.Kind))
}

// attacksFrom computes the attack set for piece at sq (§4.5).
func (b *Board) attacksFrom(sq Square, piece Piece) []Square {
	if piece.Kind == Pawn {
		return b.pawnAttacks(sq, piece)
	}
	return b.walkRays(sq, piece.Color, vectorsFor(piece.Kind))
}

// walkRays implements the generic non-pawn move/attack generation of §4.4:
// walk each ray group in order, stopping at the board edge or at the first
// occupied square, including captures but not squares beyond them.
func (b *Board) walkRays(sq Square, color Color, groups []rayGroup) []Square {
	var out []Square
	for _, group := range groups {
		for _, o := range group {
			target, ok := sq.Offset(o.dRow, o.dCol)
			if !ok {
				break
			}
			occupant, has := b.at(target).V()
			switch {
			case !has:
				out = append(out, target)
				continue
			case occupant.Color == color:
				// own piece: abandon ray, do not add.
			default:
				// enemy: captures terminate the ray.
				out = append(out, target)
			}
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// pawnMoves implements §4.4's pawn generation, including the documented
// fidelity quirk: a double-step is offered whenever the single step is
// empty and the pawn is unmoved, without separately checking that the
// double-step destination (or, for the single square, nothing else) is
// clear. See SPEC_FULL.md Open Questions.
func (b *Board) pawnMoves(sq Square, piece Piece) []Square {
	d, _ := piece.Direction.V()

	one, ok := sq.Offset(d, 0)
	if !ok {
		return nil
	}

	var out []Square
	if _, occupied := b.at(one).V(); !occupied {
		out = append(out, one)
		if !piece.HasMoved() {
			if two, ok := sq.Offset(2*d, 0); ok {
				out = append(out, two)
			}
		}
	}

	for _, dc := range [2]int8{-1, 1} {
		target, ok := sq.Offset(d, dc)
		if !ok {
			continue
		}
		if occ, has := b.at(target).V(); has && occ.Color != piece.Color {
			out = append(out, target)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// pawnAttacks implements §4.5's pawn attack map: the two forward diagonals,
// each included whether empty or enemy-occupied, excluding own-color
// occupants.
func (b *Board) pawnAttacks(sq Square, piece Piece) []Square {
	d, _ := piece.Direction.V()

	var out []Square
	for _, dc := range [2]int8{-1, 1} {
		target, ok := sq.Offset(d, dc)
		if !ok {
			continue
		}
		if occ, has := b.at(target).V(); has && occ.Color == piece.Color {
			continue
		}
		out = append(out, target)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// MovesPiece executes a move from src to dst, if dst is a pseudo-legal
// destination of the piece at src (§4.4). Returns a human-readable summary.
func (b *Board) MovesPiece(src, dst string) (string, error) {
	srcSq, err := ParseSquare(src)
	if err != nil {
		return "", err
	}
	dstSq, err := ParseSquare(dst)
	if err != nil {
		return "", err
	}

	piece, ok := b.at(srcSq).V()
	if !ok {
		return "", newIllegalMoves(fmt.Sprintf("no piece at %v", src))
	}

	legal := b.movesFrom(srcSq, piece)
	if !containsSquare(legal, dstSq) {
		return "", newIllegalMoves(fmt.Sprintf("%v is not a legal destination for %v at %v", dstSq, piece.Kind, srcSq))
	}

	captured := b.at(dstSq)

	hasMoved := lang.Optional[bool]{}
	if piece.Kind.hasFirstMoveState() && !piece.HasMoved() {
		piece.Moved = lang.Some(true)
		hasMoved = lang.Some(true)
	}

	b.place(dstSq, piece)
	b.clear(srcSq)

	b.history = append(b.history, History{From: srcSq, To: dstSq, Captured: captured, HasMoved: hasMoved})

	if cap, ok := captured.V(); ok {
		return fmt.Sprintf("%v %v %v-%v, captured %v %v", piece.Color, piece.Kind, srcSq, dstSq, cap.Color, cap.Kind), nil
	}
	return fmt.Sprintf("%v %v %v-%v", piece.Color, piece.Kind, srcSq, dstSq), nil
}

// UndoMoves reverses the most recent history record (a normal move; see
// SPEC_FULL.md for the documented castling-undo asymmetry). Fails GameError
// if history is empty.
func (b *Board) UndoMoves() error {
	if len(b.history) == 0 {
		return newGameError("no moves to undo")
	}

	rec := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]

	piece, ok := b.at(rec.To).V()
	if !ok {
		return newGameError(fmt.Sprintf("no piece at %v to undo", rec.To))
	}

	if moved, ok := rec.HasMoved.V(); ok && moved {
		piece.Moved = lang.Some(false)
	}

	b.place(rec.From, piece)
	b.cells[rec.To.Row][rec.To.Col] = rec.Captured

	return nil
}

// Promote replaces the pawn at cell with a fresh piece of the given kind.
// Fails PromotionError if cell does not hold a pawn on its promotion rank,
// or if kind is Pawn or King. Writes no history entry.
func (b *Board) Promote(cell string, kind Kind) error {
	sq, err := ParseSquare(cell)
	if err != nil {
		return err
	}

	piece, ok := b.at(sq).V()
	if !ok || piece.Kind != Pawn {
		return newPromotionError(fmt.Sprintf("%v does not hold a pawn", cell))
	}
	if sq.Row != piece.Color.PromotionRow() {
		return newPromotionError(fmt.Sprintf("%v is not on %v's promotion rank", cell, piece.Color))
	}
	if kind == Pawn || kind == King {
		return newPromotionError(fmt.Sprintf("cannot promote to %v", kind))
	}

	b.place(sq, NewPiece(kind, piece.Color))
	return nil
}

// Castling attempts to castle the king at kingCell with the rook at
// rookCell, enforcing the five preconditions of §4.6 in order.
func (b *Board) Castling(kingCell, rookCell string) error {
	kingSq, err := ParseSquare(kingCell)
	if err != nil {
		return err
	}
	rookSq, err := ParseSquare(rookCell)
	if err != nil {
		return err
	}

	king, ok := b.at(kingSq).V()
	if !ok {
		return newCastlingError(fmt.Sprintf("no piece at %v", kingCell))
	}
	rook, ok := b.at(rookSq).V()
	if !ok {
		return newCastlingError(fmt.Sprintf("no piece at %v", rookCell))
	}
	if king.Kind != King || rook.Kind != Rook {
		return newCastlingError("cells do not hold a king and a rook")
	}

	// (1) Same color.
	if king.Color != rook.Color {
		return newCastlingError("king and rook are not the same color")
	}
	// (2) King not currently in check.
	if b.IsKingChecked(king.Color) {
		return newCastlingError("king is in check")
	}
	// (3) Neither piece has moved.
	if king.HasMoved() || rook.HasMoved() {
		return newCastlingError("king or rook has already moved")
	}
	// (4) Cells strictly between are empty.
	low, high := kingSq.Col, rookSq.Col
	if low > high {
		low, high = high, low
	}
	var between []Square
	for col := low + 1; col < high; col++ {
		sq := Square{Row: kingSq.Row, Col: col}
		if _, occupied := b.at(sq).V(); occupied {
			return newCastlingError(fmt.Sprintf("%v is not empty", sq))
		}
		between = append(between, sq)
	}
	// (5) None of the intermediate cells are attacked.
	enemyAttacks := attackedSet(b.GetPossibleAttackByColor(king.Color.Opponent()))
	for _, sq := range between {
		if enemyAttacks[sq] {
			return newCastlingError(fmt.Sprintf("%v is attacked", sq))
		}
	}

	side := sideOf(kingSq.Col, rookSq.Col)
	rookDestCol, kingDestCol := side.destinations()
	rank := kingSq.Row

	king.Moved = lang.Some(true)
	rook.Moved = lang.Some(true)

	b.clear(kingSq)
	b.clear(rookSq)
	b.place(Square{Row: rank, Col: kingDestCol}, king)
	b.place(Square{Row: rank, Col: rookDestCol}, rook)

	b.history = append(b.history, History{From: kingSq, To: rookSq, HasMoved: lang.Some(true)})
	return nil
}

// GetKingPosition returns the square of the given color's king. Fails
// GameError if no such king is on the board.
func (b *Board) GetKingPosition(color Color) (Square, error) {
	for row := int8(0); row < 8; row++ {
		for col := int8(0); col < 8; col++ {
			if p, ok := b.cells[row][col].V(); ok && p.Color == color && p.Kind == King {
				return Square{Row: row, Col: col}, nil
			}
		}
	}
	return Square{}, newGameError(fmt.Sprintf("no %v king on the board", color))
}

// IsKingChecked reports whether the given color's king square appears in
// the opponent's attack map.
func (b *Board) IsKingChecked(color Color) bool {
	kingSq, err := b.GetKingPosition(color)
	if err != nil {
		return false
	}
	return attackedSet(b.GetPossibleAttackByColor(color.Opponent()))[kingSq]
}

// HasSafeMoves reports whether some pseudo-legal move by color leaves its
// own king not in check, verified by try/undo (§5).
func (b *Board) HasSafeMoves(color Color) bool {
	for src, moves := range b.GetPossibleMovesByColor(color) {
		for _, dst := range moves {
			if b.tryMoveLeavesSafe(color, src, dst) {
				return true
			}
		}
	}
	return false
}

// IsCheckmate reports whether color's king is checked and no pseudo-legal
// move clears the check.
func (b *Board) IsCheckmate(color Color) bool {
	return b.IsKingChecked(color) && !b.HasSafeMoves(color)
}

// IsDraw reports stalemate: no check, and no pseudo-legal move avoids
// check. Other draw rules are out of scope.
func (b *Board) IsDraw(color Color) bool {
	return !b.IsKingChecked(color) && !b.HasSafeMoves(color)
}

// tryMoveLeavesSafe executes src->dst, checks whether color's king is then
// safe, and undoes the move unconditionally.
func (b *Board) tryMoveLeavesSafe(color Color, src, dst Square) bool {
	if _, err := b.MovesPiece(src.String(), dst.String()); err != nil {
		return false
	}
	safe := !b.IsKingChecked(color)
	if err := b.UndoMoves(); err != nil {
		panic(fmt.Sprintf("try/undo invariant violated: %v", err))
	}
	return safe
}

// String renders the board as 8 rows, Black's back rank first, with Unicode
// glyphs for pieces and "⬛" for empty squares.
func (b *Board) String() string {
	var sb strings.Builder
	for row := int8(7); row >= 0; row-- {
		for col := int8(0); col < 8; col++ {
			if p, ok := b.cells[row][col].V(); ok {
				sb.WriteString(p.Icon())
			} else {
				sb.WriteString("⬛")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func containsSquare(squares []Square, target Square) bool {
	for _, sq := range squares {
		if sq.Equals(target) {
			return true
		}
	}
	return false
}

func attackedSet(attacks map[Square][]Square) map[Square]bool {
	set := map[Square]bool{}
	for _, squares := range attacks {
		for _, sq := range squares {
			set[sq] = true
		}
	}
	return set
}

func joinSquares(squares []Square) string {
	parts := make([]string, len(squares))
	for i, sq := range squares {
		parts[i] = sq.String()
	}
	return strings.Join(parts, " ")
}
