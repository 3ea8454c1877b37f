// Package console implements a line-oriented text protocol for driving an
// engine.Engine interactively: one command per line in, one or more
// response lines out.
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kallisti-chess/rankfile/pkg/board"
	"github.com/kallisti-chess/rankfile/pkg/engine"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

const ProtocolName = "console"

// Driver implements a console driver for the engine: move, undo, promote,
// castle, print, history and captured commands over a line-based protocol.
type Driver struct {
	iox.AsyncCloser

	e   *engine.Engine
	out chan<- string
}

// NewDriver wires a Driver to the given engine, reading commands from in
// and writing response lines to the returned channel.
func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		e:           e,
		out:         out,
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "Console protocol initialized")

	d.out <- fmt.Sprintf("engine %v (%v)", d.e.Name(), d.e.Author())
	d.printBoard(ctx)

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Fields(line)
			if len(parts) == 0 {
				break
			}

			cmd := strings.ToLower(parts[0])
			args := parts[1:]

			switch cmd {
			case "reset", "r":
				d.e.Reset(ctx)
				d.printBoard(ctx)

			case "move", "m":
				d.doMove(ctx, args)

			case "undo", "u":
				if err := d.e.UndoMoves(ctx); err != nil {
					d.out <- fmt.Sprintf("undo failed: %v", err)
				}
				d.printBoard(ctx)

			case "set":
				d.doSet(ctx, args)

			case "promote":
				d.doPromote(ctx, args)

			case "castle", "castling", "o-o":
				d.doCastle(ctx, args)

			case "moves":
				d.doMoves(args)

			case "history", "h":
				for _, rec := range d.e.GetHistory() {
					d.out <- rec.String()
				}

			case "captured":
				d.doCaptured(args)

			case "print", "p":
				d.printBoard(ctx)

			case "quit", "exit", "q":
				return

			default:
				d.out <- fmt.Sprintf("unrecognized command: '%v'", cmd)
			}

		case <-d.Closed():
			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) doMove(ctx context.Context, args []string) {
	if len(args) != 2 {
		d.out <- "usage: move <src> <dst>"
		return
	}
	summary, err := d.e.MovesPiece(ctx, args[0], args[1])
	if err != nil {
		d.out <- fmt.Sprintf("invalid move: %v", err)
		return
	}
	d.out <- summary
	d.printBoard(ctx)

	if d.e.IsCheckmate(board.White) || d.e.IsCheckmate(board.Black) {
		d.out <- "checkmate"
	} else if d.e.IsDraw(board.White) || d.e.IsDraw(board.Black) {
		d.out <- "stalemate"
	}
}

func (d *Driver) doSet(ctx context.Context, args []string) {
	if len(args) == 1 {
		// set <cell>: clear the cell.
		if err := d.e.Set(ctx, args[0], lang.Optional[board.Piece]{}); err != nil {
			d.out <- fmt.Sprintf("set failed: %v", err)
			return
		}
		d.printBoard(ctx)
		return
	}
	if len(args) != 3 {
		d.out <- "usage: set <cell> <color> <kind> | set <cell>"
		return
	}

	var color board.Color
	switch strings.ToLower(args[1]) {
	case "white", "w":
		color = board.White
	case "black", "b":
		color = board.Black
	default:
		d.out <- fmt.Sprintf("unrecognized color: '%v'", args[1])
		return
	}

	kind, ok := board.ParseKind([]rune(args[2])[0])
	if !ok {
		d.out <- fmt.Sprintf("unrecognized kind: '%v'", args[2])
		return
	}

	if err := d.e.Set(ctx, args[0], lang.Some(board.NewPiece(kind, color))); err != nil {
		d.out <- fmt.Sprintf("set failed: %v", err)
		return
	}
	d.printBoard(ctx)
}

func (d *Driver) doPromote(ctx context.Context, args []string) {
	if len(args) != 2 {
		d.out <- "usage: promote <cell> <kind>"
		return
	}
	kind, ok := board.ParseKind([]rune(args[1])[0])
	if !ok {
		d.out <- fmt.Sprintf("unrecognized kind: '%v'", args[1])
		return
	}
	if err := d.e.Promote(ctx, args[0], kind); err != nil {
		d.out <- fmt.Sprintf("promote failed: %v", err)
		return
	}
	d.printBoard(ctx)
}

func (d *Driver) doCastle(ctx context.Context, args []string) {
	if len(args) != 2 {
		d.out <- "usage: castle <king-cell> <rook-cell>"
		return
	}
	if err := d.e.Castling(ctx, args[0], args[1]); err != nil {
		d.out <- fmt.Sprintf("castling failed: %v", err)
		return
	}
	d.printBoard(ctx)
}

func (d *Driver) doMoves(args []string) {
	if len(args) != 1 {
		d.out <- "usage: moves <cell>"
		return
	}
	s, err := d.e.GetPossibleMovesAsString(args[0])
	if err != nil {
		d.out <- fmt.Sprintf("moves failed: %v", err)
		return
	}
	d.out <- s
}

func (d *Driver) doCaptured(args []string) {
	color := board.White
	if len(args) > 0 && strings.EqualFold(args[0], "black") {
		color = board.Black
	}
	var names []string
	for _, p := range d.e.GetCaptured(color) {
		names = append(names, p.Kind.String())
	}
	d.out <- strconv.Itoa(len(names)) + ": " + strings.Join(names, ", ")
}

const (
	files      = "    a   b   c   d   e   f   g   h"
	horizontal = "  ---------------------------------"
)

func (d *Driver) printBoard(ctx context.Context) {
	d.out <- ""
	d.out <- files
	d.out <- horizontal
	for _, line := range strings.Split(d.e.String(), "\n") {
		if line != "" {
			d.out <- line
		}
	}
	d.out <- horizontal
	d.out <- files
	d.out <- ""

	logw.Debugf(ctx, "Board printed")
}
