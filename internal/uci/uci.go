// Package uci implements a UCI-style text front end over the board core:
// position setup with validated moves, move takeback and perft.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/perft"
)

// UCI reads commands from in and writes responses to out.
type UCI struct {
	runner   *perft.Runner
	position *board.Position
	played   []board.Action

	out   io.Writer
	outMu sync.Mutex

	// Background perft state
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a new protocol handler. r may be shared with other callers.
func New(r *perft.Runner, out io.Writer) *UCI {
	return &UCI{
		runner:   r,
		position: board.NewPosition(),
		out:      out,
	}
}

// Position returns the current position. It must not be modified.
func (u *UCI) Position() *board.Position {
	return u.position
}

func (u *UCI) printf(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

// Run processes commands until in is exhausted, "quit" is read, or ctx ends.
func (u *UCI) Run(ctx context.Context, in io.Reader) error {
	defer u.handleStop()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.printf("readyok\n")
		case "ucinewgame":
			u.wait()
			u.position = board.NewPosition()
			u.played = nil
			if u.runner.Table != nil {
				u.runner.Table.Clear()
			}
		case "position":
			u.wait()
			if board.DebugMoveValidation {
				u.printf("info string DEBUG: position %s\n", strings.Join(args, " "))
			}
			u.handlePosition(args)
		case "go":
			u.wait()
			u.handleGo(ctx, args)
		case "stop":
			u.handleStop()
		case "quit":
			return nil
		case "setoption":
			u.wait()
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.printf("%s", u.position)
			u.printf("Fen: %s\n", u.position.ToFEN())
		case "perft":
			u.wait()
			u.handlePerft(ctx, args)
		case "divide":
			u.wait()
			u.handleDivide(ctx, args)
		case "undo":
			u.wait()
			u.handleUndo()
		default:
			u.printf("info string unknown command: %s\n", cmd)
		}
	}
	return scanner.Err()
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.printf("id name chesscore\n")
	u.printf("id author chesscore authors\n\n")
	u.printf("option name Hash type spin default 64 min 0 max 4096\n")
	u.printf("option name Threads type spin default 1 min 1 max 256\n")
	u.printf("uciok\n")
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// A bad move leaves the position as it stood after the last good one.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			u.printf("info string %v\n", err)
			return
		}
	default:
		return
	}
	u.position = pos
	u.played = nil

	if movesAt >= len(args) {
		return
	}
	for _, moveStr := range args[movesAt+1:] {
		if err := u.playMove(moveStr); err != nil {
			u.printf("info string invalid move %s: %v\n", moveStr, err)
			return
		}
	}
}

// playMove parses a UCI move against the current position and applies it
// through the validating path.
func (u *UCI) playMove(s string) error {
	a, err := board.ParseAction(s, u.position)
	if err != nil {
		return err
	}
	if err := u.position.TryApply(a); err != nil {
		return err
	}
	u.played = append(u.played, a)
	return nil
}

func (u *UCI) handleUndo() {
	n := len(u.played)
	if n == 0 {
		u.printf("info string nothing to undo\n")
		return
	}
	u.position.Undo(u.played[n-1])
	u.played = u.played[:n-1]
}

// handleGo supports "go perft <depth>". Searching is not part of this core.
func (u *UCI) handleGo(ctx context.Context, args []string) {
	if len(args) < 2 || args[0] != "perft" {
		u.printf("info string only \"go perft <depth>\" is supported\n")
		return
	}
	depth, err := strconv.Atoi(args[1])
	if err != nil || depth < 0 {
		u.printf("info string bad depth %q\n", args[1])
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	u.cancel = cancel
	u.done = make(chan struct{})
	pos := u.position

	go func(done chan struct{}) {
		defer close(done)
		u.runPerft(ctx, pos, depth)
	}(u.done)
}

// handleStop cancels a running "go perft" and waits for it to finish.
func (u *UCI) handleStop() {
	if u.cancel != nil {
		u.cancel()
	}
	u.wait()
}

// wait blocks until any background perft has finished.
func (u *UCI) wait() {
	if u.done != nil {
		<-u.done
		u.done = nil
	}
	if u.cancel != nil {
		u.cancel()
		u.cancel = nil
	}
}

func (u *UCI) handleSetOption(args []string) {
	// setoption name <id> value <x>
	if len(args) < 4 || args[0] != "name" || args[2] != "value" {
		return
	}
	n, err := strconv.Atoi(args[3])
	if err != nil {
		u.printf("info string bad value %q\n", args[3])
		return
	}
	switch strings.ToLower(args[1]) {
	case "hash":
		if n <= 0 {
			u.runner.Table = nil
		} else {
			u.runner.Table = perft.NewHashTable(n)
		}
	case "threads":
		u.runner.Workers = n
	}
}

func parseDepth(args []string) int {
	depth := 5
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil {
			depth = d
		}
	}
	return depth
}

func (u *UCI) handlePerft(ctx context.Context, args []string) {
	u.runPerft(ctx, u.position, parseDepth(args))
}

func (u *UCI) runPerft(ctx context.Context, pos *board.Position, depth int) {
	start := time.Now()
	nodes, err := u.runner.Count(ctx, pos, depth)
	if err != nil {
		u.printf("info string perft: %v\n", err)
		return
	}
	elapsed := time.Since(start)

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		u.printf("NPS: %.0f\n", nps)
	}
}

func (u *UCI) handleDivide(ctx context.Context, args []string) {
	depth := parseDepth(args)
	div, err := u.runner.Divide(ctx, u.position, depth)
	if err != nil {
		u.printf("info string divide: %v\n", err)
		return
	}

	lines := make([]string, 0, len(div))
	var total uint64
	for a, n := range div {
		lines = append(lines, fmt.Sprintf("%s: %d", a, n))
		total += n
	}
	sort.Strings(lines)
	for _, l := range lines {
		u.printf("%s\n", l)
	}
	u.printf("\nNodes: %d\n", total)
}
