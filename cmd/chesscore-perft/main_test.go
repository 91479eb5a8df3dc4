package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

func TestRunWritesProfileOnError(t *testing.T) {
	dir := t.TempDir()
	*cpuprofile = dir
	*fen = "not a fen"
	defer func() {
		*cpuprofile = ""
		*fen = board.StartFEN
	}()

	if err := run(); !errors.Is(err, board.ErrInvalidFEN) {
		t.Fatalf("run err = %v, want ErrInvalidFEN", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "cpu.pprof")); err != nil {
		t.Errorf("profile not written: %v", err)
	}
}
