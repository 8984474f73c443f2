package uci_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wyvern-chess/wyvern/pkg/engine"
	"github.com/wyvern-chess/wyvern/pkg/engine/uci"
)

// readUntil drains out until a line satisfying want is seen or the deadline expires. Used to
// skip past engine chatter (info/id/option lines) this driver emits alongside the line a test
// actually cares about.
func readUntil(t *testing.T, out <-chan string, want func(string) bool) string {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-out:
			if !ok {
				t.Fatal("output channel closed before expected line arrived")
			}
			if want(line) {
				return line
			}
		case <-deadline:
			t.Fatal("timed out waiting for expected line")
		}
	}
}

func newTestDriver(t *testing.T) (chan string, <-chan string) {
	t.Helper()
	ctx := context.Background()
	e := engine.New(ctx, "test", "tester")
	in := make(chan string, 10)
	_, out := uci.NewDriver(ctx, e, in)
	readUntil(t, out, func(s string) bool { return s == "uciok" })
	return in, out
}

// TestIllegalMoveTokenDoesNotKillDriver checks that an illegal move in "position ... moves ..."
// stops applying further moves at the bad token but leaves the driver accepting commands,
// rather than returning out of the whole session.
func TestIllegalMoveTokenDoesNotKillDriver(t *testing.T) {
	in, out := newTestDriver(t)

	in <- "position startpos moves e2e4 e7e5 bogusmove g1f3"
	in <- "isready"

	readUntil(t, out, func(s string) bool { return s == "readyok" })
}

// TestMalformedFENDoesNotKillDriver checks that a "position fen ..." command too short to be a
// valid FEN is logged and ignored rather than crashing the driver.
func TestMalformedFENDoesNotKillDriver(t *testing.T) {
	in, out := newTestDriver(t)

	in <- "position fen not a real fen"
	in <- "isready"

	readUntil(t, out, func(s string) bool { return s == "readyok" })
}

// TestMalformedGoOptionDoesNotKillDriver checks that "go" sub-options with a missing or
// unparseable numeric argument are logged and ignored, and that the driver keeps processing
// subsequent commands instead of exiting its command loop.
func TestMalformedGoOptionDoesNotKillDriver(t *testing.T) {
	in, out := newTestDriver(t)

	in <- "go depth"
	in <- "isready"
	readUntil(t, out, func(s string) bool { return s == "readyok" })

	in <- "go nodes notanumber"
	in <- "isready"
	readUntil(t, out, func(s string) bool { return s == "readyok" })
}

// TestQuitClosesOutput checks that "quit" terminates the driver cleanly, closing its output
// channel.
func TestQuitClosesOutput(t *testing.T) {
	in, out := newTestDriver(t)

	in <- "quit"

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-out:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("output channel never closed after quit")
		}
	}
}

func TestGoNodesAndMateOptionsReachSearch(t *testing.T) {
	in, out := newTestDriver(t)

	// depth 4 with a tight node cap should still terminate (and report bestmove) well before
	// exhausting a real game tree, exercising the previously-discarded "nodes" sub-option; the
	// "mate" sub-option rides along and must not stop the bestmove from arriving.
	in <- "go depth 4 nodes 1000 mate 2"

	line := readUntil(t, out, func(s string) bool {
		return len(s) >= len("bestmove") && s[:len("bestmove")] == "bestmove"
	})
	require.NotEmpty(t, line)
}
