package uci

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
)

func run(t *testing.T, script string) (*UCI, string) {
	t.Helper()
	var out bytes.Buffer
	u := New(engine.NewEngine(nil), strings.NewReader(script), &out)
	if err := u.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return u, out.String()
}

func TestHandshake(t *testing.T) {
	_, out := run(t, "uci\nisready\nquit\n")
	for _, want := range []string{"id name chesscore", "option name Depth", "uciok", "readyok"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestQuitStopsReading(t *testing.T) {
	_, out := run(t, "quit\nisready\n")
	if strings.Contains(out, "readyok") {
		t.Error("commands after quit were processed")
	}
}

func TestPositionWithMoves(t *testing.T) {
	u, _ := run(t, "position startpos moves e2e4 e7e5 g1f3\n")
	want := "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"
	if got := u.position.ToFEN(); got != want {
		t.Errorf("position = %q, want %q", got, want)
	}
}

func TestPositionFEN(t *testing.T) {
	fen := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	u, _ := run(t, "position fen "+fen+" moves e1g1\n")
	if got := u.position.PieceAt(board.G1); got != board.WhiteKing {
		t.Errorf("g1 holds %v after castling", got)
	}
	if got := u.position.PieceAt(board.F1); got != board.WhiteRook {
		t.Errorf("f1 holds %v after castling", got)
	}
}

func TestPositionErrorsKeepPrevious(t *testing.T) {
	u, out := run(t, "position startpos moves e2e4\nposition startpos moves e2e5\nposition fen bogus\n")
	if !strings.Contains(out, "illegal move") || !strings.Contains(out, "invalid fen") {
		t.Errorf("errors not reported:\n%s", out)
	}
	if u.position.PieceAt(board.E4) != board.WhitePawn {
		t.Error("a failed position command replaced the position")
	}
}

func TestGoDepth(t *testing.T) {
	_, out := run(t, "position fen 6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1\ngo depth 2\n")
	if !strings.Contains(out, "info depth 1 score mate 1") {
		t.Errorf("missing mate info line:\n%s", out)
	}
	if !strings.Contains(out, "bestmove d1d8") {
		t.Errorf("missing bestmove:\n%s", out)
	}
}

func TestGoWhenMated(t *testing.T) {
	_, out := run(t, "position fen R6k/6pp/8/8/8/8/8/K7 b - - 0 1\ngo depth 3\n")
	if !strings.Contains(out, "bestmove 0000") {
		t.Errorf("want bestmove 0000:\n%s", out)
	}
}

func TestPerftDivide(t *testing.T) {
	_, out := run(t, "perft 2\n")
	if !strings.Contains(out, "e2e4: 20") {
		t.Errorf("divide line missing:\n%s", out)
	}
	if !strings.Contains(out, "Nodes searched: 400") {
		t.Errorf("total missing:\n%s", out)
	}
}

type memCache map[uint64]uint64

func (c memCache) Perft(pos *board.Position, depth int) (uint64, bool, error) {
	key := pos.Hash ^ uint64(depth)
	if n, ok := c[key]; ok {
		return n, true, nil
	}
	n := pos.Perft(depth)
	c[key] = n
	return n, false, nil
}

func TestPerftUsesCache(t *testing.T) {
	var out bytes.Buffer
	u := New(engine.NewEngine(nil), strings.NewReader("perft 3\nperft 3\n"), &out)
	u.SetPerftCache(memCache{})
	if err := u.Run(); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out.String(), "Nodes searched: 8902"); n != 2 {
		t.Errorf("got %d totals, want 2:\n%s", n, out.String())
	}
	if n := strings.Count(out.String(), "served from cache"); n != 1 {
		t.Errorf("cache hits = %d, want 1", n)
	}
}

func TestSetOption(t *testing.T) {
	u, out := run(t, strings.Join([]string{
		"setoption name Depth value 5",
		"setoption name Difficulty value hard",
		"setoption name Eval value material",
		"setoption name Bogus value 1",
	}, "\n"))
	if u.engine.Depth() != engine.DifficultyDepth[engine.Hard] {
		t.Errorf("depth = %d", u.engine.Depth())
	}
	if !strings.Contains(out, `unknown option "Bogus"`) {
		t.Errorf("unknown option not reported:\n%s", out)
	}
}

func TestDisplayListsCheckers(t *testing.T) {
	_, out := run(t, "position fen 4k3/8/8/8/8/5n2/8/r3K3 w - - 0 1\nd\n")
	if !strings.Contains(out, "Checkers: a1 f3\n") {
		t.Errorf("d output missing checkers:\n%s", out)
	}
	_, out = run(t, "position startpos\nd\n")
	if !strings.Contains(out, "Checkers:\n") {
		t.Errorf("d output lists checkers in the start position:\n%s", out)
	}
}
