package board

import (
	"sort"
	"strings"
	"testing"

	"github.com/dylhunn/dragontoothmg"
)

// Cross-checks the legal move lists against an independent generator at
// every node of a shallow tree.

func oracleMoves(b *dragontoothmg.Board) []string {
	moves := b.GenerateLegalMoves()
	out := make([]string, len(moves))
	for i := range moves {
		out[i] = strings.ToLower(moves[i].String())
	}
	sort.Strings(out)
	return out
}

func ourMoves(pos *Position) []string {
	var ml MoveList
	pos.GenerateLegal(&ml)
	out := make([]string, 0, ml.Len())
	for _, m := range ml.Slice() {
		out = append(out, m.String())
	}
	sort.Strings(out)
	return out
}

func compareTree(t *testing.T, pos *Position, ref *dragontoothmg.Board, depth int, line []string) {
	t.Helper()
	got, want := ourMoves(pos), oracleMoves(ref)
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("after %v (%s):\n got %v\nwant %v", line, pos.ToFEN(), got, want)
	}
	if depth == 0 {
		return
	}
	refMoves := ref.GenerateLegalMoves()
	for i := range refMoves {
		s := strings.ToLower(refMoves[i].String())
		m, err := ParseMove(s, pos)
		if err != nil {
			t.Fatalf("after %v: %v", line, err)
		}
		unapply := ref.Apply(refMoves[i])
		u := pos.MakeMove(m)
		compareTree(t, pos, ref, depth-1, append(line, s))
		u.Restore()
		unapply()
	}
}

func TestLegalMovesMatchOracle(t *testing.T) {
	fens := []string{
		StartFEN,
		perftCases[1].fen,
		perftCases[2].fen,
		perftCases[3].fen,
		"rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3",
	}
	depth := 2
	if testing.Short() {
		depth = 1
	}
	for _, fen := range fens {
		pos := mustParse(t, fen)
		ref := dragontoothmg.ParseFen(fen)
		compareTree(t, pos, &ref, depth, nil)
	}
}
