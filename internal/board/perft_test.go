package board

import "testing"

var perftCases = []struct {
	name  string
	fen   string
	nodes []uint64 // nodes[i] is perft(i+1)
}{
	{"startpos", StartFEN, []uint64{20, 400, 8902, 197281}},
	// Kiwipete: castling, pins and promotions in one position.
	{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", []uint64{48, 2039, 97862}},
	{"position3", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", []uint64{14, 191, 2812, 43238}},
	{"position4", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", []uint64{6, 264, 9467}},
	{"position5", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", []uint64{44, 1486, 62379}},
}

func TestPerft(t *testing.T) {
	for _, tc := range perftCases {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			for i, want := range tc.nodes {
				depth := i + 1
				if testing.Short() && depth > 3 {
					break
				}
				if got := pos.Perft(depth); got != want {
					t.Errorf("perft(%d) = %d, want %d", depth, got, want)
				}
			}
			if got := pos.ToFEN(); got != tc.fen {
				t.Errorf("position changed by perft: %s", got)
			}
		})
	}
}

// The e4 pawn may not take en passant: it would expose the a4 king to the
// h4 rook along the rank.
func TestPerftEnPassantPin(t *testing.T) {
	pos, err := ParseFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	for _, m := range pos.LegalMoves().Slice() {
		if m.Flag() == EPCapture {
			t.Errorf("en passant %v should be illegal", m)
		}
	}
	if got := pos.Perft(1); got != 6 {
		t.Errorf("perft(1) = %d, want 6", got)
	}
	if got := pos.Perft(2); got != 94 {
		t.Errorf("perft(2) = %d, want 94", got)
	}
}

func TestDivideSumsToPerft(t *testing.T) {
	pos, _ := ParseFEN(perftCases[1].fen)
	entries := pos.Divide(2)
	if len(entries) != 48 {
		t.Fatalf("divide returned %d root moves, want 48", len(entries))
	}
	var total uint64
	for _, e := range entries {
		total += e.Nodes
	}
	if total != 2039 {
		t.Errorf("divide total = %d, want 2039", total)
	}
}

func BenchmarkPerftStart(b *testing.B) {
	pos := NewPosition()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		pos.Perft(4)
	}
}

func BenchmarkGenerateLegal(b *testing.B) {
	pos, _ := ParseFEN(perftCases[1].fen)
	var ml MoveList
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		pos.GenerateLegal(&ml)
	}
}
