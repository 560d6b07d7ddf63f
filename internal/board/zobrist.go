package board

// Zobrist keys, generated from a fixed seed so hashes are stable across runs.
// The perft cache persists them, so the seed must not change.
var (
	zobristPiece      [12][64]uint64
	zobristEnPassant  [8]uint64 // one per file
	zobristCastling   [16]uint64
	zobristSideToMove uint64
)

func init() {
	rng := xorshift(0x98F107A2BEEF1234)

	for pc := WhitePawn; pc <= BlackKing; pc++ {
		for sq := A1; sq <= H8; sq++ {
			zobristPiece[pc][sq] = rng.next()
		}
	}
	for file := range zobristEnPassant {
		zobristEnPassant[file] = rng.next()
	}
	for i := range zobristCastling {
		zobristCastling[i] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// xorshift64*
type xorshift uint64

func (x *xorshift) next() uint64 {
	*x ^= *x >> 12
	*x ^= *x << 25
	*x ^= *x >> 27
	return uint64(*x) * 0x2545F4914F6CDD1D
}

func epKey(ep Bitboard) uint64 {
	if ep == 0 {
		return 0
	}
	return zobristEnPassant[ep.LSB().File()]
}

// ComputeHash derives the Zobrist key from scratch. The incrementally
// maintained Hash must always equal it.
func (p *Position) ComputeHash() uint64 {
	var h uint64
	for sq := A1; sq <= H8; sq++ {
		if pc := p.Board[sq]; pc != NoPiece {
			h ^= zobristPiece[pc][sq]
		}
	}
	if p.SideToMove == Black {
		h ^= zobristSideToMove
	}
	h ^= zobristCastling[p.CastlingRights]
	h ^= epKey(p.EnPassant)
	return h
}
