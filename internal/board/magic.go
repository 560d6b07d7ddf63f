package board

import "fmt"

// Magic is the multiplicative hash for one slider on one square.
// index = ((occupied & Mask) * Magic) >> Shift.
type Magic struct {
	Mask  Bitboard // relevant occupancy, board edges excluded
	Magic uint64
	Shift uint8
}

func (m *Magic) index(occupied Bitboard) uint64 {
	return (uint64(occupied&m.Mask) * m.Magic) >> m.Shift
}

// Magic multipliers. These are fixed inputs; Validate checks that each one
// indexes its square's occupancy subsets without a destructive collision.
var bishopMagicNumbers = [64]uint64{
	0x0002020202020200, 0x0002020202020000, 0x0004010202000000, 0x0004040080000000,
	0x0001104000000000, 0x0000821040000000, 0x0000410410400000, 0x0000104104104000,
	0x0000040404040400, 0x0000020202020200, 0x0000040102020000, 0x0000040400800000,
	0x0000011040000000, 0x0000008210400000, 0x0000004104104000, 0x0000002082082000,
	0x0004000808080800, 0x0002000404040400, 0x0001000202020200, 0x0000800802004000,
	0x0000800400A00000, 0x0000200100884000, 0x0000400082082000, 0x0000200041041000,
	0x0002080010101000, 0x0001040008080800, 0x0000208004010400, 0x0000404004010200,
	0x0000840000802000, 0x0000404002011000, 0x0000808001041000, 0x0000404000820800,
	0x0001041000202000, 0x0000820800101000, 0x0000104400080800, 0x0000020080080080,
	0x0000404040040100, 0x0000808100020100, 0x0001010100020800, 0x0000808080010400,
	0x0000820820004000, 0x0000410410002000, 0x0000082088001000, 0x0000002011000800,
	0x0000080100400400, 0x0001010101000200, 0x0002020202000400, 0x0001010101000200,
	0x0000410410400000, 0x0000208208200000, 0x0000002084100000, 0x0000000020880000,
	0x0000001002020000, 0x0000040408020000, 0x0004040404040000, 0x0002020202020000,
	0x0000104104104000, 0x0000002082082000, 0x0000000020841000, 0x0000000000208800,
	0x0000000010020200, 0x0000000404080200, 0x0000040404040400, 0x0002020202020200,
}

var rookMagicNumbers = [64]uint64{
	0x0080001020400080, 0x0040001000200040, 0x0080081000200080, 0x0080040800100080,
	0x0080020400080080, 0x0080010200040080, 0x0080008001000200, 0x0080002040800100,
	0x0000800020400080, 0x0000400020005000, 0x0000801000200080, 0x0000800800100080,
	0x0000800400080080, 0x0000800200040080, 0x0000800100020080, 0x0000800040800100,
	0x0000208000400080, 0x0000404000201000, 0x0000808010002000, 0x0000808008001000,
	0x0000808004000800, 0x0000808002000400, 0x0000010100020004, 0x0000020000408104,
	0x0000208080004000, 0x0000200040005000, 0x0000100080200080, 0x0000080080100080,
	0x0000040080080080, 0x0000020080040080, 0x0000010080800200, 0x0000800080004100,
	0x0000204000800080, 0x0000200040401000, 0x0000100080802000, 0x0000080080801000,
	0x0000040080800800, 0x0000020080800400, 0x0000020001010004, 0x0000800040800100,
	0x0000204000808000, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000010002008080, 0x0000004081020004,
	0x0000204000800080, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000800100020080, 0x0000800041000080,
	0x00FFFCDDFCED714A, 0x007FFCDDFCED714A, 0x003FFFCDFFD88096, 0x0000040810002101,
	0x0001000204080011, 0x0001000204000801, 0x0001000082000401, 0x0001FFFAABFAD1A2,
}

// Slider selects a magic table.
type Slider uint8

const (
	SliderRook Slider = iota
	SliderBishop
)

func (s Slider) String() string {
	if s == SliderRook {
		return "rook"
	}
	return "bishop"
}

var (
	rookDirs   = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirs = [4][2]int{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
)

// MagicCollisionError reports two occupancies with different attack sets
// hashing to the same slot.
type MagicCollisionError struct {
	Square Square
	Slider Slider
	Index  uint64
}

func (e *MagicCollisionError) Error() string {
	return fmt.Sprintf("magic collision: %s on %s at index %d", e.Slider, e.Square, e.Index)
}

// MismatchError reports a lookup that disagrees with ray casting.
type MismatchError struct {
	Square    Square
	Slider    Slider
	Occupancy Bitboard
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("magic lookup mismatch: %s on %s for occupancy %#016x", e.Slider, e.Square, uint64(e.Occupancy))
}

func (t *AttackTables) initMagics() {
	for sq := A1; sq <= H8; sq++ {
		t.rookMagics[sq] = newMagic(rookMask(sq), rookMagicNumbers[sq])
		t.rook[sq] = buildSliderTable(sq, &t.rookMagics[sq], rookDirs)

		t.bishopMagics[sq] = newMagic(bishopMask(sq), bishopMagicNumbers[sq])
		t.bishop[sq] = buildSliderTable(sq, &t.bishopMagics[sq], bishopDirs)
	}
}

func newMagic(mask Bitboard, magic uint64) Magic {
	return Magic{Mask: mask, Magic: magic, Shift: uint8(64 - mask.Count())}
}

// buildSliderTable fills a table of 2^(64-shift) entries. Colliding subsets
// overwrite each other; Validate catches it if that ever loses information.
func buildSliderTable(sq Square, m *Magic, dirs [4][2]int) []Bitboard {
	table := make([]Bitboard, 1<<(64-m.Shift))
	forEachSubset(m.Mask, func(occ Bitboard) {
		table[m.index(occ)] = slidingAttacks(sq, occ, dirs)
	})
	return table
}

// forEachSubset walks all 2^n subsets of mask (carry-rippler), starting
// with the empty set.
func forEachSubset(mask Bitboard, f func(Bitboard)) {
	var sub Bitboard
	for {
		f(sub)
		sub = (sub - mask) & mask
		if sub == 0 {
			return
		}
	}
}

// rookMask returns the squares whose occupancy can change a rook's attacks
// from sq. The last square of each ray never does.
func rookMask(sq Square) Bitboard {
	file, rank := sq.File(), sq.Rank()
	var mask Bitboard
	for f := 1; f < 7; f++ {
		if f != file {
			mask |= SquareBB(NewSquare(f, rank))
		}
	}
	for r := 1; r < 7; r++ {
		if r != rank {
			mask |= SquareBB(NewSquare(file, r))
		}
	}
	return mask
}

func bishopMask(sq Square) Bitboard {
	return slidingAttacks(sq, Empty, bishopDirs) &^ edges
}

// slidingAttacks ray-casts from sq, each ray stopping on (and including)
// the first occupied square.
func slidingAttacks(sq Square, occupied Bitboard, dirs [4][2]int) Bitboard {
	var attacks Bitboard
	for _, d := range dirs {
		f, r := sq.File()+d[0], sq.Rank()+d[1]
		for f >= 0 && f < 8 && r >= 0 && r < 8 {
			s := NewSquare(f, r)
			attacks |= SquareBB(s)
			if occupied.Has(s) {
				break
			}
			f += d[0]
			r += d[1]
		}
	}
	return attacks
}

// Validate rebuilds every slider table independently and checks that the
// magic indexing is injective up to identical attack sets, and that the
// installed tables agree with ray casting for every relevant occupancy.
func (t *AttackTables) Validate() error {
	for sq := A1; sq <= H8; sq++ {
		if err := validateSlider(sq, SliderRook, &t.rookMagics[sq], t.rook[sq], rookDirs); err != nil {
			return err
		}
		if err := validateSlider(sq, SliderBishop, &t.bishopMagics[sq], t.bishop[sq], bishopDirs); err != nil {
			return err
		}
	}
	return nil
}

func validateSlider(sq Square, s Slider, m *Magic, installed []Bitboard, dirs [4][2]int) error {
	seen := make(map[uint64]Bitboard, len(installed))
	var err error
	forEachSubset(m.Mask, func(occ Bitboard) {
		if err != nil {
			return
		}
		want := slidingAttacks(sq, occ, dirs)
		idx := m.index(occ)
		if prev, ok := seen[idx]; ok && prev != want {
			err = &MagicCollisionError{Square: sq, Slider: s, Index: idx}
			return
		}
		seen[idx] = want
		if installed[idx] != want {
			err = &MismatchError{Square: sq, Slider: s, Occupancy: occ}
		}
	})
	return err
}
