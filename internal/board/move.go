package board

import "fmt"

// Move encodes a move in 16 bits:
// bits 0-5:   from square
// bits 6-11:  to square
// bits 12-15: flag
//
// Flag bit 2 (value 4) marks captures and bit 3 (value 8) marks promotions,
// so neither property is stored twice.
type Move uint16

// MoveFlag is the 4-bit move kind.
type MoveFlag uint8

const (
	Quiet       MoveFlag = 0
	DoublePush  MoveFlag = 1
	KingCastle  MoveFlag = 2
	QueenCastle MoveFlag = 3
	Capture     MoveFlag = 4
	EPCapture   MoveFlag = 5

	PromoKnight MoveFlag = 8
	PromoBishop MoveFlag = 9
	PromoRook   MoveFlag = 10
	PromoQueen  MoveFlag = 11

	PromoKnightCapture MoveFlag = 12
	PromoBishopCapture MoveFlag = 13
	PromoRookCapture   MoveFlag = 14
	PromoQueenCapture  MoveFlag = 15

	captureBit MoveFlag = 4
	promoBit   MoveFlag = 8
)

// NoMove is the zero move (a1a1 quiet), never generated.
const NoMove Move = 0

// NewMove packs a move.
func NewMove(from, to Square, flag MoveFlag) Move {
	return Move(from) | Move(to)<<6 | Move(flag)<<12
}

func (m Move) From() Square      { return Square(m & 0x3F) }
func (m Move) To() Square        { return Square((m >> 6) & 0x3F) }
func (m Move) Flag() MoveFlag    { return MoveFlag(m >> 12) }
func (m Move) IsCapture() bool   { return m.Flag()&captureBit != 0 }
func (m Move) IsPromotion() bool { return m.Flag()&promoBit != 0 }

// IsCastle reports whether m is either castling move.
func (m Move) IsCastle() bool {
	f := m.Flag()
	return f == KingCastle || f == QueenCastle
}

// Promotion returns the piece a promotion move creates, NoPieceType otherwise.
func (m Move) Promotion() PieceType {
	if !m.IsPromotion() {
		return NoPieceType
	}
	return Knight + PieceType(m.Flag()&3)
}

// promoFlag returns the promotion flag for pt, with the capture bit if capture.
func promoFlag(pt PieceType, capture bool) MoveFlag {
	f := promoBit | MoveFlag(pt-Knight)
	if capture {
		f |= captureBit
	}
	return f
}

var promoLetters = [...]byte{Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q'}

// String returns coordinate notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(promoLetters[m.Promotion()])
	}
	return s
}

// ParseMove resolves coordinate notation against the legal moves of pos.
// Flags come from the matching legal move, so the text need not carry them.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("parse move %q: want 4 or 5 characters", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("parse move %q: %w", s, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("parse move %q: %w", s, err)
	}
	promo := NoPieceType
	if len(s) == 5 {
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("parse move %q: bad promotion letter %q", s, s[4])
		}
	}
	if m, ok := pos.FindMove(from, to, promo); ok {
		return m, nil
	}
	return NoMove, fmt.Errorf("parse move %q: %w", s, ErrIllegalMove)
}

// MoveList is a fixed-capacity move buffer. The legal maximum in any
// position is 218, so 256 never overflows.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList returns an empty list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

func (ml *MoveList) Len() int          { return ml.count }
func (ml *MoveList) Get(i int) Move    { return ml.moves[i] }
func (ml *MoveList) Set(i int, m Move) { ml.moves[i] = m }
func (ml *MoveList) Clear()            { ml.count = 0 }

func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Contains reports whether m is in the list.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns a view of the moves. It is invalidated by the next Clear.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
