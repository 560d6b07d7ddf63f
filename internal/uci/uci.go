// Package uci speaks a subset of the Universal Chess Interface over a
// line-oriented text stream.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
)

// PerftCache serves perft counts from persistent storage. *storage.Storage
// satisfies it.
type PerftCache interface {
	Perft(pos *board.Position, depth int) (nodes uint64, cached bool, err error)
}

// UCI implements the protocol handler.
type UCI struct {
	engine   *engine.Engine
	position *board.Position
	cache    PerftCache

	in  io.Reader
	out io.Writer
}

// New creates a handler reading commands from in and writing replies to out.
func New(eng *engine.Engine, in io.Reader, out io.Writer) *UCI {
	u := &UCI{
		engine:   eng,
		position: board.NewPosition(),
		in:       in,
		out:      out,
	}
	eng.OnInfo = u.sendInfo
	return u
}

// SetPerftCache makes the perft command consult c before counting.
func (u *UCI) SetPerftCache(c PerftCache) {
	u.cache = c
}

// Run processes commands until "quit" or end of input.
func (u *UCI) Run() error {
	scanner := bufio.NewScanner(u.in)
	for scanner.Scan() {
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
			u.println("readyok")
		case "ucinewgame":
			u.position = board.NewPosition()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "setoption":
			u.handleSetOption(args)
		case "quit":
			return nil
		// Debug commands
		case "d":
			u.println(u.position.String())
			u.printf("Fen: %s\n", u.position.ToFEN())
			u.printf("Checkers:%s\n", squareList(u.position.Checkers()))
		case "perft":
			u.handlePerft(args)
		default:
			u.printf("info string unknown command: %s\n", cmd)
		}
	}
	return scanner.Err()
}

func (u *UCI) println(a ...any) {
	fmt.Fprintln(u.out, a...)
}

func (u *UCI) printf(format string, a ...any) {
	fmt.Fprintf(u.out, format, a...)
}

func (u *UCI) handleUCI() {
	u.println("id name chesscore")
	u.println("id author the chesscore authors")
	u.println()
	u.printf("option name Depth type spin default %d min %d max %d\n", u.engine.Depth(), engine.MinUserDepth, engine.MaxUserDepth)
	u.println("option name Difficulty type combo default medium var easy var medium var hard")
	u.println("option name Eval type combo default classical var classical var material")
	u.println("uciok")
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// On any error the previous position is kept.
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
			u.printf("info string invalid fen: %v\n", err)
			return
		}
	default:
		u.printf("info string position: want startpos or fen\n")
		return
	}

	if movesAt < len(args) {
		for _, s := range args[movesAt+1:] {
			m, err := board.ParseMove(s, pos)
			if err != nil {
				u.printf("info string %v\n", err)
				return
			}
			pos.ApplyMove(m)
		}
	}
	u.position = pos
}

// handleGo searches the current position. Only "depth" is honored; the
// search always runs to completion.
func (u *UCI) handleGo(args []string) {
	depth := u.engine.Depth()
	for i := 0; i < len(args); i++ {
		if args[i] == "depth" && i+1 < len(args) {
			if d, err := strconv.Atoi(args[i+1]); err == nil {
				depth = d
			}
			i++
		}
	}

	best, _ := u.engine.SearchDepth(u.position, depth)
	u.printf("bestmove %s\n", best)
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	parts := []string{fmt.Sprintf("depth %d", info.Depth)}

	if engine.IsMateScore(info.Score) {
		mateIn := (engine.MateScore - info.Score + 1) / 2
		if info.Score < 0 {
			mateIn = -(engine.MateScore + info.Score + 1) / 2
		}
		parts = append(parts, fmt.Sprintf("score mate %d", mateIn))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	if info.Move != board.NoMove {
		parts = append(parts, "pv "+info.Move.String())
	}

	u.printf("info %s\n", strings.Join(parts, " "))
}

// handleSetOption processes "setoption name <name> value <value>".
func (u *UCI) handleSetOption(args []string) {
	var name, value []string
	var cur *[]string
	for _, arg := range args {
		switch arg {
		case "name":
			cur = &name
		case "value":
			cur = &value
		default:
			if cur != nil {
				*cur = append(*cur, arg)
			}
		}
	}
	val := strings.ToLower(strings.Join(value, " "))

	switch strings.ToLower(strings.Join(name, " ")) {
	case "depth":
		d, err := strconv.Atoi(val)
		if err != nil {
			u.printf("info string bad depth %q\n", val)
			return
		}
		u.engine.SetDepth(d)
	case "difficulty":
		d, ok := engine.ParseDifficulty(val)
		if !ok {
			u.printf("info string unknown difficulty %q\n", val)
			return
		}
		u.engine.SetDifficulty(d)
	case "eval":
		var ev engine.Evaluator
		switch val {
		case "classical":
			ev = engine.Classical{}
		case "material":
			ev = engine.Material
		default:
			u.printf("info string unknown eval %q\n", val)
			return
		}
		depth := u.engine.Depth()
		u.engine = engine.NewEngine(ev)
		u.engine.SetDepth(depth)
		u.engine.OnInfo = u.sendInfo
	default:
		u.printf("info string unknown option %q\n", strings.Join(name, " "))
	}
}

// handlePerft prints per-move counts for the current position followed by
// the total, in the usual divide format.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 1 {
			u.printf("info string bad perft depth %q\n", args[0])
			return
		}
		depth = d
	}

	start := time.Now()
	var nodes uint64
	if u.cache != nil {
		n, cached, err := u.cache.Perft(u.position, depth)
		if err != nil {
			u.printf("info string perft cache: %v\n", err)
			return
		}
		if cached {
			u.printf("info string perft %d served from cache\n", depth)
		}
		nodes = n
	} else {
		for _, e := range u.position.Divide(depth) {
			u.printf("%s: %d\n", e.Move, e.Nodes)
			nodes += e.Nodes
		}
	}
	elapsed := time.Since(start)

	u.println()
	u.printf("Nodes searched: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		u.printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}

func squareList(bb board.Bitboard) string {
	var sb strings.Builder
	for bb != 0 {
		sb.WriteByte(' ')
		sb.WriteString(bb.PopLSB().String())
	}
	return sb.String()
}
