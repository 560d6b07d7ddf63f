package board

// Perft counts the leaf nodes of the legal move tree to the given depth.
// Each depth reuses one MoveList.
func (p *Position) Perft(depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	lists := make([]MoveList, depth)
	return p.perft(depth, lists)
}

func (p *Position) perft(depth int, lists []MoveList) uint64 {
	if depth == 0 {
		return 1
	}
	ml := &lists[depth-1]
	p.GenerateLegal(ml)
	if depth == 1 {
		return uint64(ml.Len())
	}
	var nodes uint64
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		p.MakeMove(m)
		nodes += p.perft(depth-1, lists)
		p.UnmakeMove(m)
	}
	return nodes
}

// DivideEntry is one root move and the size of its subtree.
type DivideEntry struct {
	Move  Move
	Nodes uint64
}

// Divide runs perft below each root move, in generation order.
func (p *Position) Divide(depth int) []DivideEntry {
	if depth <= 0 {
		return nil
	}
	var root MoveList
	p.GenerateLegal(&root)
	lists := make([]MoveList, depth)
	out := make([]DivideEntry, 0, root.Len())
	for _, m := range root.Slice() {
		u := p.MakeMove(m)
		out = append(out, DivideEntry{Move: m, Nodes: p.perft(depth-1, lists)})
		u.Restore()
	}
	return out
}
