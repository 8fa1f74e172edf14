package core

// The sixteen boolean predicates over a pair's (left, right) bits, in truth
// table order. Predicate ids are 1-based to match the usual m1..m16 naming.
const NumPredicates = 16

var predicateNames = [NumPredicates]string{
	"FALSE", "AND", "L>R", "LEFT", "R>L", "RIGHT", "XOR", "OR",
	"NOR", "XNOR", "NOT_R", "R→L", "NOT_L", "L→R", "NAND", "TRUE",
}

// PredicateName returns the display name of predicate id (1..16).
func PredicateName(id int) string { return predicateNames[id-1] }

// PredicateWord evaluates predicate id on a whole word of pairs at once.
func PredicateWord(id int, left, right uint64) uint64 {
	switch id {
	case 1:
		return 0
	case 2:
		return left & right
	case 3:
		return left &^ right
	case 4:
		return left
	case 5:
		return ^left & right
	case 6:
		return right
	case 7:
		return left ^ right
	case 8:
		return left | right
	case 9:
		return ^left &^ right
	case 10:
		return ^(left ^ right)
	case 11:
		return ^right
	case 12:
		return left | ^right
	case 13:
		return ^left
	case 14:
		return ^left | right
	case 15:
		return ^(left & right)
	case 16:
		return ^uint64(0)
	}
	return 0
}

// WordsBitsMSB renders the low n bits of a packed word sequence most
// significant first, for trace output.
func WordsBitsMSB(words []uint64, n int) string {
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		pos := n - 1 - i
		if (words[pos/64]>>uint(pos%64))&1 != 0 {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}

// PredicateBitsMSB evaluates predicate id over every pair of p and renders
// the result most significant pair first.
func PredicateBitsMSB(p *PairNumber, id int) string {
	l, r := p.LeftWords(), p.RightWords()
	out := make([]uint64, len(l))
	for w := range l {
		out[w] = PredicateWord(id, l[w], r[w])
	}
	return WordsBitsMSB(out, p.Pairs())
}
