package core

import "testing"

func TestPredicateWords(t *testing.T) {
	l, r := uint64(0b1100), uint64(0b1010)

	cases := []struct {
		id   int
		name string
		want uint64
	}{
		{1, "FALSE", 0},
		{2, "AND", 0b1000},
		{3, "L>R", 0b0100},
		{4, "LEFT", 0b1100},
		{5, "R>L", 0b0010},
		{6, "RIGHT", 0b1010},
		{7, "XOR", 0b0110},
		{8, "OR", 0b1110},
		{16, "TRUE", ^uint64(0)},
	}
	for _, c := range cases {
		if got := PredicateName(c.id); got != c.name {
			t.Errorf("predicate %d name: got %q, want %q", c.id, got, c.name)
		}
		if got := PredicateWord(c.id, l, r); got != c.want {
			t.Errorf("predicate %s: got %#b, want %#b", c.name, got, c.want)
		}
	}

	// The complemented predicates are exact complements of their duals.
	duals := [][2]int{{1, 16}, {2, 15}, {4, 13}, {6, 11}, {7, 10}, {8, 9}}
	for _, d := range duals {
		if PredicateWord(d[0], l, r) != ^PredicateWord(d[1], l, r) {
			t.Errorf("predicates %d and %d should complement", d[0], d[1])
		}
	}
}

func TestPredicateBitsMSB(t *testing.T) {
	p := PairFromUint64(27) // pairs bottom-up: (1,1), (1,0), (0,1)

	if got := PredicateBitsMSB(p, 4); got != "011" {
		t.Errorf("LEFT lane of 27: got %q, want \"011\"", got)
	}
	if got := PredicateBitsMSB(p, 6); got != "101" {
		t.Errorf("RIGHT lane of 27: got %q, want \"101\"", got)
	}
	if got := PredicateBitsMSB(p, 7); got != "110" {
		t.Errorf("XOR lanes of 27: got %q, want \"110\"", got)
	}
	if got := PredicateBitsMSB(p, 2); got != "001" {
		t.Errorf("AND lanes of 27: got %q, want \"001\"", got)
	}
}

func TestWordsBitsMSB(t *testing.T) {
	if got := WordsBitsMSB([]uint64{0b1011}, 4); got != "1011" {
		t.Errorf("got %q, want \"1011\"", got)
	}
	words := []uint64{0, 1} // bit 64 set
	got := WordsBitsMSB(words, 65)
	if got[0] != '1' {
		t.Errorf("bit 64 should render first, got %q...", got[:8])
	}
	for i := 1; i < 65; i++ {
		if got[i] != '0' {
			t.Fatalf("bit %d should be zero", 64-i)
		}
	}
}
