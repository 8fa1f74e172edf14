package main

import (
	"fmt"
	"io"
	"math/big"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"carrymap/internal/core"
)

func newStepCommand(out io.Writer) *cobra.Command {
	var (
		x        uint64
		showPred bool
	)
	cmd := &cobra.Command{
		Use:   "step <n>",
		Short: "Apply the map once and show the carry-chain decomposition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseOddValue(args[0])
			if err != nil {
				return err
			}
			m, err := core.NewMapConstant(x)
			if err != nil {
				return err
			}

			pair := core.PairFromBig(n)
			res := core.ScanStep(pair, m)

			fmt.Fprintf(out, "n     = %s\n", formatBig(n))
			fmt.Fprintf(out, "x     = %d  (shift s = %d)\n", m.X(), m.S())
			fmt.Fprintf(out, "pairs = %d\n", pair.Pairs())
			fmt.Fprintf(out, "left  lane: %s\n", laneBits(pair, true, 32))
			fmt.Fprintf(out, "right lane: %s\n", laneBits(pair, false, 32))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "%d*n+1 lanes (pre-shift, %d pairs):\n", m.X(), res.RawPairs)
			fmt.Fprintf(out, "left  lane: %s\n", wordLaneBits(res.RawLeft, res.RawPairs, 32))
			fmt.Fprintf(out, "right lane: %s\n", wordLaneBits(res.RawRight, res.RawPairs, 32))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "d    = %d  (lanes exchanged: %v)\n", res.D, res.Exchanged)
			fmt.Fprintf(out, "next = %s\n", formatBig(res.Next.Big()))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "gpk  = %s\n", res.Gpk.GpkString(64))
			fmt.Fprintf(out, "G=%d P=%d K=%d over %d pairs, longest carry chain %d\n",
				res.Gpk.GCount(), res.Gpk.PCount(), res.Gpk.KCount(),
				res.Gpk.ActivePairs(), res.Gpk.MaxCarryChain())

			if showPred {
				fmt.Fprintln(out)
				printPredicates(out, pair)
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&x, "x", 3, "map multiplier; x-1 must be a power of two")
	cmd.Flags().BoolVar(&showPred, "predicates", false, "print the sixteen predicate rows of n")
	return cmd
}

// parseOddValue reads a decimal integer and rejects anything the map does
// not act on.
func parseOddValue(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("cannot parse %q as a decimal integer", s)
	}
	if v.Sign() <= 0 || v.Bit(0) == 0 {
		return nil, errors.Errorf("n must be an odd positive integer, got %s", s)
	}
	return v, nil
}

// laneBits renders one lane of a pair number least significant pair first,
// truncated past limit pairs.
func laneBits(p *core.PairNumber, left bool, limit int) string {
	n := p.Pairs()
	trunc := n > limit
	if trunc {
		n = limit
	}
	buf := make([]byte, 0, n+3)
	for i := 0; i < n; i++ {
		b := p.RightBit(i)
		if left {
			b = p.LeftBit(i)
		}
		buf = append(buf, '0'+byte(b))
	}
	if trunc {
		buf = append(buf, '.', '.', '.')
	}
	return string(buf)
}

// wordLaneBits does the same for a raw packed lane.
func wordLaneBits(words []uint64, pairs, limit int) string {
	n := pairs
	trunc := n > limit
	if trunc {
		n = limit
	}
	buf := make([]byte, 0, n+3)
	for i := 0; i < n; i++ {
		buf = append(buf, '0'+byte((words[i/64]>>uint(i%64))&1))
	}
	if trunc {
		buf = append(buf, '.', '.', '.')
	}
	return string(buf)
}

func printPredicates(out io.Writer, p *core.PairNumber) {
	fmt.Fprintf(out, "predicates over %d pairs (most significant first):\n", p.Pairs())
	for id := 1; id <= core.NumPredicates; id++ {
		fmt.Fprintf(out, "  m%-2d %-6s %s\n", id, core.PredicateName(id), core.PredicateBitsMSB(p, id))
	}
}

// formatBig keeps huge values readable: full decimal up to 40 digits, head
// and tail with a digit count past that.
func formatBig(v *big.Int) string {
	s := v.String()
	if len(s) <= 40 {
		return s
	}
	return fmt.Sprintf("%s...%s <%d digits>", s[:12], s[len(s)-12:], len(s))
}
