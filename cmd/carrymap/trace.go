package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"carrymap/internal/core"
	"carrymap/pkg/carrymap"
)

// traceShowLimit bounds the step table: past it only the final five steps
// are printed.
const traceShowLimit = 50

func newTraceCommand(stdout, stderr io.Writer) *cobra.Command {
	var (
		x        uint64
		maxSteps uint64
		showGpk  bool
		showPred bool
	)
	cmd := &cobra.Command{
		Use:   "trace <n>",
		Short: "Walk a value to its terminal, recording every step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			n, err := parseOddValue(args[0])
			if err != nil {
				return err
			}

			opts := carrymap.DefaultAnalyzeOptions()
			opts.X = x
			opts.MaxSteps = maxSteps
			opts.Verbose = verbose

			start := time.Now()
			if verbose {
				last := start
				opts.Progress = func(step uint64, pairs, d int) {
					if time.Since(last) < time.Second {
						return
					}
					last = time.Now()
					elapsed := time.Since(start).Seconds()
					fmt.Fprintf(stderr, "  [%.0fs] step %d, width %d pairs, %.0f steps/s\n",
						elapsed, step, pairs, float64(step)/elapsed)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			traj, err := carrymap.AnalyzeSingleContext(ctx, n, opts)
			if err != nil {
				return err
			}
			printTrajectory(stdout, traj, showGpk)
			if showPred {
				fmt.Fprintln(stdout)
				printPredicates(stdout, core.PairFromBig(n))
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&x, "x", 3, "map multiplier; x-1 must be a power of two")
	cmd.Flags().Uint64Var(&maxSteps, "max-steps", core.DefaultMaxSteps, "odd-step budget before giving up")
	cmd.Flags().BoolVar(&showGpk, "gpk", false, "print each step's classification string")
	cmd.Flags().BoolVar(&showPred, "predicates", false, "print the sixteen predicate rows of n")
	return cmd
}

func printTrajectory(out io.Writer, traj *carrymap.Trajectory, showGpk bool) {
	fmt.Fprintf(out, "trajectory of %s under %dn+1\n\n", formatBig(traj.Start), traj.X)
	fmt.Fprintf(out, "%7s  %-44s %-7s\n", "step", "value", "d")
	fmt.Fprintf(out, "%7d  %-44s\n", 0, formatBig(traj.Start))
	total := len(traj.Steps)
	for i, s := range traj.Steps {
		if i >= traceShowLimit && i < total-5 {
			if i == traceShowLimit {
				fmt.Fprintf(out, "%7s  (%d steps elided)\n", "...", total-traceShowLimit-5)
			}
			continue
		}
		line := fmt.Sprintf("%7d  %-44s d=%-5d", i+1, formatBig(s.Value()), s.D)
		if s.Exchanged {
			line += " x"
		}
		if showGpk {
			line += "  " + s.Gpk.GpkString(24)
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)

	switch traj.Outcome {
	case carrymap.Converged:
		fmt.Fprintf(out, "converged: %d odd steps, %d halvings, stopping time %d\n",
			traj.OddSteps, traj.Halvings, traj.StoppingTime)
	case carrymap.CycleDetected:
		fmt.Fprintf(out, "cycle of length %d after %d odd steps\n", traj.CycleLength, traj.OddSteps)
		if vals := traj.CycleValues(); len(vals) > 0 {
			fmt.Fprintf(out, "cycle members:")
			for _, v := range vals {
				fmt.Fprintf(out, " %s", formatBig(v))
			}
			fmt.Fprintln(out)
		}
	default:
		what := "step budget exhausted"
		if traj.Cancelled {
			what = "interrupted"
		}
		fmt.Fprintf(out, "%s after %d odd steps, final value %s\n",
			what, traj.OddSteps, formatBig(traj.Final))
	}
	fmt.Fprintf(out, "peak value %s (%d pairs)\n", formatBig(traj.MaxValue), traj.MaxPairs)

	st := traj.Stats
	if st.TotalPairs == 0 {
		return
	}
	fmt.Fprintln(out)
	pct := func(c uint64) float64 { return 100 * float64(c) / float64(st.TotalPairs) }
	fmt.Fprintf(out, "classified %d pairs over %d steps: G=%d (%.1f%%) P=%d (%.1f%%) K=%d (%.1f%%)\n",
		st.TotalPairs, st.TotalSteps, st.TotalG, pct(st.TotalG), st.TotalP, pct(st.TotalP), st.TotalK, pct(st.TotalK))
	printChainHist(out, &st)
	printDHist(out, traj.DHist)
}

func printChainHist(out io.Writer, st *carrymap.GpkStats) {
	fmt.Fprintf(out, "longest carry chain per step:\n")
	for length, count := range st.CarryChainHist {
		if count != 0 {
			fmt.Fprintf(out, "  %3d: %d\n", length, count)
		}
	}
}

func printDHist(out io.Writer, hist map[int]uint64) {
	if len(hist) == 0 {
		return
	}
	ds := make([]int, 0, len(hist))
	for d := range hist {
		ds = append(ds, d)
	}
	sort.Ints(ds)
	fmt.Fprintf(out, "shift distribution:\n")
	for _, d := range ds {
		fmt.Fprintf(out, "  d=%-3d %d\n", d, hist[d])
	}
}
