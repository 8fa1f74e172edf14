package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"carrymap/internal/core"
	"carrymap/pkg/carrymap"
)

func newSweepCommand(out io.Writer) *cobra.Command {
	var (
		x         uint64
		workers   int
		maxSteps  uint64
		batch     uint64
		rule      string
		noStats   bool
		packed    bool
		selfCheck bool
		outDir    string
	)
	cmd := &cobra.Command{
		Use:   "sweep <lo> <hi>",
		Short: "Verify every odd seed in [lo, hi)",
		Long: `Sweep walks every odd seed in the half-open range [lo, hi) to its
terminal and aggregates the results. Seeds that do not settle are listed
as anomalies. Unless --out is emptied, the sweep record is written as
JSON with an integrity digest.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			lo, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return errors.Wrapf(err, "parsing lo %q", args[0])
			}
			hi, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return errors.Wrapf(err, "parsing hi %q", args[1])
			}

			opts := carrymap.DefaultSweepOptions()
			opts.X = x
			opts.Workers = workers
			opts.MaxSteps = maxSteps
			opts.Batch = batch
			opts.CollectGpk = !noStats
			opts.UseNative = !packed
			opts.SelfCheck = selfCheck
			opts.Verbose = verbose
			switch rule {
			case "at-one":
				opts.Rule = carrymap.StopAtOne
			case "below-start":
				opts.Rule = carrymap.StopBelowStart
			default:
				return errors.Errorf("unknown stop rule %q (want at-one or below-start)", rule)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			res, err := carrymap.Sweep(ctx, lo, hi, opts)
			if err != nil {
				return err
			}
			printSweep(out, res)

			if outDir == "" {
				return nil
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return errors.Wrapf(err, "creating output directory %q", outDir)
			}
			name := fmt.Sprintf("sweep_%dn1_%d_%d_%s.json",
				res.X, res.Lo, res.Hi, time.Now().Format("20060102T150405"))
			path := filepath.Join(outDir, name)
			if err := carrymap.NewRecord(res).Save(path); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nrecord written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&x, "x", 3, "map multiplier; x-1 must be a power of two")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker count; 0 means one per CPU")
	cmd.Flags().Uint64Var(&maxSteps, "max-steps", core.DefaultMaxSteps, "odd-step budget per seed")
	cmd.Flags().Uint64Var(&batch, "batch", core.ProgressBatch, "seeds per progress report and cancellation check")
	cmd.Flags().StringVar(&rule, "rule", "at-one", "stop rule: at-one or below-start")
	cmd.Flags().BoolVar(&noStats, "no-stats", false, "skip classification statistics")
	cmd.Flags().BoolVar(&packed, "packed", false, "run every seed in the packed tier")
	cmd.Flags().BoolVar(&selfCheck, "selfcheck", false, "cross-check the engines before sweeping")
	cmd.Flags().StringVarP(&outDir, "out", "o", "output", "record directory; empty disables the record")
	return cmd
}

func printSweep(out io.Writer, res *carrymap.Result) {
	fmt.Fprintf(out, "range [%d, %d) under %dn+1, rule %s, %d workers\n",
		res.Lo, res.Hi, res.X, res.Rule, res.Workers)
	if res.Cancelled {
		total := (res.Hi - res.Lo + 1) / 2
		fmt.Fprintf(out, "interrupted: %d of %d seeds processed\n", res.Processed, total)
	}
	fmt.Fprintf(out, "verified %d of %d seeds in %s\n",
		res.Verified, res.Processed, res.Elapsed.Round(time.Millisecond))
	if res.MaxStop > 0 {
		fmt.Fprintf(out, "max stopping time %d at n=%d\n", res.MaxStop, res.MaxStopSeed)
	}
	fmt.Fprintf(out, "max width %d pairs at n=%d\n", res.MaxPairs, res.MaxPairsSeed)

	if st := res.Stats; st.TotalPairs > 0 {
		pct := func(c uint64) float64 { return 100 * float64(c) / float64(st.TotalPairs) }
		fmt.Fprintf(out, "classified %d pairs over %d steps: G=%.1f%% P=%.1f%% K=%.1f%%\n",
			st.TotalPairs, st.TotalSteps, pct(st.TotalG), pct(st.TotalP), pct(st.TotalK))
	}

	if len(res.Anomalies) == 0 {
		return
	}
	fmt.Fprintf(out, "anomalies (%d):\n", len(res.Anomalies))
	for i, a := range res.Anomalies {
		if i == 20 {
			fmt.Fprintf(out, "  ... and %d more\n", len(res.Anomalies)-20)
			break
		}
		fmt.Fprintf(out, "  n=%-20d %-14s %s\n", a.Seed, a.Kind, a.Detail)
	}
}

func newRecordCommand(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "record <file>",
		Short: "Load a sweep record and verify its integrity digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := carrymap.LoadRecord(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "digest %s ok (schema %d)\n", rec.Digest, rec.Schema)
			fmt.Fprintf(out, "range [%s, %s) under %dn+1, rule %s, %d workers\n",
				rec.Lo, rec.Hi, rec.X, rec.Rule, rec.Workers)
			state := "complete"
			if rec.Cancelled {
				state = "interrupted"
			}
			fmt.Fprintf(out, "%s: verified %d of %d seeds in %s\n",
				state, rec.Verified, rec.Processed, time.Duration(rec.ElapsedMS)*time.Millisecond)
			if rec.MaxStoppingTime > 0 {
				fmt.Fprintf(out, "max stopping time %d at n=%s\n", rec.MaxStoppingTime, rec.MaxStoppingSeed)
			}
			fmt.Fprintf(out, "max width %d pairs at n=%s\n", rec.MaxPairWidth, rec.MaxPairSeed)
			fmt.Fprintf(out, "%d anomalies\n", len(rec.Anomalies))
			return nil
		},
	}
}
