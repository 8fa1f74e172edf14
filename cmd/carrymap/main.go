// Command carrymap steps odd values through T(n) = (x*n+1)/2^d without a
// multiplier: every application is a carry-chain scan over the value's bit
// pairs. It exposes one-step inspection, full trajectory traces, parallel
// range sweeps and the persisted sweep records.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	rootCmd := NewRootCommand(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		// pkg/errors wrapping makes %+v render the stack.
		if os.Getenv("CARRYMAP_DEBUG") != "" {
			fmt.Fprintf(os.Stderr, "error: %+v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// NewRootCommand builds the carrymap command tree.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:   "carrymap",
		Short: "Carry-chain verification of Collatz-type maps",
		Long: `carrymap applies maps of the form T(n) = (x*n+1)/2^d, with x-1 a power
of two, by scanning carry chains over the value's bit pairs instead of
multiplying. Subcommands inspect a single step, trace a full trajectory,
sweep a seed range in parallel, and check persisted sweep records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setAllConfig(viper.New(), cmd.Flags())
		},
	}
	rc.PersistentFlags().StringP("config", "c", "", "configuration file to read from")
	rc.PersistentFlags().BoolP("verbose", "v", false, "log worker startup and progress")

	rc.AddCommand(newStepCommand(stdout))
	rc.AddCommand(newTraceCommand(stdout, stderr))
	rc.AddCommand(newSweepCommand(stdout))
	rc.AddCommand(newRecordCommand(stdout))
	rc.AddCommand(newTableCommand(stdout))
	rc.AddCommand(newSelfCheckCommand(stdout))

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// setAllConfig takes a FlagSet to be the definition of all configuration
// options, plus their defaults. It reads from the command line, the
// environment, and a config file if one is named, and applies them in that
// priority order. Environment variables are capitalized flag names with
// dashes replaced by underscores and a CARRYMAP_ prefix.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}

	v.SetEnvPrefix("CARRYMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	validTags := make(map[string]bool)
	flags.VisitAll(func(f *pflag.Flag) {
		validTags[f.Name] = true
	})

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading configuration file %q", path)
		}
		for _, key := range v.AllKeys() {
			if !validTags[key] {
				return errors.Errorf("invalid option in configuration file: %v", key)
			}
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			// A flag set on the command line outranks the environment and
			// the config file.
			return
		}
		if !v.IsSet(f.Name) {
			return
		}
		flagErr = f.Value.Set(v.GetString(f.Name))
	})
	return flagErr
}
