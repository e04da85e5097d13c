// Command curie estimates Curie depths on a synthetic magnetic survey.
//
// The survey is a random-phase field whose spectrum follows the Bouligand
// law for the parameters in the run file, so every estimate can be
// compared with the truth.
//
// Usage:
//
//	curie [--config run.yaml] [--verbose] <command> [flags]
//
// Examples:
//
//	curie synth
//	curie spectrum --x 64 --y 64
//	curie fit --tanaka
//	curie mcmc --nsim 5000
//	curie batch --mode sensitivity
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type app struct {
	out        io.Writer
	configPath string
	verbose    bool

	run    runFile
	logger *zap.Logger
}

func main() {
	a := &app{out: os.Stdout}
	if err := a.rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "curie",
		Short:         "Curie depth estimation from magnetic anomaly spectra",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			rf, err := loadRunFile(a.configPath)
			if err != nil {
				return err
			}
			a.run = rf
			if a.logger == nil {
				a.logger, err = newLogger(a.verbose)
				if err != nil {
					return err
				}
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(a.out)
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML run file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.synthCmd(),
		a.spectrumCmd(),
		a.fitCmd(),
		a.mcmcCmd(),
		a.batchCmd(),
	)
	return root
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}
