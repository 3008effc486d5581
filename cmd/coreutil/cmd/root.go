// Package cmd implements coreutil, the operator CLI for the consensus
// core: genesis bootstrap, a raw state-store dump, and an offline
// proof-of-finality verification dry run. Grounded on the teacher's
// cmd/util/cmd/<tool> layout, where each subcommand file registers
// itself on a shared rootCmd via init().
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	flagDatadir  string
	flagLogLevel string

	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "coreutil",
	Short: "operator tooling for the consensus core: bootstrap, state-store dump, proof verification",
}

// Execute runs the CLI, exiting the process with status 1 on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDatadir, "datadir", "d", "/var/ifcore/data", "directory holding the badger state store")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	cobra.OnInitialize(initConfig, initLogger)
}

func initConfig() {
	viper.SetEnvPrefix("IFCORE")
	viper.AutomaticEnv()
}

func initLogger() {
	level, err := zerolog.ParseLevel(flagLogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
