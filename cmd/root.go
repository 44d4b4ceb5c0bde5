// Package cmd implements the CLI commands for postpipe using Cobra.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/gaurav-prasanna/postpipe/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "postpipe",
	Short: "postpipe turns Substack posts into Markdown, ZIP, PDF or JSON",
	Long: `postpipe fetches a Substack post, extracts the article into a document
model and renders it as Markdown, a Markdown+images ZIP bundle, PDF or JSON.

Usage:
  postpipe convert <url> [flags]
  postpipe config show|set|path`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	},
}

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Settings file (default: $XDG_CONFIG_HOME/postpipe/config.yaml)")
}

// configPath resolves the settings file location.
func configPath() (string, error) {
	if flagConfig != "" {
		return flagConfig, nil
	}
	return config.DefaultPath()
}

// loadSettings reads the settings file, falling back to defaults when it is absent.
func loadSettings() (config.Settings, error) {
	path, err := configPath()
	if err != nil {
		return config.Defaults(), err
	}
	s, err := config.Load(path)
	if err != nil {
		return s, err
	}
	log.Debug().Str("path", path).Msg("settings loaded")
	return s, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
