// Package main provides the wordbot entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wordbot/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	cfgPath string
	envFile string
)

func main() {
	os.Exit(exitCode(rootCmd.Execute()))
}

var rootCmd = &cobra.Command{
	Use:   "bot",
	Short: "Post five vocabulary words to a Telegram channel every day",
	Long: `bot posts a batch of five Persian words to a Telegram channel once a day
at a fixed UTC time.

Configuration comes from environment variables (optionally loaded from a .env
file) layered over an optional YAML/JSON config file. Without a subcommand the
bot runs until SIGINT or SIGTERM.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "optional YAML/JSON config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env if present)")
	rootCmd.Version = Version

	rootCmd.AddCommand(sendNowCmd, previewCmd, nextCmd)
}

func loadConfig(skipCredentials bool) (*config.Config, error) {
	return config.Load(config.Options{
		Path:            cfgPath,
		EnvFile:         envFile,
		SkipCredentials: skipCredentials,
	})
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	var ce *config.Error
	if errors.As(err, &ce) {
		return ExitConfigError
	}
	return ExitError
}
