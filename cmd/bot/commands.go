package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wordbot/internal/app"
	logx "wordbot/pkg/logx"
)

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a.Logger().Info("wordbot starting", logx.String("version", Version))
	if err := a.Run(ctx); err != nil {
		return err
	}
	a.Logger().Info("wordbot stopped")
	return nil
}

var sendNowCmd = &cobra.Command{
	Use:   "send-now",
	Short: "Send one batch immediately and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		batch, err := a.SendNow(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "sent:", strings.Join(batch, ", "))
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print one rendered message without sending it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		text, err := a.Preview(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the resolved local send time and the next fire time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		now := time.Now()
		res, trig := a.Plan(now)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "configured (UTC): %s\n", res.UTC)
		fmt.Fprintf(out, "local trigger:    %s %s\n", res.Local, trig.Location())
		if res.Fallback {
			fmt.Fprintf(out, "fallback:         %v\n", res.Err)
		}
		fmt.Fprintf(out, "next send:        %s\n", trig.Next(now).Format(time.RFC3339))
		return nil
	},
}
