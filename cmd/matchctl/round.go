package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var roundCmd = &cobra.Command{
	Use:   "round",
	Short: "Runs one weekly matching round now",
	Long:  `Builds every eligible user's profile, selects and stores this week's matches and prints the round summary.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openSession()
		if err != nil {
			return err
		}
		defer rt.close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary, err := rt.services.Round.Run(ctx, time.Now())
		if err != nil {
			return err
		}
		return renderSummary(cmd.OutOrStdout(), summary)
	},
}

func init() {
	rootCmd.AddCommand(roundCmd)
}
