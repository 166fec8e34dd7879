package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/temcen/tastematch/internal/app"
	"github.com/temcen/tastematch/internal/messaging"
)

var (
	watchGroup string
	watchUser  string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Streams match notifications as rounds publish them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Kafka.Enabled {
			return fmt.Errorf("watch: kafka is disabled in config")
		}

		consumer := messaging.NewMatchConsumer(cfg, watchGroup, app.NewLogger(cfg))
		defer consumer.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		err = consumer.Consume(ctx, func(n messaging.MatchNotification) error {
			if watchUser != "" && n.UserID != watchUser {
				return nil
			}
			_, err := fmt.Fprintln(out, formatNotification(n))
			return err
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchGroup, "group", "matchctl-watch", "kafka consumer group")
	watchCmd.Flags().StringVarP(&watchUser, "user", "u", "", "only show matches for this user")
}
