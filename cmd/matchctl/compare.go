package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare [user] [other user]",
	Short: "Prints the taste similarity between two users",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == args[1] {
			return fmt.Errorf("compare: need two different users")
		}

		rt, err := openSession()
		if err != nil {
			return err
		}
		defer rt.close()

		profiles, err := rt.services.Profiles.LoadProfiles(context.Background(), args, time.Now())
		if err != nil {
			return fmt.Errorf("compare: %w", err)
		}
		for _, id := range args {
			if !profiles[id].Eligible() {
				return fmt.Errorf("compare: %s has no public listening history", id)
			}
		}

		result := rt.services.Selector.Engine().Compare(profiles[args[0]], profiles[args[1]])
		return renderComparison(cmd.OutOrStdout(), result)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
