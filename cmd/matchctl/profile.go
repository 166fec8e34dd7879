package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var profileArtists int

var profileCmd = &cobra.Command{
	Use:   "profile [user]",
	Short: "Prints a user's taste profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openSession()
		if err != nil {
			return err
		}
		defer rt.close()

		profile, err := rt.services.Profiles.Profile(context.Background(), args[0], time.Now())
		if err != nil {
			return fmt.Errorf("profile: %w", err)
		}
		return renderProfile(cmd.OutOrStdout(), profile, profileArtists)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)

	profileCmd.Flags().IntVarP(&profileArtists, "number", "n", 10, "number of top artists to show")
}
