package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temcen/tastematch/internal/app"
	"github.com/temcen/tastematch/internal/services"
	"github.com/temcen/tastematch/pkg/models"
)

var tokenRole string

var tokenCmd = &cobra.Command{
	Use:   "token [user]",
	Short: "Issues an API token for a user",
	Long:  `Signs a JWT with the configured secret. Use --role admin for the admin endpoints.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenRole != models.RoleMember && tokenRole != models.RoleAdmin {
			return fmt.Errorf("token: unknown role %q", tokenRole)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Auth.JWTSecret == "" {
			return fmt.Errorf("token: auth.jwt_secret is not set")
		}

		token, err := services.NewAuthService(&cfg.Auth, app.NewLogger(cfg)).GenerateToken(args[0], tokenRole)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&tokenRole, "role", models.RoleMember, "token role (member or admin)")
}
