package cli

import (
	"fmt"

	"galaxy-server/internal/auth"
	"galaxy-server/internal/shared/database"

	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.RunMigrationsContext(cmd.Context()); err != nil {
				return err
			}

			printf(cmd.OutOrStdout(), "%s Schema up to date (%s)\n", success, db.Dialect)
			return nil
		},
	}
}

func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			token, err := auth.GenerateAdminToken(subject, cfg.Auth)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			printf(cmd.OutOrStdout(), "%s\n", token)
			return nil
		},
	}

	cmd.Flags().String("subject", "galaxyctl", "Subject recorded in the token")
	return cmd
}
