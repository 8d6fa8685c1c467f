package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/maitriconnect/maitri-api/internal/persistence"
	"github.com/maitriconnect/maitri-api/internal/repository"
	"github.com/maitriconnect/maitri-api/internal/service"
)

var promoteEmail string

var promoteAdminCmd = &cobra.Command{
	Use:   "promote-admin",
	Short: "Grant the admin role to an existing account",
	Long: `Grant the admin role to the account registered with --email.

Roles cannot be changed through the HTTP API; this command is the only way to
create moderators.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if promoteEmail == "" {
			return errors.New("--email is required")
		}
		cfg, logger, err := loadEnv()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pg.Close()

		authService := service.NewAuthService(*cfg, service.AuthDependencies{
			UserRepo: repository.NewUserRepository(pg.PoolHandle()),
			Logger:   logger,
		})
		user, err := authService.PromoteAdmin(ctx, promoteEmail)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", user.Email)
		return nil
	},
}

func init() {
	promoteAdminCmd.Flags().StringVar(&promoteEmail, "email", "", "email of the account to promote")
}
