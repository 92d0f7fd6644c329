package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/estate-admin-backend/internal/database"
	"github.com/sandeepkv93/estate-admin-backend/internal/di"
	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
	"github.com/sandeepkv93/estate-admin-backend/internal/service"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd.Context(), os.Stderr)
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()
			if err := database.Migrate(db); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("migrations applied"))
			return err
		},
	}
}

func newEnsureAdminCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-admin",
		Short: "Create the bootstrap admin account if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd.Context(), os.Stderr)
			if err != nil {
				return err
			}
			users, cleanup, err := di.InitializeUserService(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := service.EnsureAdmin(cmd.Context(), users, cfg.BootstrapAdminName, cfg.BootstrapAdminPassword, logger); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render("admin ready:"), cfg.BootstrapAdminName)
			return err
		},
	}
}

type createUserOptions struct {
	name     string
	password string
	role     string
}

func newCreateUserCommand() *cobra.Command {
	opts := &createUserOptions{}
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user with the given role",
		RunE: func(cmd *cobra.Command, args []string) error {
			role := domain.Role(opts.role)
			if !role.Valid() {
				return fmt.Errorf("invalid role %q: want ordinary, admin or root", opts.role)
			}
			if opts.password == "" {
				opts.password = os.Getenv("ESTATE_USER_PASSWORD")
			}
			cfg, logger, err := loadConfig(cmd.Context(), os.Stderr)
			if err != nil {
				return err
			}
			users, cleanup, err := di.InitializeUserService(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()
			user, err := users.Create(cmd.Context(), service.CreateUserInput{Name: opts.name, Password: opts.password, Role: role})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s) id=%s\n", okStyle.Render("user created:"), user.Name, user.Role, user.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "login name")
	cmd.Flags().StringVar(&opts.password, "password", "", "password (defaults to ESTATE_USER_PASSWORD)")
	cmd.Flags().StringVar(&opts.role, "role", string(domain.RoleAdmin), "ordinary, admin or root")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
