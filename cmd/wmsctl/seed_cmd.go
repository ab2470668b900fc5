package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	adminusers "wmsadmin/frontend/adminUsers"
	"wmsadmin/frontend/login"
	"wmsadmin/infrastructure/rbac"
	"wmsadmin/infrastructure/sqlite"
)

type seedOptions struct {
	Username    string
	Role        string
	PasswordEnv string
}

func newSeedUserCmd(global *globalOptions) *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed-user --username <name> --role <admin|operator|viewer>",
		Short: "Create a user or reset its password and role",
		Long:  "The password is read from the environment variable named by --password-env so it never shows up in shell history.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password := os.Getenv(opts.PasswordEnv)
			if password == "" {
				return fmt.Errorf("%s is required", opts.PasswordEnv)
			}
			db, _, err := global.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := seedUser(cmd.Context(), db, opts.Username, opts.Role, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded user (username=%s, role=%s)\n", strings.TrimSpace(opts.Username), opts.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Username, "username", "admin", "login name")
	cmd.Flags().StringVar(&opts.Role, "role", rbac.RoleAdmin, "one of "+strings.Join(rbac.Roles, ", "))
	cmd.Flags().StringVar(&opts.PasswordEnv, "password-env", "SEED_PASSWORD", "environment variable holding the password")
	return cmd
}

// seedUser creates the user or resets its password and role.
func seedUser(ctx context.Context, db *sqlite.DB, username, role, password string) error {
	in := adminusers.NewUser{Username: username, Password: password, Role: role}.Normalize()
	if err := in.Validate(); err != nil {
		return fmt.Errorf("seed %q: %w", in.Username, err)
	}
	return login.UpsertUserPasswordHash(ctx, db, in.Username, in.Role, password)
}
