// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"yamdb/internal/models"
	"yamdb/internal/store"
)

var (
	superuserEmail    string
	superuserUsername string
)

// createSuperuserCmd creates an administrator. Administrators sign in
// with the same emailed code as everyone else.
var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an administrator account",
	Long: `Create an administrator account.

Example:
  yamdb createsuperuser --email root@example.com --username root`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !models.ValidUsername(superuserUsername) {
			return fmt.Errorf("invalid username %q: use at most %d letters, digits or @/./+/-/_ characters, and not %q",
				superuserUsername, models.MaxUsernameLen, models.MeUsername)
		}
		if !strings.Contains(superuserEmail, "@") {
			return fmt.Errorf("invalid email %q", superuserEmail)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		u, err := store.NewUserStore(db).Create(cmd.Context(), &models.User{
			Email:       strings.ToLower(superuserEmail),
			Username:    superuserUsername,
			Role:        models.RoleAdmin,
			IsStaff:     true,
			IsSuperuser: true,
		})
		if err != nil {
			return fmt.Errorf("create superuser: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Superuser %q created.\n", u.Username)
		return nil
	},
}

func init() {
	createSuperuserCmd.Flags().StringVar(&superuserEmail, "email", "", "Email address (required)")
	createSuperuserCmd.Flags().StringVar(&superuserUsername, "username", "", "Username (required)")
	createSuperuserCmd.MarkFlagRequired("email")
	createSuperuserCmd.MarkFlagRequired("username")
}
