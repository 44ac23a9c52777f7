package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"civic-backend/internal/service"
)

func (c *cli) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "promote <email> <role>",
		Short: "Set a user's role (citizen, staff or admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.ctx(cmd)
			defer cancel()

			u, err := c.be.Auth.SetRole(ctx, args[0], args[1])
			switch {
			case errors.Is(err, service.ErrUserNotFound):
				return fmt.Errorf("no user with email %s", args[0])
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", u.Username, u.Email, u.Role)
			return nil
		},
	})
	return cmd
}
