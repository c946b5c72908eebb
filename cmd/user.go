package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/table-booking/services"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserAddCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var username, email, password string
	var staff bool

	c := &cobra.Command{
		Use:   "add",
		Short: "Add a user; --staff grants the staff area",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := open()
			if err != nil {
				return err
			}
			defer closeDB(db)
			users := services.NewUserService(services.NewStore(db), nil)
			user, err := users.CreateUser(context.Background(), services.Registration{
				Username: username,
				Email:    email,
				Password: password,
			}, staff)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %q (id=%d, staff=%t)\n", user.Username, user.ID, user.IsStaff)
			return nil
		},
	}

	c.Flags().StringVar(&username, "username", "", "username")
	c.Flags().StringVar(&email, "email", "", "email")
	c.Flags().StringVar(&password, "password", "", "password")
	c.Flags().BoolVar(&staff, "staff", false, "create a staff account")
	_ = c.MarkFlagRequired("username")
	_ = c.MarkFlagRequired("password")
	return c
}
