package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/table-booking/services"
)

// The CLI acts as staff.
var cliActor = services.Actor{IsStaff: true}

func newTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Manage restaurant tables",
	}
	cmd.AddCommand(newTableAddCmd())
	cmd.AddCommand(newTableListCmd())
	return cmd
}

func newTableAddCmd() *cobra.Command {
	var number, capacity int

	c := &cobra.Command{
		Use:   "add",
		Short: "Add a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := open()
			if err != nil {
				return err
			}
			defer closeDB(db)
			tables := services.NewTableService(services.NewStore(db), nil)
			table, err := tables.Create(context.Background(), cliActor, services.TableInput{Number: number, Capacity: capacity})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", table)
			return nil
		},
	}

	c.Flags().IntVar(&number, "number", 0, "table number")
	c.Flags().IntVar(&capacity, "capacity", 0, "seats")
	_ = c.MarkFlagRequired("number")
	_ = c.MarkFlagRequired("capacity")
	return c
}

func newTableListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := open()
			if err != nil {
				return err
			}
			defer closeDB(db)
			tables, err := services.NewTableService(services.NewStore(db), nil).List(context.Background())
			if err != nil {
				return err
			}
			for _, t := range tables {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}
