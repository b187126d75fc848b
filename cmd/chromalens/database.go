package main

import (
	"fmt"

	"github.com/spf13/cobra"

	chromalens "github.com/chromalens/chromalens-go"
)

func newDatabaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "database",
		Aliases: []string{"db"},
		Short:   "Manage databases",
	}
	cmd.AddCommand(
		newDatabaseCreateCmd(),
		newDatabaseGetCmd(),
		newDatabaseListCmd(),
		newDatabaseCountCollectionsCmd(),
		newDatabaseDeleteCmd(),
	)
	return cmd
}

func newDatabaseCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a database in the current tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			db, err := d.client.Databases().Create(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("creating database: %w", err)
			}
			if globalFlags.jsonOut {
				return printJSON(db)
			}
			fmt.Printf("database %q created in tenant %q\n", db.Name, db.Tenant)
			return nil
		},
	}
}

func newDatabaseGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			db, err := d.client.Databases().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("getting database: %w", err)
			}
			if globalFlags.jsonOut {
				return printJSON(db)
			}
			return printTable([]string{"NAME", "TENANT", "ID"}, [][]string{{db.Name, db.Tenant, db.ID}})
		},
	}
}

func newDatabaseCountCollectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count-collections [name]",
		Short: "Count collections in a database (defaults to the current one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			var opts []chromalens.CallOption
			if len(args) == 1 {
				opts = append(opts, chromalens.InDatabase(args[0]))
			}
			n, err := d.client.Collections().Count(cmd.Context(), opts...)
			if err != nil {
				return fmt.Errorf("counting collections: %w", err)
			}
			if globalFlags.jsonOut {
				return printJSON(map[string]int{"count": n})
			}
			fmt.Println(n)
			return nil
		},
	}
}

func newDatabaseListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List databases in the current tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			dbs, err := d.client.Databases().List(cmd.Context(), limit, offset)
			if err != nil {
				return fmt.Errorf("listing databases: %w", err)
			}
			if globalFlags.jsonOut {
				return printJSON(dbs)
			}
			rows := make([][]string, len(dbs))
			for i, db := range dbs {
				rows[i] = []string{db.Name, db.Tenant}
			}
			return printTable([]string{"NAME", "TENANT"}, rows)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of results to skip")
	return cmd
}

func newDatabaseDeleteCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a database and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("deleting database %q destroys all of its collections; re-run with --confirm", args[0])
			}
			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.client.Databases().Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("deleting database: %w", err)
			}
			fmt.Printf("database %q deleted\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "Actually perform the deletion")
	return cmd
}
