package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}
	cmd.AddCommand(newTenantCreateCmd(), newTenantGetCmd(), newTenantListCmd())
	return cmd
}

func newTenantCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			tenant, err := d.client.Tenants().Create(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("creating tenant: %w", err)
			}
			if globalFlags.jsonOut {
				return printJSON(tenant)
			}
			fmt.Printf("tenant %q created\n", tenant.Name)
			return nil
		},
	}
}

func newTenantListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			tenants, err := d.client.Tenants().List(cmd.Context(), limit, offset)
			if err != nil {
				return fmt.Errorf("listing tenants: %w", err)
			}
			if globalFlags.jsonOut {
				return printJSON(tenants)
			}
			for _, tenant := range tenants {
				fmt.Println(tenant.Name)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of results to skip")
	return cmd
}

func newTenantGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			tenant, err := d.client.Tenants().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("getting tenant: %w", err)
			}
			if globalFlags.jsonOut {
				return printJSON(tenant)
			}
			fmt.Println(tenant.Name)
			return nil
		},
	}
}
