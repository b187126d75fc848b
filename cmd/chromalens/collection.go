package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	chromalens "github.com/chromalens/chromalens-go"
)

func newCollectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collection",
		Aliases: []string{"coll"},
		Short:   "Manage collections",
	}
	cmd.AddCommand(
		newCollectionCreateCmd(),
		newCollectionListCmd(),
		newCollectionGetCmd(),
		newCollectionCountCmd(),
		newCollectionUpdateCmd(),
		newCollectionDeleteCmd(),
	)
	return cmd
}

func newCollectionCreateCmd() *cobra.Command {
	var (
		metadataJSON string
		dimension    int
		getOrCreate  bool
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var metadata map[string]any
			if metadataJSON != "" {
				if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
					return fmt.Errorf("parsing --metadata: %w", err)
				}
			}

			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			coll, err := d.client.Collections().Create(cmd.Context(), chromalens.CreateCollectionParams{
				Name:        args[0],
				Metadata:    metadata,
				Dimension:   dimension,
				GetOrCreate: getOrCreate,
			})
			if err != nil {
				return fmt.Errorf("creating collection: %w", err)
			}
			if globalFlags.jsonOut {
				return printJSON(coll)
			}
			fmt.Printf("collection %q created (id %s)\n", coll.Name, coll.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&metadataJSON, "metadata", "", "Collection metadata as a JSON object")
	cmd.Flags().IntVar(&dimension, "dimension", 0, "Embedding dimensionality hint")
	cmd.Flags().BoolVar(&getOrCreate, "get-or-create", false, "Return the existing collection instead of failing")
	return cmd
}

func newCollectionListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collections in the current database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			colls, err := d.client.Collections().List(cmd.Context(), limit, offset)
			if err != nil {
				return fmt.Errorf("listing collections: %w", err)
			}
			if globalFlags.jsonOut {
				return printJSON(colls)
			}
			rows := make([][]string, len(colls))
			for i, coll := range colls {
				rows[i] = []string{coll.ID, coll.Name, formatMetadata(coll.Metadata)}
			}
			return printTable([]string{"ID", "NAME", "METADATA"}, rows)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of results to skip")
	return cmd
}

func newCollectionGetCmd() *cobra.Command {
	var byID bool

	cmd := &cobra.Command{
		Use:   "get <name|id>",
		Short: "Show a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			var coll chromalens.Collection
			if byID {
				coll, err = d.client.Collections().GetByID(cmd.Context(), args[0])
			} else {
				coll, err = d.client.Collections().Get(cmd.Context(), args[0])
			}
			if err != nil {
				return fmt.Errorf("getting collection: %w", err)
			}
			if globalFlags.jsonOut {
				return printJSON(coll)
			}
			n, err := d.client.Items(coll.ID).Count(cmd.Context())
			if err != nil {
				return fmt.Errorf("counting items: %w", err)
			}
			return printTable(
				[]string{"ID", "NAME", "ITEMS", "METADATA"},
				[][]string{{coll.ID, coll.Name, strconv.Itoa(n), formatMetadata(coll.Metadata)}},
			)
		},
	}

	cmd.Flags().BoolVar(&byID, "id", false, "Look the collection up by id instead of name")
	return cmd
}

func newCollectionCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count collections in the current database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			n, err := d.client.Collections().Count(cmd.Context())
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

func newCollectionUpdateCmd() *cobra.Command {
	var metadataJSON string

	cmd := &cobra.Command{
		Use:   "update <id> [new-name]",
		Short: "Rename a collection or replace its metadata",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var newName string
			if len(args) > 1 {
				newName = args[1]
			}
			var metadata map[string]any
			if metadataJSON != "" {
				if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
					return fmt.Errorf("parsing --metadata: %w", err)
				}
			}

			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			err = d.client.Collections().Update(cmd.Context(), args[0], chromalens.UpdateCollectionParams{
				NewName:     newName,
				NewMetadata: metadata,
			})
			if err != nil {
				return fmt.Errorf("updating collection: %w", err)
			}
			fmt.Println("collection updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&metadataJSON, "metadata", "", "Replacement metadata as a JSON object")
	return cmd
}

func newCollectionDeleteCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a collection and all its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("deleting collection %q destroys all of its items; re-run with --confirm", args[0])
			}
			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.client.Collections().Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("deleting collection: %w", err)
			}
			fmt.Printf("collection %q deleted\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "Actually perform the deletion")
	return cmd
}
