package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	chromalens "github.com/chromalens/chromalens-go"
)

func newItemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Read and write collection items",
	}
	cmd.AddCommand(
		newItemsAddCmd(),
		newItemsUpdateCmd(),
		newItemsGetCmd(),
		newItemsDeleteCmd(),
		newItemsCountCmd(),
	)
	return cmd
}

// itemRecord is one line of the JSONL format the add command accepts.
type itemRecord struct {
	ID        string         `json:"id"`
	Embedding []float32      `json:"embedding"`
	Metadata  map[string]any `json:"metadata"`
	Document  string         `json:"document"`
	URI       string         `json:"uri"`
}

func newItemsAddCmd() *cobra.Command {
	var (
		file   string
		upsert bool
	)

	cmd := &cobra.Command{
		Use:   "add <collection-id>",
		Short: "Add items from a JSONL file (one item object per line)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readItemRecords(file)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("no items in %s", file)
			}

			batch := chromalens.Batch{}
			hasDocs, hasURIs := false, false
			for _, rec := range records {
				id := rec.ID
				if id == "" {
					id = uuid.NewString()
				}
				batch.IDs = append(batch.IDs, id)
				batch.Embeddings = append(batch.Embeddings, rec.Embedding)
				batch.Metadatas = append(batch.Metadatas, rec.Metadata)
				batch.Documents = append(batch.Documents, rec.Document)
				batch.URIs = append(batch.URIs, rec.URI)
				hasDocs = hasDocs || rec.Document != ""
				hasURIs = hasURIs || rec.URI != ""
			}
			if !hasDocs {
				batch.Documents = nil
			}
			if !hasURIs {
				batch.URIs = nil
			}

			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			items := d.client.Items(args[0])
			if upsert {
				err = items.Upsert(cmd.Context(), batch)
			} else {
				err = items.Add(cmd.Context(), batch)
			}
			if err != nil {
				return fmt.Errorf("writing items: %w", err)
			}
			fmt.Printf("%d items written\n", len(batch.IDs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSONL file with items (required)")
	cmd.Flags().BoolVar(&upsert, "upsert", false, "Replace existing items instead of failing on duplicates")
	cmd.MarkFlagRequired("file") //nolint:errcheck // flag exists
	return cmd
}

func newItemsUpdateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <collection-id>",
		Short: "Update existing items from a JSONL file (every line needs an id)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readItemRecords(file)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("no items in %s", file)
			}

			batch := chromalens.Batch{}
			hasEmb, hasMeta, hasDocs, hasURIs := false, false, false, false
			for i, rec := range records {
				if rec.ID == "" {
					return fmt.Errorf("%s line item %d: update requires an id", file, i+1)
				}
				batch.IDs = append(batch.IDs, rec.ID)
				batch.Embeddings = append(batch.Embeddings, rec.Embedding)
				batch.Metadatas = append(batch.Metadatas, rec.Metadata)
				batch.Documents = append(batch.Documents, rec.Document)
				batch.URIs = append(batch.URIs, rec.URI)
				hasEmb = hasEmb || rec.Embedding != nil
				hasMeta = hasMeta || rec.Metadata != nil
				hasDocs = hasDocs || rec.Document != ""
				hasURIs = hasURIs || rec.URI != ""
			}
			if !hasEmb {
				batch.Embeddings = nil
			}
			if !hasMeta {
				batch.Metadatas = nil
			}
			if !hasDocs {
				batch.Documents = nil
			}
			if !hasURIs {
				batch.URIs = nil
			}

			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.client.Items(args[0]).Update(cmd.Context(), batch); err != nil {
				return fmt.Errorf("updating items: %w", err)
			}
			fmt.Printf("%d items updated\n", len(batch.IDs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSONL file with item updates (required)")
	cmd.MarkFlagRequired("file") //nolint:errcheck // flag exists
	return cmd
}

func readItemRecords(path string) ([]itemRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var records []itemRecord
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var rec itemRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func newItemsGetCmd() *cobra.Command {
	var (
		ids       []string
		whereJSON string
		limit     int
		offset    int
	)

	cmd := &cobra.Command{
		Use:   "get <collection-id>",
		Short: "Fetch items by ids or filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			where, err := parseWhere(whereJSON)
			if err != nil {
				return err
			}

			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			res, err := d.client.Items(args[0]).Get(cmd.Context(), chromalens.GetParams{
				IDs:     ids,
				Where:   where,
				Limit:   limit,
				Offset:  offset,
				Include: []chromalens.Include{chromalens.IncludeDocuments, chromalens.IncludeMetadatas},
			})
			if err != nil {
				return fmt.Errorf("getting items: %w", err)
			}
			if globalFlags.jsonOut {
				return printJSON(res)
			}
			rows := make([][]string, len(res.IDs))
			for i, id := range res.IDs {
				doc, meta := "-", "-"
				if i < len(res.Documents) && res.Documents[i] != "" {
					doc = res.Documents[i]
				}
				if i < len(res.Metadatas) {
					meta = formatMetadata(res.Metadatas[i])
				}
				rows[i] = []string{id, doc, meta}
			}
			return printTable([]string{"ID", "DOCUMENT", "METADATA"}, rows)
		},
	}

	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Item ids to fetch")
	cmd.Flags().StringVar(&whereJSON, "where", "", "Metadata filter as a JSON object")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of results to skip")
	return cmd
}

func newItemsDeleteCmd() *cobra.Command {
	var (
		ids       []string
		whereJSON string
	)

	cmd := &cobra.Command{
		Use:   "delete <collection-id>",
		Short: "Delete items by ids or filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			where, err := parseWhere(whereJSON)
			if err != nil {
				return err
			}

			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			err = d.client.Items(args[0]).Delete(cmd.Context(), chromalens.DeleteParams{
				IDs:   ids,
				Where: where,
			})
			if err != nil {
				return fmt.Errorf("deleting items: %w", err)
			}
			fmt.Println("items deleted")
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Item ids to delete")
	cmd.Flags().StringVar(&whereJSON, "where", "", "Metadata filter as a JSON object")
	return cmd
}

func newItemsCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count <collection-id>",
		Short: "Count items in a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			n, err := d.client.Items(args[0]).Count(cmd.Context())
			if err != nil {
				return fmt.Errorf("counting items: %w", err)
			}
			if globalFlags.jsonOut {
				return printJSON(map[string]int{"count": n})
			}
			fmt.Println(n)
			return nil
		},
	}
}

func parseWhere(whereJSON string) (chromalens.Where, error) {
	if whereJSON == "" {
		return nil, nil
	}
	var where chromalens.Where
	if err := json.Unmarshal([]byte(whereJSON), &where); err != nil {
		return nil, fmt.Errorf("parsing --where: %w", err)
	}
	return where, nil
}
