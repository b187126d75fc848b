package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	chromalens "github.com/chromalens/chromalens-go"
)

func newQueryCmd() *cobra.Command {
	var (
		text          string
		embeddingJSON string
		nResults      int
		whereJSON     string
	)

	cmd := &cobra.Command{
		Use:   "query <collection-id>",
		Short: "Nearest-neighbour search over a collection",
		Long: "Searches by --text (needs a configured embedding provider) or by a raw\n" +
			"--embedding JSON array.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (text == "") == (embeddingJSON == "") {
				return fmt.Errorf("exactly one of --text or --embedding is required")
			}
			where, err := parseWhere(whereJSON)
			if err != nil {
				return err
			}

			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			items := d.client.Items(args[0])
			include := []chromalens.Include{chromalens.IncludeDocuments, chromalens.IncludeMetadatas, chromalens.IncludeDistances}

			var res chromalens.QueryResult
			if text != "" {
				res, err = items.QueryText(cmd.Context(), chromalens.TextQueryParams{
					Texts:    []string{text},
					NResults: nResults,
					Where:    where,
					Include:  include,
				})
			} else {
				var embedding []float32
				if err := json.Unmarshal([]byte(embeddingJSON), &embedding); err != nil {
					return fmt.Errorf("parsing --embedding: %w", err)
				}
				res, err = items.Query(cmd.Context(), chromalens.QueryParams{
					Embeddings: [][]float32{embedding},
					NResults:   nResults,
					Where:      where,
					Include:    include,
				})
			}
			if err != nil {
				return fmt.Errorf("querying: %w", err)
			}
			if globalFlags.jsonOut {
				return printJSON(res)
			}
			if len(res.IDs) == 0 || len(res.IDs[0]) == 0 {
				fmt.Println("no matches")
				return nil
			}
			rows := make([][]string, len(res.IDs[0]))
			for i, id := range res.IDs[0] {
				dist, doc := "-", "-"
				if len(res.Distances) > 0 && i < len(res.Distances[0]) {
					dist = strconv.FormatFloat(res.Distances[0][i], 'f', 4, 64)
				}
				if len(res.Documents) > 0 && i < len(res.Documents[0]) && res.Documents[0][i] != "" {
					doc = res.Documents[0][i]
				}
				rows[i] = []string{id, dist, doc}
			}
			return printTable([]string{"ID", "DISTANCE", "DOCUMENT"}, rows)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Query text (embedded via the configured provider)")
	cmd.Flags().StringVar(&embeddingJSON, "embedding", "", "Raw query embedding as a JSON array")
	cmd.Flags().IntVarP(&nResults, "n-results", "n", 10, "Number of neighbours to return")
	cmd.Flags().StringVar(&whereJSON, "where", "", "Metadata filter as a JSON object")
	return cmd
}
