// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weiuou/pdf-ocr/internal/archive"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over archived OCR runs",
	Long: `Search queries the archive of completed runs (see process --archive)
with FTS5 full-text search. Results carry the document stem, page number,
confidence, and a snippet with the match bracketed.

Without a query, --document browses one document's pages in order.
--dump prints a whole archived document as YAML.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := effectiveConfig(cmd)

	store, err := archive.Open(cfg.Archive)
	if err != nil {
		return err
	}
	defer store.Close()

	if dumpStem, _ := cmd.Flags().GetString("dump"); dumpStem != "" {
		doc, err := store.Dump(cmd.Context(), dumpStem)
		if err != nil {
			return err
		}
		return doc.WriteYAML(os.Stdout)
	}

	query := strings.Join(args, " ")
	docFilter, _ := cmd.Flags().GetString("document")
	if query == "" && docFilter == "" {
		return fmt.Errorf("query or filter required: provide search terms, --document, or --dump")
	}

	minConf, _ := cmd.Flags().GetFloat64("min-confidence")
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.Archive.MaxResults
	}

	results, err := store.Search(cmd.Context(), archive.SearchOptions{
		Query:         query,
		Document:      docFilter,
		MinConfidence: minConf,
		MaxResults:    limit,
	})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []archive.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-24s  %-5s  %-6s  %s\n", "Document", "Page", "Conf", "Snippet")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, r := range results {
		docName := r.Document
		if len(docName) > 24 {
			docName = docName[:21] + "..."
		}
		snippet := strings.Join(strings.Fields(r.Snippet), " ")
		fmt.Fprintf(os.Stdout, "%-24s  %-5d  %-6.1f  %s\n", docName, r.Page, r.Confidence, snippet)
	}

	fmt.Fprintf(os.Stdout, "\n%d result(s)\n", len(results))
	return nil
}

func init() {
	searchCmd.Flags().String("document", "", "filter by document stem")
	searchCmd.Flags().Float64("min-confidence", 0, "only pages at or above this confidence")
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = archive default)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("dump", "", "print an archived document as YAML instead of searching")

	rootCmd.AddCommand(searchCmd)
}
