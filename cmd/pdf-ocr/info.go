// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weiuou/pdf-ocr/internal/document"
)

var infoCmd = &cobra.Command{
	Use:   "info <document.pdf>",
	Short: "Print document facts without running OCR",
	Long: `Info reports page count, file size, Title and Author from the PDF Info
dictionary, and how many pages already carry an embedded text layer.
A document whose pages all have a text layer is born-digital and can be
extracted directly instead of OCRed.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	info, err := document.Inspect(args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Printf("%-12s%s\n", "File:", info.Path)
	fmt.Printf("%-12s%s (%d bytes)\n", "Size:", sizeString(info.SizeBytes), info.SizeBytes)
	fmt.Printf("%-12s%d\n", "Pages:", info.Pages)
	if info.Title != "" {
		fmt.Printf("%-12s%s\n", "Title:", info.Title)
	}
	if info.Author != "" {
		fmt.Printf("%-12s%s\n", "Author:", info.Author)
	}
	fmt.Printf("%-12s%d of %d page(s)\n", "Text layer:", info.TextPages, info.Pages)
	if info.HasTextLayer() {
		fmt.Println("\nEvery page has an embedded text layer; the document appears born-digital.")
	}
	return nil
}

func sizeString(n int64) string {
	const (
		kib = 1 << 10
		mib = 1 << 20
	)
	switch {
	case n >= mib:
		return fmt.Sprintf("%.1f MiB", float64(n)/mib)
	case n >= kib:
		return fmt.Sprintf("%.1f KiB", float64(n)/kib)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func init() {
	infoCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(infoCmd)
}
