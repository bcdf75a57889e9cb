// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/weiuou/pdf-ocr/internal/archive"
	"github.com/weiuou/pdf-ocr/internal/document"
	"github.com/weiuou/pdf-ocr/internal/ocr"
	"github.com/weiuou/pdf-ocr/internal/output"
	"github.com/weiuou/pdf-ocr/internal/pages"
	"github.com/weiuou/pdf-ocr/internal/pipeline"
	"github.com/weiuou/pdf-ocr/internal/raster"
	"github.com/weiuou/pdf-ocr/internal/sysexec"
	"github.com/weiuou/pdf-ocr/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process <document.pdf>",
	Short: "Rasterize a scanned PDF and recognize its text",
	Long: `Process runs the OCR pipeline over a PDF document: the selected pages
are rasterized, recognized concurrently, and reassembled in page order
into text or docx artifacts plus an optional statistics report.

Pages that fail rasterization or recognition are reported and skipped;
the run continues and exits with code 5 if any page failed. A broken
engine (missing binary, unusable language data) aborts the run without
writing artifacts.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

// partialFailure marks a run where some pages failed but artifacts were
// still written. It carries its own exit code so scripts can tell partial
// output from a clean run.
type partialFailure struct {
	failed, total int
}

func (e *partialFailure) Error() string {
	return fmt.Sprintf("%d of %d page(s) failed", e.failed, e.total)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg := effectiveConfig(cmd)
	pdfPath := args[0]
	ctx := cmd.Context()
	start := time.Now()

	info, err := document.Inspect(pdfPath)
	if err != nil {
		return err
	}

	pagesExpr, _ := cmd.Flags().GetString("pages")
	selection, err := pages.Resolve(pagesExpr, info.Pages)
	if err != nil {
		return err
	}

	if info.TextLayerCovers(selection) {
		fmt.Println("note: every selected page already has an embedded text layer; try extracting it directly before OCR")
	}

	runner := sysexec.New()

	engine, err := buildEngine(runner, cfg.OCR)
	if err != nil {
		return err
	}

	langs := ocr.ParseLanguages(cfg.OCR.Language)
	if len(langs) == 0 {
		return fmt.Errorf("empty language spec %q", cfg.OCR.Language)
	}
	if err := ocr.ValidateLanguages(ctx, engine, langs); err != nil {
		return err
	}

	renderer, err := raster.Detect(runner, cfg.Raster.Tool)
	if err != nil {
		return err
	}

	scratch, err := os.MkdirTemp(cfg.Processing.TempDir, "pdf-ocr-*")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer func() {
		if cfg.Processing.KeepTemp {
			fmt.Printf("scratch directory retained: %s\n", scratch)
			return
		}
		os.RemoveAll(scratch)
	}()

	fmt.Printf("Processing %s: %d page(s), language %s, engine %s, %d worker(s)\n",
		filepath.Base(pdfPath), len(selection), cfg.OCR.Language, engine.Name(), cfg.Processing.MaxWorkers)

	doc, err := pipeline.Run(ctx, pipeline.Options{
		Document:    pdfPath,
		Pages:       selection,
		DPI:         cfg.Raster.DPI,
		Languages:   langs,
		Engine:      engine,
		Renderer:    renderer,
		Enhance:     cfg.Raster.Enhance,
		ScratchDir:  scratch,
		KeepImages:  cfg.Processing.KeepTemp || cfg.Output.SaveImages,
		MaxWorkers:  cfg.Processing.MaxWorkers,
		PageTimeout: cfg.Processing.PageTimeout,
		Progress:    os.Stdout,
	})
	if err != nil {
		// Aborted. No artifacts are written; the pages that completed
		// before the abort appear in the progress lines above.
		fmt.Printf("\naborted after %d of %d page(s)\n", len(doc.Pages), len(selection))
		return err
	}

	report := pipeline.Aggregate(doc.Pages, cfg.ConfidenceThreshold, time.Since(start))

	written, err := output.Write(doc, report, output.Options{
		Directory:          cfg.Output.Directory,
		Formats:            cfg.Output.Formats,
		PreserveFormatting: cfg.Output.PreserveFormatting,
		Threshold:          cfg.ConfidenceThreshold,
		Stats:              cfg.Output.Stats,
	})
	if err != nil {
		return err
	}

	if cfg.Output.SaveImages {
		if err := saveImages(scratch, cfg.Output.ImagesDir, output.Stem(pdfPath)); err != nil {
			fmt.Fprintf(os.Stderr, "warning: saving page images: %v\n", err)
		}
	}

	if cfg.Archive.Enabled {
		if err := indexRun(ctx, cfg.Archive, doc, report); err != nil {
			fmt.Fprintf(os.Stderr, "warning: archive indexing: %v\n", err)
		}
	}

	printSummary(report, written)

	if report.HasFailures() {
		return &partialFailure{failed: report.Failed, total: report.TotalPages}
	}
	return nil
}

func buildEngine(runner sysexec.Runner, cfg types.OCRConfig) (ocr.Engine, error) {
	switch cfg.Engine {
	case types.EngineTesseract, "":
		return ocr.NewTesseract(runner, cfg)
	case types.EngineGosseract:
		return ocr.NewGosseract(cfg), nil
	default:
		return nil, fmt.Errorf("unknown engine %q: use tesseract or gosseract", cfg.Engine)
	}
}

// saveImages copies the page images the pipeline left in the scratch
// directory into destDir, prefixed with the document stem.
func saveImages(scratchDir, destDir, stem string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	entries, err := os.ReadDir(scratchDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(scratchDir, e.Name()))
		if err != nil {
			return err
		}
		dest := filepath.Join(destDir, stem+"_"+e.Name())
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func indexRun(ctx context.Context, cfg types.ArchiveConfig, doc types.Document, report types.Report) error {
	store, err := archive.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Index(ctx, doc, report); err != nil {
		return err
	}
	fmt.Printf("indexed %s into %s\n", output.Stem(doc.Source), cfg.Dir)
	return nil
}

func printSummary(report types.Report, written []string) {
	fmt.Printf("\nDone: %d/%d page(s) succeeded", report.Succeeded, report.TotalPages)
	if report.Failed > 0 {
		fmt.Printf(", %d failed", report.Failed)
	}
	if !report.NoSuccess {
		fmt.Printf(", average confidence %.1f%%", report.AverageConfidence)
	}
	fmt.Printf(" in %.1fs\n", report.Elapsed.Seconds())

	if len(report.LowConfidencePages) > 0 {
		fmt.Printf("low confidence (threshold %d%%): pages %s\n", report.Threshold, joinPages(report.LowConfidencePages))
	}
	for _, path := range written {
		fmt.Printf("wrote %s\n", path)
	}
}

func joinPages(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ", ")
}

func init() {
	processCmd.Flags().String("pages", "", `pages to process, e.g. "1-5,8,10-12" (default: all)`)
	processCmd.Flags().Int("dpi", 300, "rasterization resolution")
	processCmd.Flags().StringP("language", "l", "chi_sim+eng", `recognition languages, "+"-joined`)
	processCmd.Flags().Int("confidence", 60, "low-confidence threshold (0-100)")
	processCmd.Flags().Int("max-workers", 4, "concurrent page workers")
	processCmd.Flags().StringSliceP("output-format", "f", []string{"txt"}, "artifact formats: txt, docx")
	processCmd.Flags().StringP("output-dir", "o", "output", "artifact directory")
	processCmd.Flags().Bool("stats", false, "also write the processing report artifact")
	processCmd.Flags().Bool("keep-temp", false, "retain the per-run scratch directory")
	processCmd.Flags().Duration("page-timeout", 0, "per-page time limit (0 = unbounded)")
	processCmd.Flags().String("engine", "tesseract", "recognition engine: tesseract or gosseract")
	processCmd.Flags().Bool("save-images", false, "copy rendered page images into the images directory")
	processCmd.Flags().String("images-dir", "output/images", "destination for --save-images")
	processCmd.Flags().Bool("no-format", false, "concatenate plain text without structure detection")
	processCmd.Flags().Bool("archive", false, "index the completed run into the archive")

	rootCmd.AddCommand(processCmd)
}
