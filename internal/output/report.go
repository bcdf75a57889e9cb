// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/weiuou/pdf-ocr/pkg/types"
)

func writeReport(doc types.Document, report types.Report, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "OCR processing report\n%s\n", strings.Repeat("=", 50))
	fmt.Fprintf(&b, "Source: %s\n", doc.Source)
	fmt.Fprintf(&b, "Completed: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Elapsed: %.2f seconds\n\n", report.Elapsed.Seconds())

	fmt.Fprintf(&b, "Document statistics:\n")
	fmt.Fprintf(&b, "- Total pages: %d\n", report.TotalPages)
	fmt.Fprintf(&b, "- Succeeded: %d\n", report.Succeeded)
	fmt.Fprintf(&b, "- Failed: %d\n", report.Failed)
	fmt.Fprintf(&b, "- Characters: %d\n", report.Characters)
	fmt.Fprintf(&b, "- Words: %d\n", report.Words)
	fmt.Fprintf(&b, "- Average confidence: %.2f%%\n\n", report.AverageConfidence)

	fmt.Fprintf(&b, "Quality:\n")
	fmt.Fprintf(&b, "- Confidence threshold: %d%%\n", report.Threshold)
	fmt.Fprintf(&b, "- Low confidence pages: %d\n", len(report.LowConfidencePages))
	low := "none"
	if len(report.LowConfidencePages) > 0 {
		low = joinInts(report.LowConfidencePages)
	}
	fmt.Fprintf(&b, "- Pages below threshold: %s\n\n", low)

	fmt.Fprintf(&b, "Settings:\n")
	fmt.Fprintf(&b, "- Language: %s\n", doc.Language)
	fmt.Fprintf(&b, "- DPI: %d\n", doc.DPI)
	fmt.Fprintf(&b, "- Engine: %s\n\n", doc.Engine)

	fmt.Fprintf(&b, "Page details:\n%s\n", strings.Repeat("-", 30))
	for _, p := range doc.Pages {
		b.WriteString(pageDetail(p, report.Threshold))
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func pageDetail(p types.PageResult, threshold int) string {
	if !p.Succeeded() {
		return fmt.Sprintf("Page %d: failed (%s: %s)\n", p.Page, p.Failure, p.Detail)
	}

	status := "ok"
	if p.Confidence < float64(threshold) {
		status = "low confidence"
	}
	chars := len([]rune(p.Text))
	words := len(strings.Fields(p.Text))
	return fmt.Sprintf("Page %d: %d characters, %d words, confidence %.1f%% (%s)\n",
		p.Page, chars, words, p.Confidence, status)
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
