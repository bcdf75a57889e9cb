// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/weiuou/pdf-ocr/pkg/types"
)

func writeText(doc types.Document, opts Options, path string) error {
	var b strings.Builder
	b.WriteString(metadataHeader(doc))
	b.WriteString("\n\n" + strings.Repeat("-", 50) + "\n\n")
	b.WriteString(assembleText(doc, opts))

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing text output: %w", err)
	}
	return nil
}

func metadataHeader(doc types.Document) string {
	return fmt.Sprintf(`PDF OCR extraction
Source: %s
Generated: %s
Language: %s
DPI: %d
Engine: %s
Pages: %d`,
		doc.Source,
		time.Now().Format("2006-01-02 15:04:05"),
		doc.Language,
		doc.DPI,
		doc.Engine,
		len(doc.Pages),
	)
}

// assembleText renders the page bodies with separators and annotations.
// Separators appear only for multi-page output.
func assembleText(doc types.Document, opts Options) string {
	var parts []string
	multi := len(doc.Pages) > 1

	for _, p := range doc.Pages {
		if multi {
			parts = append(parts, fmt.Sprintf("\n--- Page %d ---\n", p.Page))
		}
		switch {
		case !p.Succeeded():
			parts = append(parts, fmt.Sprintf("[page failed: %s]\n", p.Detail))
		case strings.TrimSpace(p.Text) == "":
			parts = append(parts, "[no text recognized on this page]\n")
		default:
			parts = append(parts, formatText(p.Text, opts.PreserveFormatting))
			if p.Confidence < float64(opts.Threshold) {
				parts = append(parts, fmt.Sprintf("\n[low confidence: %.1f%%]\n", p.Confidence))
			}
		}
	}

	return strings.Join(parts, "\n")
}

var whitespace = regexp.MustCompile(`\s+`)

// formatText normalizes one page of recognized text. With formatting
// preserved, lines regroup into paragraphs and detected titles stand
// alone; otherwise whitespace collapses to single spaces.
func formatText(text string, preserve bool) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if !preserve {
		return whitespace.ReplaceAllString(text, " ")
	}

	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isTitleLine(line) {
			flush()
			paragraphs = append(paragraphs, line)
		} else {
			current = append(current, line)
		}
	}
	flush()

	return strings.Join(paragraphs, "\n\n")
}

var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^第[一二三四五六七八九十\d]+章`),
	regexp.MustCompile(`^第[一二三四五六七八九十\d]+节`),
	regexp.MustCompile(`^\d+\.`),
	regexp.MustCompile(`^[一二三四五六七八九十]、`),
	regexp.MustCompile(`^\([一二三四五六七八九十\d]+\)`),
}

// isTitleLine applies heuristic heading detection: Chinese chapter and
// section markers, numbered items, and short all-caps lines.
func isTitleLine(line string) bool {
	for _, re := range titlePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return utf8.RuneCountInString(line) < 50 && isUpper(line)
}

// isUpper reports whether s contains cased letters and none lowercase.
func isUpper(s string) bool {
	return s != strings.ToLower(s) && s == strings.ToUpper(s)
}
