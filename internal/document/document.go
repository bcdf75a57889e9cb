// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document inspects PDF files ahead of OCR: page count, Info
// dictionary metadata, and whether pages already carry an embedded text
// layer. Born-digital documents usually have a text layer and do not need
// OCR at all, which is worth telling the user before burning CPU on them.
package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Info describes a PDF file without rasterizing it.
type Info struct {
	// Path is the inspected file.
	Path string `json:"path" yaml:"path"`

	// SizeBytes is the file size.
	SizeBytes int64 `json:"size_bytes" yaml:"size_bytes"`

	// Pages is the page count.
	Pages int `json:"pages" yaml:"pages"`

	// Title and Author come from the Info dictionary when present.
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// TextPages counts pages with extractable embedded text.
	TextPages int `json:"text_pages" yaml:"text_pages"`

	// TextLayer lists the pages with extractable embedded text, ascending.
	TextLayer []int `json:"text_layer,omitempty" yaml:"text_layer,omitempty"`
}

// HasTextLayer reports whether every page already carries embedded text.
func (i Info) HasTextLayer() bool {
	return i.Pages > 0 && i.TextPages == i.Pages
}

// TextLayerCovers reports whether every page in the selection already
// carries embedded text.
func (i Info) TextLayerCovers(selection []int) bool {
	if len(selection) == 0 {
		return false
	}
	have := make(map[int]bool, len(i.TextLayer))
	for _, p := range i.TextLayer {
		have[p] = true
	}
	for _, p := range selection {
		if !have[p] {
			return false
		}
	}
	return true
}

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (n int, err error) {
	defer recoverMalformed(path, &err)

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	n = r.NumPage()
	if n < 1 {
		return 0, fmt.Errorf("%s: document has no pages", path)
	}
	return n, nil
}

// Inspect opens the PDF at path and collects page count, Info dictionary
// metadata, and a per-page embedded-text probe.
func Inspect(path string) (info Info, err error) {
	defer recoverMalformed(path, &err)

	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("stat %s: %w", path, err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info = Info{
		Path:      path,
		SizeBytes: fi.Size(),
		Pages:     r.NumPage(),
	}
	if info.Pages < 1 {
		return Info{}, fmt.Errorf("%s: document has no pages", path)
	}

	info.Title = infoText(r, "Title")
	info.Author = infoText(r, "Author")

	for i := 1; i <= info.Pages; i++ {
		if hasText(r.Page(i)) {
			info.TextLayer = append(info.TextLayer, i)
		}
	}
	info.TextPages = len(info.TextLayer)
	return info, nil
}

// recoverMalformed converts parser panics on malformed documents into
// errors. The underlying reader panics rather than erroring on some broken
// cross-reference tables.
func recoverMalformed(path string, errp *error) {
	if r := recover(); r != nil {
		*errp = fmt.Errorf("%s: malformed document: %v", path, r)
	}
}

func infoText(r *pdf.Reader, key string) (s string) {
	defer func() {
		_ = recover()
	}()

	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	v := info.Key(key)
	if v.IsNull() {
		return ""
	}
	return strings.TrimSpace(v.Text())
}

func hasText(p pdf.Page) (has bool) {
	defer func() {
		if recover() != nil {
			has = false
		}
	}()

	if p.V.IsNull() {
		return false
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return false
	}
	return strings.TrimSpace(text) != ""
}
