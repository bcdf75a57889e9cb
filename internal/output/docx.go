// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/weiuou/pdf-ocr/pkg/types"
)

// The docx writer emits a minimal WordprocessingML package: content
// types, the package relationship, and the document part. Titles come
// out bold, annotations italic, and pages separate on page breaks.

const wordprocessingNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

const docxContentTypes = xml.Header + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>
`

const docxRels = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>
`

// Element names carry the literal "w:" prefix; encoding/xml writes them
// verbatim under the xmlns:w declaration on the root.
type docxDocument struct {
	XMLName xml.Name `xml:"w:document"`
	NS      string   `xml:"xmlns:w,attr"`
	Body    docxBody `xml:"w:body"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"w:p"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"w:r"`
}

type docxRun struct {
	Props *docxRunProps `xml:"w:rPr,omitempty"`
	Break *docxBreak    `xml:"w:br,omitempty"`
	Text  *docxText     `xml:"w:t,omitempty"`
}

type docxRunProps struct {
	Bold   *struct{} `xml:"w:b,omitempty"`
	Italic *struct{} `xml:"w:i,omitempty"`
}

type docxBreak struct {
	Type string `xml:"w:type,attr,omitempty"`
}

type docxText struct {
	Space string `xml:"xml:space,attr"`
	Value string `xml:",chardata"`
}

func plainParagraph(text string) docxParagraph {
	return docxParagraph{Runs: []docxRun{{Text: &docxText{Space: "preserve", Value: text}}}}
}

func boldParagraph(text string) docxParagraph {
	return docxParagraph{Runs: []docxRun{{
		Props: &docxRunProps{Bold: &struct{}{}},
		Text:  &docxText{Space: "preserve", Value: text},
	}}}
}

func italicParagraph(text string) docxParagraph {
	return docxParagraph{Runs: []docxRun{{
		Props: &docxRunProps{Italic: &struct{}{}},
		Text:  &docxText{Space: "preserve", Value: text},
	}}}
}

func pageBreakParagraph() docxParagraph {
	return docxParagraph{Runs: []docxRun{{Break: &docxBreak{Type: "page"}}}}
}

func writeDocx(doc types.Document, opts Options, path string) error {
	var body docxBody
	add := func(p docxParagraph) { body.Paragraphs = append(body.Paragraphs, p) }

	for _, line := range strings.Split(metadataHeader(doc), "\n") {
		add(plainParagraph(line))
	}
	add(plainParagraph(strings.Repeat("-", 50)))

	multi := len(doc.Pages) > 1
	for i, p := range doc.Pages {
		if i > 0 {
			add(pageBreakParagraph())
		}
		if multi {
			add(boldParagraph(fmt.Sprintf("--- Page %d ---", p.Page)))
		}
		switch {
		case !p.Succeeded():
			add(italicParagraph(fmt.Sprintf("[page failed: %s]", p.Detail)))
		case strings.TrimSpace(p.Text) == "":
			add(italicParagraph("[no text recognized on this page]"))
		default:
			for _, para := range strings.Split(formatText(p.Text, opts.PreserveFormatting), "\n\n") {
				if para == "" {
					continue
				}
				if isTitleLine(para) {
					add(boldParagraph(para))
				} else {
					add(plainParagraph(para))
				}
			}
			if p.Confidence < float64(opts.Threshold) {
				add(italicParagraph(fmt.Sprintf("[low confidence: %.1f%%]", p.Confidence)))
			}
		}
	}

	return writeDocxArchive(path, body)
}

func writeDocxArchive(path string, body docxBody) error {
	docXML, err := xml.Marshal(docxDocument{NS: wordprocessingNS, Body: body})
	if err != nil {
		return fmt.Errorf("encoding document body: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating docx: %w", err)
	}

	zw := zip.NewWriter(f)
	writePart := func(name string, content []byte) error {
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		_, err = w.Write(content)
		return err
	}

	for _, part := range []struct {
		name    string
		content []byte
	}{
		{"[Content_Types].xml", []byte(docxContentTypes)},
		{"_rels/.rels", []byte(docxRels)},
		{"word/document.xml", append([]byte(xml.Header), docXML...)},
	} {
		if err := writePart(part.name, part.content); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalizing docx: %w", err)
	}
	return f.Close()
}
