// Package docx normalises WordprocessingML documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/corvid-labs/grounder/internal/core/domain"
	"github.com/corvid-labs/grounder/internal/core/ports/driven"
	"github.com/corvid-labs/grounder/internal/normalisers/table"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".docx"}
}

// FileType returns the enumerated source format.
func (n *Normaliser) FileType() domain.FileType {
	return domain.FileTypeWordDocument
}

// Normalise extracts paragraph and table text from word/document.xml.
// Paragraphs are separated by blank lines so the chunker can split on
// paragraph boundaries; embedded tables are rendered through the same
// markdown helper as spreadsheets.
func (n *Normaliser) Normalise(_ context.Context, _ string, data []byte) (*domain.NormalizedContent, error) {
	if len(data) == 0 {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}

	text, err := extractDocumentText(reader)
	if err != nil {
		return nil, err
	}

	return &domain.NormalizedContent{
		Kind: domain.KindText,
		Text: text,
	}, nil
}

// extractDocumentText extracts text from word/document.xml.
func extractDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
		}

		return parseDocumentXML(content)
	}
	return "", fmt.Errorf("%w: missing word/document.xml", domain.ErrCorruptFile)
}

// documentXML mirrors the parts of word/document.xml we consume.
// Paragraphs and tables are decoded in document order.
type documentXML struct {
	Body struct {
		Blocks []block `xml:",any"`
	} `xml:"body"`
}

type block struct {
	XMLName    xml.Name
	Runs       []run      `xml:"r"`
	TableRows  []tableRow `xml:"tr"`
	InnerParas []block    `xml:"p"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type tableRow struct {
	Cells []tableCell `xml:"tc"`
}

type tableCell struct {
	Paragraphs []block `xml:"p"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML walks body blocks in order, emitting paragraphs
// separated by blank lines and tables as markdown.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}

	var sections []string
	for _, b := range doc.Body.Blocks {
		switch b.XMLName.Local {
		case "p":
			if text := paragraphText(b); text != "" {
				sections = append(sections, text)
			}
		case "tbl":
			rows := make([][]string, 0, len(b.TableRows))
			for _, tr := range b.TableRows {
				cells := make([]string, 0, len(tr.Cells))
				for _, tc := range tr.Cells {
					var parts []string
					for _, p := range tc.Paragraphs {
						if text := paragraphText(p); text != "" {
							parts = append(parts, text)
						}
					}
					cells = append(cells, strings.Join(parts, " "))
				}
				rows = append(rows, cells)
			}
			if rendered := table.Build(rows); rendered.Text != "" {
				sections = append(sections, rendered.Text)
			}
		}
	}

	return strings.TrimSpace(strings.Join(sections, "\n\n")), nil
}

func paragraphText(b block) string {
	var result strings.Builder
	for _, r := range b.Runs {
		for _, t := range r.Text {
			result.WriteString(t.Content)
		}
	}
	return strings.TrimSpace(result.String())
}
