// Package pdf normalises PDF documents via page text extraction.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/corvid-labs/grounder/internal/core/domain"
	"github.com/corvid-labs/grounder/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".pdf"}
}

// FileType returns the enumerated source format.
func (n *Normaliser) FileType() domain.FileType {
	return domain.FileTypePDF
}

// Normalise extracts per-page text, joining pages with blank lines.
// Embedded images and binary objects are not extracted; text search
// only sees page text.
func (n *Normaliser) Normalise(_ context.Context, _ string, data []byte) (content *domain.NormalizedContent, err error) {
	if len(data) == 0 {
		return nil, domain.ErrInvalidInput
	}

	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			content = nil
			err = fmt.Errorf("%w: %v", domain.ErrCorruptFile, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// One unreadable page does not corrupt the document.
			continue
		}
		text = strings.TrimSpace(text)
		if text != "" {
			pages = append(pages, text)
		}
	}

	return &domain.NormalizedContent{
		Kind: domain.KindText,
		Text: strings.Join(pages, "\n\n"),
	}, nil
}
