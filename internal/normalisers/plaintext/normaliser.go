// Package plaintext normalises plain text files.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/corvid-labs/grounder/internal/core/domain"
	"github.com/corvid-labs/grounder/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".txt", ".md", ".log"}
}

// FileType returns the enumerated source format.
func (n *Normaliser) FileType() domain.FileType {
	return domain.FileTypePlainText
}

// Normalise converts raw bytes to canonical text. Line endings are
// normalised to LF and invalid UTF-8 sequences are replaced, so
// identical byte input always yields identical text.
func (n *Normaliser) Normalise(_ context.Context, _ string, data []byte) (*domain.NormalizedContent, error) {
	if data == nil {
		return nil, domain.ErrInvalidInput
	}

	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSpace(text)

	return &domain.NormalizedContent{
		Kind: domain.KindText,
		Text: text,
	}, nil
}
