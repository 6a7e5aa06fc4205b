// Package normalisers wires format-specific normalisers into a
// registry keyed by file extension.
package normalisers

import (
	"path/filepath"
	"strings"

	"github.com/corvid-labs/grounder/internal/core/domain"
	"github.com/corvid-labs/grounder/internal/core/ports/driven"
	"github.com/corvid-labs/grounder/internal/normalisers/docx"
	"github.com/corvid-labs/grounder/internal/normalisers/pdf"
	"github.com/corvid-labs/grounder/internal/normalisers/plaintext"
	"github.com/corvid-labs/grounder/internal/normalisers/pptx"
	"github.com/corvid-labs/grounder/internal/normalisers/spreadsheet"
)

// Registry selects a normaliser by filename extension.
type Registry struct {
	byExt map[string]driven.Normaliser
}

// NewRegistry builds a registry from the given normalisers.
// Later registrations win on extension conflicts.
func NewRegistry(ns ...driven.Normaliser) *Registry {
	r := &Registry{byExt: make(map[string]driven.Normaliser)}
	for _, n := range ns {
		for _, ext := range n.SupportedExtensions() {
			r.byExt[strings.ToLower(ext)] = n
		}
	}
	return r
}

// Defaults returns the registry with every built-in normaliser.
func Defaults() *Registry {
	return NewRegistry(
		plaintext.New(),
		spreadsheet.New(),
		docx.New(),
		pdf.New(),
		pptx.New(),
	)
}

// ForFilename returns the normaliser for the file's extension.
// Returns domain.ErrUnsupportedFormat when no normaliser matches.
func (r *Registry) ForFilename(filename string) (driven.Normaliser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	n, ok := r.byExt[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFormat
	}
	return n, nil
}

// SupportedExtensions lists every registered extension.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}
