package driven

import (
	"context"

	"github.com/corvid-labs/grounder/internal/core/domain"
)

// Normaliser extracts a single canonical UTF-8 text representation
// from one file format family. Each normaliser handles specific file
// extensions (e.g. ".pdf", ".xlsx").
//
// Normalisation must be deterministic: identical byte input always
// produces identical text, since the change detector hashes it.
type Normaliser interface {
	// SupportedExtensions returns the lower-case extensions (with dot)
	// this normaliser handles.
	SupportedExtensions() []string

	// FileType is the enumerated source format this normaliser emits.
	FileType() domain.FileType

	// Normalise converts raw bytes into normalised content.
	// Fails with domain.ErrCorruptFile when the bytes cannot be parsed.
	Normalise(ctx context.Context, filename string, data []byte) (*domain.NormalizedContent, error)
}

// NormaliserRegistry resolves the normaliser for a filename.
type NormaliserRegistry interface {
	// ForFilename returns the normaliser for the file's extension.
	// Returns domain.ErrUnsupportedFormat when no normaliser matches.
	ForFilename(filename string) (Normaliser, error)
}
