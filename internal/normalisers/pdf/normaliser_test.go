package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvid-labs/grounder/internal/core/domain"
)

func TestSupportedExtensions(t *testing.T) {
	n := New()
	assert.Equal(t, []string{".pdf"}, n.SupportedExtensions())
	assert.Equal(t, domain.FileTypePDF, n.FileType())
}

func TestNormalise_EmptyInput(t *testing.T) {
	_, err := New().Normalise(context.Background(), "a.pdf", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_NotAPDF(t *testing.T) {
	_, err := New().Normalise(context.Background(), "a.pdf", []byte("this is not a pdf"))
	assert.ErrorIs(t, err, domain.ErrCorruptFile)
}

func TestNormalise_TruncatedHeader(t *testing.T) {
	// A valid magic number with a missing body must not panic.
	_, err := New().Normalise(context.Background(), "a.pdf", []byte("%PDF-1.7\n"))
	assert.ErrorIs(t, err, domain.ErrCorruptFile)
}
