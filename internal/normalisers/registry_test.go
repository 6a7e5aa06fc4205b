package normalisers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/grounder/internal/core/domain"
)

func TestDefaults(t *testing.T) {
	r := Defaults()

	for _, ext := range []string{".txt", ".md", ".log", ".csv", ".xlsx", ".xls", ".docx", ".pdf", ".pptx"} {
		n, err := r.ForFilename("file" + ext)
		require.NoError(t, err, "extension %s", ext)
		assert.NotNil(t, n)
	}
}

func TestForFilename_CaseInsensitive(t *testing.T) {
	r := Defaults()

	lower, err := r.ForFilename("report.pdf")
	require.NoError(t, err)
	upper, err := r.ForFilename("REPORT.PDF")
	require.NoError(t, err)
	assert.Equal(t, lower, upper)
}

func TestForFilename_Unsupported(t *testing.T) {
	r := Defaults()

	_, err := r.ForFilename("archive.tar.gz")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = r.ForFilename("noextension")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestSupportedExtensions(t *testing.T) {
	r := Defaults()
	exts := r.SupportedExtensions()
	assert.Contains(t, exts, ".docx")
	assert.Contains(t, exts, ".csv")
	assert.Len(t, exts, 9)
}
