package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/grounder/internal/core/domain"
)

func TestSupportedExtensions(t *testing.T) {
	n := New()
	assert.Equal(t, []string{".txt", ".md", ".log"}, n.SupportedExtensions())
	assert.Equal(t, domain.FileTypePlainText, n.FileType())
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			name:  "passthrough",
			input: []byte("hello world"),
			want:  "hello world",
		},
		{
			name:  "crlf to lf",
			input: []byte("line one\r\nline two\r\n"),
			want:  "line one\nline two",
		},
		{
			name:  "bare cr to lf",
			input: []byte("line one\rline two"),
			want:  "line one\nline two",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: []byte("\n\n  body  \n\n"),
			want:  "body",
		},
		{
			name:  "invalid utf8 replaced",
			input: []byte{'o', 'k', 0xff, '!'},
			want:  "ok�!",
		},
		{
			name:  "empty stays empty",
			input: []byte{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := New().Normalise(context.Background(), "a.txt", tt.input)
			require.NoError(t, err)
			assert.Equal(t, domain.KindText, content.Kind)
			assert.Equal(t, tt.want, content.Text)
			assert.False(t, content.IsTabular())
		})
	}
}

func TestNormalise_NilInput(t *testing.T) {
	_, err := New().Normalise(context.Background(), "a.txt", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_Deterministic(t *testing.T) {
	data := []byte("same\r\ninput\r\n")
	first, err := New().Normalise(context.Background(), "a.md", data)
	require.NoError(t, err)
	second, err := New().Normalise(context.Background(), "a.md", data)
	require.NoError(t, err)
	assert.Equal(t, first.Text, second.Text)
}
