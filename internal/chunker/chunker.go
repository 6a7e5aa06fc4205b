// Package chunker splits normalised document text into overlapping,
// size-bounded units for the chunk tier of the store.
package chunker

import (
	"regexp"
	"strings"

	"github.com/corvid-labs/grounder/internal/core/domain"
)

// DefaultChunkSize is the character ceiling per chunk.
const DefaultChunkSize = 3000

// DefaultOverlap is the maximum trailing overlap, in characters,
// seeded from a closed chunk into the next one. The overlap is always
// paragraph-aligned; a paragraph is never split to build it.
const DefaultOverlap = 300

// DefaultWordWindow is the window size, in words, of the fallback
// splitter used when the text has no paragraph structure.
const DefaultWordWindow = 500

// DefaultWordOverlap is the trailing overlap, in words, of the
// fallback splitter.
const DefaultWordOverlap = 50

var paragraphSep = regexp.MustCompile(`\n[ \t]*\n+`)

// Chunker produces an ordered, finite sequence of chunk strings in a
// single pass over the input.
type Chunker struct {
	chunkSize   int
	overlap     int
	wordWindow  int
	wordOverlap int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the character ceiling per chunk.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the maximum paragraph-aligned overlap in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithWordWindow sets the fallback window and overlap in words.
func WithWordWindow(window, overlap int) Option {
	return func(c *Chunker) {
		if window > 0 && overlap >= 0 && overlap < window {
			c.wordWindow = window
			c.wordOverlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize:   DefaultChunkSize,
		overlap:     DefaultOverlap,
		wordWindow:  DefaultWordWindow,
		wordOverlap: DefaultWordOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 10
	}

	return c
}

// Chunk splits normalised content into chunk strings.
//
// Tabular content below the ceiling is always exactly one chunk.
// Oversized tables are split like prose, with the table summary
// prefixed to chunk 0 so a similarity hit on any chunk still surfaces
// the table's identity. Prose uses blank-line paragraph accumulation,
// falling back to word windows when no paragraph structure exists.
func (c *Chunker) Chunk(content *domain.NormalizedContent) []string {
	text := content.Text
	if text == "" {
		return nil
	}

	if content.Kind == domain.KindTabular {
		if len(text) <= c.chunkSize {
			return []string{text}
		}
		chunks := c.splitText(text)
		if content.Table != nil && content.Table.Summary != "" && len(chunks) > 0 {
			chunks[0] = content.Table.Summary + "\n\n" + chunks[0]
		}
		return chunks
	}

	if len(text) <= c.chunkSize {
		return []string{text}
	}
	return c.splitText(text)
}

// splitText chooses between the semantic paragraph splitter and the
// word-window fallback.
func (c *Chunker) splitText(text string) []string {
	paragraphs := paragraphSep.Split(text, -1)
	if len(paragraphs) <= 1 {
		// One unbroken block: no paragraph boundaries to respect.
		return c.wordWindows(text)
	}
	return c.semanticChunks(paragraphs)
}

// semanticChunks accumulates paragraphs into chunks bounded by the
// character ceiling, seeding each new chunk with a paragraph-aligned
// trailing overlap from the one just closed.
func (c *Chunker) semanticChunks(paragraphs []string) []string {
	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		closed := strings.Join(current, "\n\n")
		chunks = append(chunks, closed)
		current = overlapParagraphs(current, c.overlap)
		currentLen = joinedLen(current)
	}

	for _, para := range paragraphs {
		if para == "" {
			continue
		}

		if len(para) > c.chunkSize {
			// A single paragraph above the ceiling cannot be
			// accumulated; close what we have and window it.
			flush()
			current = nil
			currentLen = 0
			chunks = append(chunks, c.wordWindows(para)...)
			continue
		}

		added := len(para)
		if currentLen > 0 {
			added += 2 // the joining blank line
		}
		if currentLen+added > c.chunkSize {
			flush()
			// The overlap alone may already crowd out the paragraph.
			if currentLen > 0 && currentLen+2+len(para) > c.chunkSize {
				current = nil
				currentLen = 0
			}
		}

		current = append(current, para)
		if currentLen > 0 {
			currentLen += 2
		}
		currentLen += len(para)
	}

	if len(current) > 0 {
		tail := strings.Join(current, "\n\n")
		// Suppress a trailing chunk that is pure overlap.
		if len(chunks) == 0 || !strings.HasSuffix(chunks[len(chunks)-1], tail) {
			chunks = append(chunks, tail)
		}
	}

	return chunks
}

// overlapParagraphs returns the trailing paragraphs of a closed chunk
// whose combined length fits the overlap budget. Whole paragraphs
// only; returns nil when even the last one is too large.
func overlapParagraphs(paragraphs []string, budget int) []string {
	var kept []string
	total := 0
	for i := len(paragraphs) - 1; i >= 0; i-- {
		p := paragraphs[i]
		add := len(p)
		if total > 0 {
			add += 2
		}
		if total+add > budget {
			break
		}
		kept = append([]string{p}, kept...)
		total += add
	}
	return kept
}

func joinedLen(paragraphs []string) int {
	if len(paragraphs) == 0 {
		return 0
	}
	total := 0
	for _, p := range paragraphs {
		total += len(p)
	}
	return total + 2*(len(paragraphs)-1)
}

// wordWindows splits text on whitespace into fixed windows with a
// trailing word overlap, advancing window-overlap words per step.
func (c *Chunker) wordWindows(text string) []string {
	words := strings.Fields(text)
	if len(words) <= c.wordWindow {
		return []string{text}
	}

	step := c.wordWindow - c.wordOverlap
	chunks := make([]string, 0, len(words)/step+1)

	for start := 0; start < len(words); start += step {
		end := start + c.wordWindow
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}

	return chunks
}
