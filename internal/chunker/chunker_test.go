package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/corvid-labs/grounder/internal/core/domain"
)

func textContent(text string) *domain.NormalizedContent {
	return &domain.NormalizedContent{Kind: domain.KindText, Text: text}
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		if c.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, c.chunkSize)
		}
		if c.overlap != DefaultOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultOverlap, c.overlap)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		c := New(WithChunkSize(100), WithOverlap(150))
		if c.overlap >= c.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		c := New(WithChunkSize(0), WithOverlap(-1))
		if c.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", c.chunkSize)
		}
		if c.overlap != DefaultOverlap {
			t.Errorf("expected default overlap, got %d", c.overlap)
		}
	})
}

func TestChunk_EmptyText(t *testing.T) {
	c := New()
	if chunks := c.Chunk(textContent("")); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	c := New()
	text := "A short paragraph.\n\nAnother short paragraph."
	chunks := c.Chunk(textContent(text))
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Error("single chunk should be the whole text")
	}
}

func TestChunk_SemanticParagraphs(t *testing.T) {
	c := New(WithChunkSize(200), WithOverlap(60))

	paragraphs := make([]string, 10)
	for i := range paragraphs {
		paragraphs[i] = fmt.Sprintf("Paragraph %d is about fifty characters long padding.", i)
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks := c.Chunk(textContent(text))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	t.Run("ceiling respected", func(t *testing.T) {
		for i, chunk := range chunks {
			if len(chunk) > 200 {
				t.Errorf("chunk %d exceeds ceiling: %d chars", i, len(chunk))
			}
		}
	})

	t.Run("coverage", func(t *testing.T) {
		// Every paragraph must appear in at least one chunk, in order.
		joined := strings.Join(chunks, "\n\n")
		for i, p := range paragraphs {
			if !strings.Contains(joined, p) {
				t.Errorf("paragraph %d lost at a chunk boundary", i)
			}
		}
	})

	t.Run("overlap is paragraph aligned and bounded", func(t *testing.T) {
		for i := 1; i < len(chunks); i++ {
			prev := strings.Split(chunks[i-1], "\n\n")
			cur := strings.Split(chunks[i], "\n\n")

			// Largest k where prev's last k paragraphs equal cur's first k.
			max := len(prev)
			if len(cur) < max {
				max = len(cur)
			}
			shared := 0
			for k := max; k > 0; k-- {
				match := true
				for j := 0; j < k; j++ {
					if prev[len(prev)-k+j] != cur[j] {
						match = false
						break
					}
				}
				if match {
					shared = k
					break
				}
			}

			sharedLen := 0
			for j := 0; j < shared; j++ {
				if j > 0 {
					sharedLen += 2
				}
				sharedLen += len(cur[j])
			}
			if sharedLen > 60 {
				t.Errorf("chunks %d/%d share %d chars, overlap budget is 60", i-1, i, sharedLen)
			}
		}
	})
}

func TestChunk_WordWindowFallback(t *testing.T) {
	c := New(WithChunkSize(100), WithWordWindow(20, 5))

	// One unbroken block, no blank lines.
	words := make([]string, 50)
	for i := range words {
		words[i] = fmt.Sprintf("word%02d", i)
	}
	text := strings.Join(words, " ")

	chunks := c.Chunk(textContent(text))
	if len(chunks) < 2 {
		t.Fatalf("expected windowed chunks, got %d", len(chunks))
	}

	// Windows advance by window-overlap words; consecutive windows
	// share exactly the overlap.
	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	if len(first) != 20 {
		t.Errorf("expected 20-word window, got %d", len(first))
	}
	if second[0] != first[15] {
		t.Errorf("expected second window to start at word 15, got %s", second[0])
	}

	// No word lost.
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(last, "word49") {
		t.Error("final window must end with the last word")
	}
}

func TestChunk_TabularSingleUnit(t *testing.T) {
	c := New()
	content := &domain.NormalizedContent{
		Kind: domain.KindTabular,
		Text: "| Item | Cost |\n| --- | --- |\n| Pens | 12 |\n| Paper | 7 |\n| Ink | 30 |",
		Table: &domain.TableInfo{
			RowCount:    3,
			ColumnNames: []string{"Item", "Cost"},
			Summary:     "Table with 3 rows and 2 columns (Item, Cost)",
		},
	}

	chunks := c.Chunk(content)
	if len(chunks) != 1 {
		t.Fatalf("table under the ceiling must be exactly 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != content.Text {
		t.Error("tabular chunk must carry the full table text")
	}
}

func TestChunk_OversizedTableSummaryPrefix(t *testing.T) {
	c := New(WithChunkSize(300), WithOverlap(50))

	rows := make([]string, 40)
	for i := range rows {
		rows[i] = fmt.Sprintf("| row%02d | value%02d |", i, i)
	}
	content := &domain.NormalizedContent{
		Kind: domain.KindTabular,
		Text: strings.Join(rows, "\n\n"),
		Table: &domain.TableInfo{
			RowCount: 40,
			Summary:  "Table with 40 rows and 2 columns",
		},
	}

	chunks := c.Chunk(content)
	if len(chunks) < 2 {
		t.Fatalf("oversized table should split, got %d chunks", len(chunks))
	}
	if !strings.HasPrefix(chunks[0], content.Table.Summary) {
		t.Error("chunk 0 of an oversized table must be prefixed with the summary")
	}
}

func TestChunk_HugeParagraphWindowed(t *testing.T) {
	c := New(WithChunkSize(120), WithWordWindow(10, 2))

	huge := strings.Repeat("longword ", 60) // single paragraph above the ceiling
	text := "intro paragraph\n\n" + strings.TrimSpace(huge) + "\n\noutro paragraph"

	chunks := c.Chunk(textContent(text))
	joined := strings.Join(chunks, " ")
	if !strings.Contains(joined, "intro paragraph") || !strings.Contains(joined, "outro paragraph") {
		t.Error("paragraphs around a huge block must survive")
	}
	for i, chunk := range chunks {
		if len(chunk) > 120 && !strings.Contains(chunk, "longword") {
			t.Errorf("chunk %d exceeds ceiling: %d", i, len(chunk))
		}
	}
}
