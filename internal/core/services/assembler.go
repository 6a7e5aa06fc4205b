package services

import (
	"fmt"
	"strings"

	"github.com/corvid-labs/grounder/internal/core/domain"
)

const (
	// tableTruncationMarker is the only text allowed past the budget.
	tableTruncationMarker = "\n...[table truncated]"

	// minSliceChars is the smallest content slice worth including.
	// A candidate that cannot get this much space is omitted instead
	// of contributing a useless fragment.
	minSliceChars = 80

	// tightSliceDivisor caps per-document slices in tight mode so the
	// budget spreads across several documents.
	tightSliceDivisor = 4
)

// assembleContext renders ranked candidates into one context block
// bounded by budget characters.
//
// Tight mode caps every slice at a quarter of the budget so several
// documents make it in. Full mode lets each document consume whatever
// budget remains, favouring depth over breadth.
func assembleContext(
	ranked []domain.RetrievalCandidate, budget int, mode domain.AssembleMode,
) *domain.AssembledContext {
	assembled := &domain.AssembledContext{}
	if len(ranked) == 0 {
		return assembled
	}

	sliceCap := budget
	if mode == domain.ModeTight {
		sliceCap = budget / tightSliceDivisor
		if sliceCap < minSliceChars {
			sliceCap = budget
		}
	}

	var blocks []string
	remaining := budget

	for i, c := range ranked {
		separator := 0
		if len(blocks) > 0 {
			separator = 2 // "\n\n"
		}

		header := renderHeader(c)
		available := remaining - separator - len(header) - 1 // "\n" after header
		if available < minSliceChars {
			assembled.Omitted = len(ranked) - i
			break
		}
		if available > sliceCap {
			available = sliceCap
		}

		content, truncated := clip(c.Content, available)
		block := header + "\n" + content
		remaining -= separator + len(header) + 1 + len(content)
		if truncated && c.IsTabular {
			block += tableTruncationMarker
			// Charging the marker here bounds the total overshoot to a
			// single marker even when several tables get cut.
			remaining -= len(tableTruncationMarker)
		}

		blocks = append(blocks, block)

		assembled.Items = append(assembled.Items, domain.ContextItem{
			Filename: c.Filename,
			Content:  content,
			Summary:  c.Summary,
		})
	}

	text := strings.Join(blocks, "\n\n")
	if assembled.Omitted > 0 {
		note := fmt.Sprintf("\n\n[%d more documents omitted]", assembled.Omitted)
		if len(text)+len(note) <= budget {
			text += note
		}
	}

	assembled.Text = text
	assembled.CharCount = len(text)
	return assembled
}

// renderHeader labels a slice with its origin so the downstream model
// can cite the file. Tables are flagged because truncated markdown
// needs different handling than truncated prose.
func renderHeader(c domain.RetrievalCandidate) string {
	tag := "[DOC]"
	if c.IsTabular {
		tag = "[TABLE]"
	}
	header := fmt.Sprintf("%s %s", tag, c.Filename)
	if c.TotalChunks > 1 {
		header += fmt.Sprintf(" (chunk %d/%d)", c.ChunkIndex+1, c.TotalChunks)
	}
	return header
}

// clip cuts content to at most limit characters on a rune boundary.
func clip(content string, limit int) (string, bool) {
	if len(content) <= limit {
		return content, false
	}
	cut := limit
	for cut > 0 && !isRuneStart(content[cut]) {
		cut--
	}
	return content[:cut], true
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
