package services

import (
	"sort"

	"github.com/corvid-labs/grounder/internal/core/domain"
)

// signalPriority orders signals by trustworthiness. Lower is better.
// A filename match is an explicit reference to the document; semantic
// similarity is inferred; the keyword scan only fills gaps.
func signalPriority(s domain.Signal) int {
	switch s {
	case domain.SignalFilename:
		return 0
	case domain.SignalSemantic:
		return 1
	case domain.SignalKeyword:
		return 2
	default:
		return 3
	}
}

type unitKey struct {
	filename string
	signal   domain.Signal
	index    int
	prefix   string
}

// rankCandidates merges the per-signal result lists into one ranked,
// deduplicated list.
//
// Dedup happens at two levels. A filename surfaced by a
// higher-priority signal suppresses every lower-priority candidate
// for the same filename. Within the surviving signal, exact repeats
// of the same unit (same filename, chunk index and content prefix)
// collapse to the first occurrence.
func rankCandidates(candidates []domain.RetrievalCandidate) []domain.RetrievalCandidate {
	if len(candidates) == 0 {
		return nil
	}

	bestSignal := make(map[string]int)
	for _, c := range candidates {
		p := signalPriority(c.Signal)
		if cur, ok := bestSignal[c.Filename]; !ok || p < cur {
			bestSignal[c.Filename] = p
		}
	}

	seen := make(map[unitKey]bool)
	ranked := make([]domain.RetrievalCandidate, 0, len(candidates))
	for _, c := range candidates {
		if signalPriority(c.Signal) != bestSignal[c.Filename] {
			continue
		}
		key := unitKey{
			filename: c.Filename,
			signal:   c.Signal,
			index:    c.ChunkIndex,
			prefix:   contentPrefix(c.Content, 64),
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		ranked = append(ranked, c)
	}

	// Stable sort keeps each signal's own ordering for equal scores.
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := signalPriority(ranked[i].Signal), signalPriority(ranked[j].Signal)
		if pi != pj {
			return pi < pj
		}
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}

func contentPrefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
