package domain

// Signal identifies the retrieval strategy that produced a candidate.
// The fixed priority (filename > semantic > keyword) reflects signal
// trustworthiness, not recency.
type Signal int

const (
	// SignalFilename is a substring match against stored filenames.
	SignalFilename Signal = iota

	// SignalSemantic is a nearest-neighbour match from the vector store.
	SignalSemantic

	// SignalKeyword is a literal scan of locally readable normalised
	// text, used only to fill gaps.
	SignalKeyword
)

// String returns the signal name for logging and headers.
func (s Signal) String() string {
	switch s {
	case SignalFilename:
		return "filename"
	case SignalSemantic:
		return "semantic"
	case SignalKeyword:
		return "keyword"
	default:
		return "unknown"
	}
}

// RetrievalCandidate is a query-time result produced by one signal.
// It is ephemeral and never persisted.
type RetrievalCandidate struct {
	Filename    string
	Content     string
	IsTabular   bool
	Score       float64
	Signal      Signal
	ChunkIndex  int
	TotalChunks int
	Summary     string
}

// AssembleMode selects the context assembly profile.
type AssembleMode int

const (
	// ModeTight favours many documents with small per-document slices,
	// for ordinary conversational turns.
	ModeTight AssembleMode = iota

	// ModeFull favours few documents with large slices sourced from the
	// full-document tier, for "summarise everything" requests.
	ModeFull
)

// ContextItem is one document slice inside an assembled context block.
type ContextItem struct {
	Filename string
	Content  string
	Summary  string
}

// AssembledContext is the ranked, budget-bounded context returned to
// the caller. Its rendered text never exceeds the requested budget
// plus one truncation marker.
type AssembledContext struct {
	Items []ContextItem

	// CharCount is the length of the rendered text.
	CharCount int

	// Omitted counts ranked candidates dropped for budget reasons.
	Omitted int

	// Text is the rendered block handed to the downstream consumer.
	Text string
}
