package domain

import "time"

// FileType identifies the source format of an uploaded file.
type FileType string

const (
	FileTypePlainText    FileType = "plain-text"
	FileTypeSpreadsheet  FileType = "spreadsheet"
	FileTypeWordDocument FileType = "word-document"
	FileTypePDF          FileType = "pdf"
	FileTypePresentation FileType = "presentation"
)

// Document represents one user-uploaded file after normalisation.
// Identity is (OwnerID, Filename); re-uploading the same filename
// supersedes the prior version.
type Document struct {
	// OwnerID is the account namespace the document belongs to.
	OwnerID string

	// Filename is the upload name, unique per owner.
	Filename string

	// FileType is the source format.
	FileType FileType

	// Content is the full normalised UTF-8 text.
	Content string

	// Metadata holds the typed attributes derived during indexing.
	Metadata DocumentMetadata

	// CreatedAt is when this version was indexed.
	CreatedAt time.Time
}

// DocumentMetadata carries the typed per-document attributes that
// accompany both the full-document record and every chunk.
type DocumentMetadata struct {
	// ContentHash is the fingerprint of the normalised text.
	ContentHash string

	// IsTabular reports whether the document is table-shaped.
	IsTabular bool

	// RowCount is the number of data rows (tabular only).
	RowCount int

	// ColumnNames are the detected header columns (tabular only).
	ColumnNames []string

	// Summary is a short human-readable description of the content.
	Summary string

	// Structure is a machine-readable shape descriptor,
	// e.g. "table:12x4" or "text:paragraphs=8".
	Structure string

	// CharCount is the length of the normalised text.
	CharCount int
}

// Chunk is one retrievable unit derived from a Document.
// ChunkIndex is contiguous from 0 to TotalChunks-1 for a given
// (owner, filename) at any point in time.
type Chunk struct {
	OwnerID     string
	Filename    string
	ChunkIndex  int
	TotalChunks int
	Content     string
	IsTabular   bool
	Summary     string
	Structure   string
}

// DocumentInfo is the listing view of an indexed document.
type DocumentInfo struct {
	Filename  string
	FileType  FileType
	IsTabular bool
	RowCount  int
	Summary   string
	CharCount int
}

// OwnerStats holds per-owner object counts across both store tiers.
type OwnerStats struct {
	Documents int
	Chunks    int
}

// IndexStatus reports the outcome of an indexing call.
type IndexStatus string

const (
	// IndexStatusIndexed means the document was (re)written to the store.
	IndexStatusIndexed IndexStatus = "indexed"

	// IndexStatusSkipped means the content hash was unchanged.
	IndexStatusSkipped IndexStatus = "skipped"

	// IndexStatusFailed means this one file could not be indexed.
	IndexStatusFailed IndexStatus = "failed"
)

// IndexResult is returned by the indexer for each file.
type IndexResult struct {
	Status     IndexStatus
	ChunkCount int

	// Reason explains skipped or failed outcomes
	// (e.g. "unchanged", "store unreachable").
	Reason string
}
