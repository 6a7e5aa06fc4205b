package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested document does not exist.
	// Expected absence, not a hard failure.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a file type no normaliser handles.
	// Surfaced as an indexing failure for that one file.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrCorruptFile indicates bytes that could not be parsed as the
	// format their extension claims.
	ErrCorruptFile = errors.New("corrupt file")

	// ErrStoreUnavailable indicates the vector store is unreachable.
	// Retrieval degrades to keyword-only search; indexing reports
	// "skipped, store unreachable" rather than failing silently.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInconsistentChunkState indicates the chunk set for a filename
	// may be mixed across generations. Fatal for that index entry; the
	// next write must force a full reindex.
	ErrInconsistentChunkState = errors.New("inconsistent chunk state")
)
