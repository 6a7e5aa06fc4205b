package domain

// ContentKind discriminates the two normalised content variants.
// The decision is made once by the normaliser and consumed uniformly
// by the chunker and the store.
type ContentKind int

const (
	// KindText is free-form prose split into paragraphs.
	KindText ContentKind = iota

	// KindTabular is table-shaped content rendered as a markdown table.
	KindTabular
)

// NormalizedContent is the canonical output of a normaliser: a single
// UTF-8 string plus the variant tag, with table shape attached for the
// tabular variant.
type NormalizedContent struct {
	// Kind selects the variant.
	Kind ContentKind

	// Text is the canonical string for both variants. Identical byte
	// input always yields identical Text; the change detector hashes it.
	Text string

	// Table describes the shape when Kind is KindTabular, nil otherwise.
	Table *TableInfo
}

// IsTabular reports whether the content is the tabular variant.
func (c *NormalizedContent) IsTabular() bool {
	return c.Kind == KindTabular
}

// TableInfo is the structural summary of tabular content.
type TableInfo struct {
	// RowCount is the number of data rows, excluding the header.
	RowCount int

	// ColumnNames are the detected header cells, empty when no header
	// row could be identified.
	ColumnNames []string

	// Summary is a one-line human-readable description,
	// e.g. "Table with 3 rows and 2 columns (Item, Cost)".
	Summary string

	// Structure is the machine-readable descriptor, e.g. "table:3x2".
	Structure string
}
