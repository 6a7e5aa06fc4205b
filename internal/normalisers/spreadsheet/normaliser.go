// Package spreadsheet normalises workbook and CSV files into
// markdown-style tables with a detected header row.
package spreadsheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/corvid-labs/grounder/internal/core/domain"
	"github.com/corvid-labs/grounder/internal/core/ports/driven"
	"github.com/corvid-labs/grounder/internal/normalisers/table"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles spreadsheet documents.
type Normaliser struct{}

// New creates a new spreadsheet normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".xlsx", ".xls", ".csv"}
}

// FileType returns the enumerated source format.
func (n *Normaliser) FileType() domain.FileType {
	return domain.FileTypeSpreadsheet
}

// Normalise extracts all sheets into one canonical tabular text.
// Multi-sheet workbooks are concatenated with a "Sheet: name" heading
// per sheet; the structural summary aggregates across sheets.
func (n *Normaliser) Normalise(_ context.Context, filename string, data []byte) (*domain.NormalizedContent, error) {
	if len(data) == 0 {
		return nil, domain.ErrInvalidInput
	}

	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return normaliseCSV(data)
	}
	return normaliseWorkbook(data)
}

func normaliseCSV(data []byte) (*domain.NormalizedContent, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // ragged rows are common in exports
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}

	return table.Build(rows), nil
}

func normaliseWorkbook(data []byte) (*domain.NormalizedContent, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}
	defer f.Close()

	var sections []string
	var tables []*domain.TableInfo
	sheets := f.GetSheetList()

	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %s: %v", domain.ErrCorruptFile, sheet, err)
		}

		content := table.Build(rows)
		if content.Text == "" {
			continue
		}

		text := content.Text
		if len(sheets) > 1 {
			text = fmt.Sprintf("Sheet: %s\n%s", sheet, text)
		}
		sections = append(sections, text)
		tables = append(tables, content.Table)
	}

	if len(sections) == 0 {
		return &domain.NormalizedContent{
			Kind:  domain.KindTabular,
			Table: &domain.TableInfo{Summary: "Empty workbook", Structure: "table:0x0"},
		}, nil
	}

	if len(sections) == 1 {
		return &domain.NormalizedContent{
			Kind:  domain.KindTabular,
			Text:  sections[0],
			Table: tables[0],
		}, nil
	}

	return &domain.NormalizedContent{
		Kind:  domain.KindTabular,
		Text:  strings.Join(sections, "\n\n"),
		Table: mergeTables(tables, len(sections)),
	}, nil
}

// mergeTables aggregates per-sheet shapes: row counts sum, column
// names come from the first sheet that detected a header.
func mergeTables(tables []*domain.TableInfo, sheetCount int) *domain.TableInfo {
	merged := &domain.TableInfo{}
	for _, t := range tables {
		merged.RowCount += t.RowCount
		if len(merged.ColumnNames) == 0 {
			merged.ColumnNames = t.ColumnNames
		}
	}
	merged.Structure = fmt.Sprintf("table:%dx%d:sheets=%d",
		merged.RowCount, len(merged.ColumnNames), sheetCount)
	merged.Summary = fmt.Sprintf("Workbook with %d sheets, %d rows total",
		sheetCount, merged.RowCount)
	return merged
}
