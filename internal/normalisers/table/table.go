// Package table renders row data as a column-aligned markdown table
// and detects the header row shared by all tabular normalisers.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/corvid-labs/grounder/internal/core/domain"
)

// headerScanDepth is how many leading non-empty rows are considered
// header candidates.
const headerScanDepth = 10

// maxSummaryColumns caps the column names listed in the summary line.
const maxSummaryColumns = 8

// Build turns raw rows into canonical tabular content. Rows before
// the detected header are treated as preamble annotations and
// preserved verbatim above the table. A missing header is not an
// error; the content is emitted as a flat table.
func Build(rows [][]string) *domain.NormalizedContent {
	rows = dropEmptyRows(rows)
	if len(rows) == 0 {
		return &domain.NormalizedContent{
			Kind:  domain.KindTabular,
			Table: &domain.TableInfo{Summary: "Empty table", Structure: "table:0x0"},
		}
	}

	headerIdx, found := DetectHeader(rows)

	var b strings.Builder
	var info domain.TableInfo

	if found {
		for _, pre := range rows[:headerIdx] {
			b.WriteString(strings.Join(compact(pre), " "))
			b.WriteString("\n")
		}
		if headerIdx > 0 {
			b.WriteString("\n")
		}

		header := rows[headerIdx]
		body := rows[headerIdx+1:]
		writeMarkdown(&b, header, body, true)

		info.RowCount = len(body)
		info.ColumnNames = compact(header)
	} else {
		writeMarkdown(&b, nil, rows, false)
		info.RowCount = len(rows)
	}

	cols := columnCount(rows)
	info.Structure = fmt.Sprintf("table:%dx%d", info.RowCount, cols)
	info.Summary = summarise(info.RowCount, cols, info.ColumnNames)

	return &domain.NormalizedContent{
		Kind:  domain.KindTabular,
		Text:  strings.TrimRight(b.String(), "\n"),
		Table: &info,
	}
}

// DetectHeader scans the first few non-empty rows for the one with
// the highest ratio of non-numeric, non-empty cells. A candidate
// needs at least two non-empty cells. Returns the row index and
// whether a header was found.
func DetectHeader(rows [][]string) (int, bool) {
	depth := headerScanDepth
	if len(rows) < depth {
		depth = len(rows)
	}

	best := -1
	bestRatio := 0.0

	for i := 0; i < depth; i++ {
		nonEmpty := 0
		nonNumeric := 0
		for _, cell := range rows[i] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			nonEmpty++
			if !isNumeric(cell) {
				nonNumeric++
			}
		}
		if nonEmpty < 2 {
			continue
		}
		ratio := float64(nonNumeric) / float64(len(rows[i]))
		if ratio > bestRatio {
			bestRatio = ratio
			best = i
		}
	}

	if best < 0 || bestRatio == 0 {
		return 0, false
	}
	return best, true
}

// writeMarkdown emits a column-aligned markdown table. When header is
// nil the separator row is skipped and only data rows are written.
func writeMarkdown(b *strings.Builder, header []string, body [][]string, withHeader bool) {
	all := body
	if withHeader {
		all = append([][]string{header}, body...)
	}
	widths := columnWidths(all)

	if withHeader {
		writeRow(b, header, widths)
		sep := make([]string, len(widths))
		for i, w := range widths {
			sep[i] = strings.Repeat("-", w)
		}
		writeRow(b, sep, widths)
	}
	for _, row := range body {
		writeRow(b, row, widths)
	}
}

func writeRow(b *strings.Builder, row []string, widths []int) {
	b.WriteString("|")
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = strings.TrimSpace(row[i])
		}
		b.WriteString(" ")
		b.WriteString(cell)
		if pad := w - len([]rune(cell)); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func columnWidths(rows [][]string) []int {
	widths := make([]int, columnCount(rows))
	for _, row := range rows {
		for i, cell := range row {
			if l := len([]rune(strings.TrimSpace(cell))); l > widths[i] {
				widths[i] = l
			}
		}
	}
	return widths
}

func columnCount(rows [][]string) int {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

func summarise(rowCount, cols int, columns []string) string {
	if rowCount == 0 && cols == 0 {
		return "Empty table"
	}
	if len(columns) == 0 {
		return fmt.Sprintf("Table with %d rows and %d columns", rowCount, cols)
	}
	listed := columns
	if len(listed) > maxSummaryColumns {
		listed = listed[:maxSummaryColumns]
	}
	return fmt.Sprintf("Table with %d rows and %d columns (%s)",
		rowCount, cols, strings.Join(listed, ", "))
}

// isNumeric reports whether a cell parses as a number once common
// thousand separators are stripped.
func isNumeric(cell string) bool {
	cleaned := strings.ReplaceAll(cell, ",", "")
	cleaned = strings.TrimSuffix(cleaned, "%")
	_, err := strconv.ParseFloat(cleaned, 64)
	return err == nil
}

func compact(row []string) []string {
	out := make([]string, 0, len(row))
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell != "" {
			out = append(out, cell)
		}
	}
	return out
}

func dropEmptyRows(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(compact(row)) > 0 {
			out = append(out, row)
		}
	}
	return out
}
