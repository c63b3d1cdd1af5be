package extract

import (
	"errors"
	"strings"
)

// ErrSourceUnreadable indicates the raw byte source could not be read or
// decoded. Callers treat the file as having zero rows.
var ErrSourceUnreadable = errors.New("source unreadable")

// ErrInsufficientData indicates the input had fewer than two rows, or no
// record survived mapping.
var ErrInsufficientData = errors.New("insufficient data")

// ParseDelimited turns raw delimited text into an ordered grid of trimmed
// string cells. A double quote toggles the in-quote flag; a comma outside
// quotes ends the cell, a newline outside quotes ends the row. Blank lines
// are dropped before scanning.
func ParseDelimited(text string) [][]string {
	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	text = strings.Join(lines, "\n")

	var (
		rows     [][]string
		row      []string
		cell     strings.Builder
		inQuotes bool
	)

	endCell := func() {
		row = append(row, strings.TrimSpace(cell.String()))
		cell.Reset()
	}

	for _, r := range text {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			endCell()
		case r == '\n' && !inQuotes:
			endCell()
			rows = append(rows, row)
			row = nil
		default:
			cell.WriteRune(r)
		}
	}
	endCell()
	rows = append(rows, row)

	return rows
}
