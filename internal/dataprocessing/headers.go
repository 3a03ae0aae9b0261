package dataprocessing

import (
	"fmt"
	"strings"
)

// SynthesizeHeaders derives a unique column schema from the two-row header
// block at the top of a worksheet grid and returns it together with the
// remaining data rows (the two header rows removed).
//
// Row 0 and row 1 are forward-filled independently: a blank cell inherits
// the nearest non-blank value to its left, leading blanks stay blank. Per
// column the row-1 value wins, then the row-0 value, then a positional
// Unnamed_<i> placeholder. Unless the sheet is the wall-thickness kind,
// the last column is forced to "Comments" when no column carries that name
// already; the rightmost column of these workbooks is free-text commentary
// whatever its label says.
func SynthesizeHeaders(grid [][]string, kind SheetKind) (Schema, [][]string) {
	if len(grid) == 0 {
		return nil, nil
	}

	width := len(grid[0])
	first := forwardFill(padRow(grid[0], width))
	var second []string
	if len(grid) > 1 {
		second = forwardFill(padRow(grid[1], width))
	} else {
		second = make([]string, width)
	}

	headers := make([]string, width)
	for i := 0; i < width; i++ {
		switch {
		case strings.TrimSpace(second[i]) != "":
			headers[i] = second[i]
		case strings.TrimSpace(first[i]) != "":
			headers[i] = first[i]
		default:
			headers[i] = fmt.Sprintf("Unnamed_%d", i)
		}
	}

	if kind != KindWallThickness && width > 1 && !containsHeader(headers, commentsColumn) {
		headers[width-1] = commentsColumn
	}

	schema := uniquifyHeaders(headers)

	if len(grid) <= 2 {
		return schema, nil
	}
	data := make([][]string, len(grid)-2)
	copy(data, grid[2:])
	return schema, data
}

// SingleRowHeaders derives a schema from a lone header row. Blank cells
// become the literal "Unnamed" (no positional suffix before the uniqueness
// pass). Used to read the reference workbook, which carries plain one-row
// headers and no data.
func SingleRowHeaders(row []string) Schema {
	headers := make([]string, len(row))
	for i, cell := range row {
		if strings.TrimSpace(cell) == "" {
			headers[i] = "Unnamed"
		} else {
			headers[i] = cell
		}
	}
	return uniquifyHeaders(headers)
}

// forwardFill replaces each blank cell with the nearest non-blank value to
// its left within the same row.
func forwardFill(row []string) []string {
	out := make([]string, len(row))
	last := ""
	for i, cell := range row {
		if strings.TrimSpace(cell) == "" {
			out[i] = last
		} else {
			out[i] = cell
			last = cell
		}
	}
	return out
}

// uniquifyHeaders disambiguates repeated header strings left to right by
// appending the 0-based column position. Suffixing repeats until the name
// is unique so the schema invariant holds even when a sheet already
// contains a column named like a generated suffix.
func uniquifyHeaders(headers []string) Schema {
	seen := make(map[string]struct{}, len(headers))
	out := make(Schema, 0, len(headers))
	for i, header := range headers {
		name := header
		for {
			if _, dup := seen[name]; !dup {
				break
			}
			name = fmt.Sprintf("%s_%d", name, i)
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func containsHeader(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
