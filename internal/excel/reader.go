// Package excel reads .xlsx workbooks into the raw string grids the
// conversion pipeline consumes. It is a thin seam over excelize so the
// pipeline itself never touches spreadsheet plumbing.
package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Workbook is an open spreadsheet. It serves worksheet names in workbook
// order and rectangular cell grids, which is exactly the SheetSource
// contract of the conversion pipeline.
type Workbook struct {
	file *excelize.File
	path string
}

// Open opens the workbook at path for reading.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{file: f, path: path}, nil
}

// Close releases the underlying file handle.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Path returns the path the workbook was opened from.
func (w *Workbook) Path() string {
	return w.path
}

// SheetNames lists the worksheets in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Grid returns the sheet's cells as strings, padded into a rectangle.
// excelize serves ragged rows with trailing blanks dropped; downstream
// header synthesis takes the schema width from the first row, so every row
// is padded to the widest row of the sheet.
func (w *Workbook) Grid(sheet string) ([][]string, error) {
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil, nil
	}

	grid := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) == width {
			grid[i] = row
			continue
		}
		padded := make([]string, width)
		copy(padded, row)
		grid[i] = padded
	}
	return grid, nil
}
