package dataprocessing

import (
	"fmt"

	cerrors "tallycli/internal/errors"
)

// ReferenceSchemas holds the reference column list for each designated
// sheet kind. Loaded once at startup and read-only for the rest of the run.
type ReferenceSchemas map[SheetKind]Schema

// LoadReferenceSchemas reads the reference workbook through the same sheet
// source abstraction as the input. Each designated kind must appear as a
// worksheet whose first row carries the reference headers; the first sheet
// of a kind wins if the workbook repeats one. A workbook missing either
// kind is a configuration error; the conversion must not start without a
// complete reference.
func LoadReferenceSchemas(src SheetSource) (ReferenceSchemas, error) {
	out := make(ReferenceSchemas, 2)
	for _, name := range src.SheetNames() {
		kind := RecognizeSheetKind(name)
		if !kind.Designated() {
			continue
		}
		if _, dup := out[kind]; dup {
			continue
		}
		grid, err := src.Grid(name)
		if err != nil {
			return nil, cerrors.Configuration(
				fmt.Sprintf("cannot read reference sheet %q", name), err)
		}
		if len(grid) == 0 {
			return nil, cerrors.Configuration(
				fmt.Sprintf("reference sheet %q has no header row", name), nil)
		}
		out[kind] = SingleRowHeaders(grid[0])
	}

	for _, kind := range DesignatedKinds() {
		if _, ok := out[kind]; !ok {
			return nil, cerrors.Configuration(
				fmt.Sprintf("reference workbook has no %s sheet", kind), nil)
		}
	}
	return out, nil
}
