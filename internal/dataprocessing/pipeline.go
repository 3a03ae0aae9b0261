package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	cerrors "tallycli/internal/errors"
)

// SheetSource is the spreadsheet reader collaborator: ordered worksheet
// names plus a raw rectangular cell grid per worksheet, with no row
// pre-interpreted as a header.
type SheetSource interface {
	SheetNames() []string
	Grid(sheet string) ([][]string, error)
}

// TableWriter is the tabular-store collaborator. Replace persists a
// finalized table under the worksheet's name, dropping any previous table
// of that name.
type TableWriter interface {
	Replace(ctx context.Context, name string, tbl Table) error
}

// Options configures a conversion run.
type Options struct {
	// Reference holds the per-kind schemas designated sheets reconcile
	// against. Load it once with LoadReferenceSchemas.
	Reference ReferenceSchemas
	// StrictExtra escalates genuinely extra columns from a warning to a
	// violation.
	StrictExtra bool
	// OnProgress, when set, receives the completion percentage after each
	// worksheet finishes.
	OnProgress func(percent int)
	Logger     *slog.Logger
}

// SheetWarning records a tolerated reconciliation outcome: the sheet was
// persisted although it carries columns the reference does not know.
type SheetWarning struct {
	Sheet string
	Extra []string
}

// RunReport summarizes a conversion run. It is returned even when the run
// aborts, reflecting the work done up to that point.
type RunReport struct {
	SheetsTotal  int
	Persisted    []string
	Skipped      []string
	Warnings     []SheetWarning
	MissingKinds []SheetKind
	Elapsed      time.Duration
}

// Converter runs the conversion pipeline over every worksheet of a source,
// strictly in workbook order: header synthesis, reference reconciliation
// for designated kinds, ERF merge, column coercion, persistence. One
// worksheet is fully materialized and written before the next is read.
type Converter struct {
	source      SheetSource
	writer      TableWriter
	reference   ReferenceSchemas
	strictExtra bool
	onProgress  func(int)
	logger      *slog.Logger
}

// NewConverter wires a conversion run. Reference schemas are read-only
// from here on.
func NewConverter(source SheetSource, writer TableWriter, opts Options) *Converter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{
		source:      source,
		writer:      writer,
		reference:   opts.Reference,
		strictExtra: opts.StrictExtra,
		onProgress:  opts.OnProgress,
		logger:      logger,
	}
}

// Run converts every worksheet. The first schema violation aborts the run:
// that sheet is not persisted and no later sheet is touched, while tables
// already written stay in the store. Missing designated kinds are reported
// in the returned RunReport, not as a run failure.
func (c *Converter) Run(ctx context.Context) (*RunReport, error) {
	start := time.Now()
	names := c.source.SheetNames()
	report := &RunReport{SheetsTotal: len(names)}

	seen := make(map[SheetKind]bool, 2)
	for i, name := range names {
		kind := RecognizeSheetKind(name)
		if kind.Designated() {
			seen[kind] = true
		}

		if err := c.convertSheet(ctx, name, kind, report); err != nil {
			report.Elapsed = time.Since(start)
			return report, err
		}

		done := i + 1
		percent := int(math.Round(100 * float64(done) / float64(len(names))))
		if c.onProgress != nil {
			c.onProgress(percent)
		}
		c.logger.Info("worksheet completed",
			slog.String("sheet", name),
			slog.Int("done", done),
			slog.Int("total", len(names)),
			slog.Int("percent", percent))
	}

	for _, kind := range DesignatedKinds() {
		if !seen[kind] {
			report.MissingKinds = append(report.MissingKinds, kind)
		}
	}
	report.Elapsed = time.Since(start)

	c.logger.Info("conversion finished",
		slog.Int("sheets", report.SheetsTotal),
		slog.Int("persisted", len(report.Persisted)),
		slog.Int("skipped", len(report.Skipped)),
		slog.Int("warnings", len(report.Warnings)),
		slog.Int("missing_kinds", len(report.MissingKinds)),
		slog.Duration("elapsed", report.Elapsed))
	return report, nil
}

func (c *Converter) convertSheet(ctx context.Context, name string, kind SheetKind, report *RunReport) error {
	grid, err := c.source.Grid(name)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", name, err)
	}

	schema, rows := SynthesizeHeaders(grid, kind)
	c.logger.Debug("headers synthesized",
		slog.String("sheet", name),
		slog.String("kind", kind.String()),
		slog.Int("columns", len(schema)),
		slog.Int("rows", len(rows)))

	if reference, ok := c.reference[kind]; ok && kind.Designated() {
		rec := Reconcile(reference, schema)
		if !rec.OK() {
			violation := len(rec.Missing) > 0 || len(rec.Misspelled) > 0 ||
				(c.strictExtra && len(rec.Extra) > 0)
			if violation {
				c.logger.Error("schema reconciliation failed",
					slog.String("sheet", name),
					slog.String("kind", kind.String()),
					slog.String("outcome", rec.String()))
				return cerrors.SchemaViolation(name, rec)
			}
			// Extra columns only: persist as-is and keep going.
			report.Warnings = append(report.Warnings, SheetWarning{Sheet: name, Extra: rec.Extra})
			c.logger.Warn("schema has extra columns",
				slog.String("sheet", name),
				slog.String("kind", kind.String()),
				slog.String("outcome", rec.String()))
		}
	}

	if len(schema) == 0 {
		// A sheet with no columns has nothing to persist.
		report.Skipped = append(report.Skipped, name)
		c.logger.Warn("worksheet empty, skipped", slog.String("sheet", name))
		return nil
	}

	merged := MergeERF(NewTable(schema, rows))
	final := CoerceColumns(merged.Table)

	if err := c.writer.Replace(ctx, name, final); err != nil {
		return fmt.Errorf("persist sheet %q: %w", name, err)
	}
	report.Persisted = append(report.Persisted, name)
	return nil
}
