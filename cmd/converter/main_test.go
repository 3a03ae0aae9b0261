package main

import (
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tallycli/internal/dataprocessing"
	cerrors "tallycli/internal/errors"
	"tallycli/internal/shared/testutil"
	"tallycli/internal/store"
	"tallycli/internal/validation"
)

type fixtureSheet struct {
	name string
	rows [][]string
}

// writeWorkbook writes cells sparsely: blank rows and cells stay genuinely
// absent from the file, so reads see the ragged shape real exports have.
func writeWorkbook(t *testing.T, path string, sheets []fixtureSheet) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for _, sheet := range sheets {
		_, err := f.NewSheet(sheet.name)
		require.NoError(t, err)
		for r, row := range sheet.rows {
			for c, value := range row {
				if value == "" {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(sheet.name, cell, value))
			}
		}
	}
	f.DeleteSheet("Sheet1")
	require.NoError(t, f.SaveAs(path))
}

func writeReferenceWorkbook(t *testing.T, path string) {
	t.Helper()
	writeWorkbook(t, path, []fixtureSheet{
		{name: "Pipe Tally", rows: [][]string{
			{"Log distance [m]", "Feature type", "Max. depth [%]", "Comments"},
		}},
		{name: "Wall Thickness", rows: [][]string{
			{"Log distance [m]", "Wall thickness [mm]"},
		}},
	})
}

// writeInspectionWorkbook writes a minimal valid input workbook: both
// designated sheets, each with the blank grouping row real exports carry
// above the header row.
func writeInspectionWorkbook(t *testing.T, path string) {
	t.Helper()
	writeWorkbook(t, path, []fixtureSheet{
		{name: "Pipe Tally", rows: [][]string{
			{},
			{"Log distance [m]", "Feature type", "Max. depth [%]", "Remarks"},
			{"1.23456", "weld", "45.27", "ok"},
			{"2.5", "bend", "12.0", "checked"},
		}},
		{name: "Wall Thickness List", rows: [][]string{
			{},
			{"Log distance [m]", "Wall thickness [mm]"},
			{"0.5", "12.7"},
		}},
	})
}

func loadTestReference(t *testing.T, dir string) dataprocessing.ReferenceSchemas {
	t.Helper()
	path := filepath.Join(dir, "headers.xlsx")
	writeReferenceWorkbook(t, path)
	schemas, err := loadReference(path)
	require.NoError(t, err)
	return schemas
}

// captureStdout returns everything fn printed to stdout. The completion
// messages and PROGRESS lines are a protocol for whatever wraps the
// converter, so tests assert them verbatim.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func tableNames(t *testing.T, path string) []string {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestLoadReference(t *testing.T) {
	t.Run("loads both designated kinds", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "headers.xlsx")
		writeReferenceWorkbook(t, path)

		schemas, err := loadReference(path)
		require.NoError(t, err)
		assert.Equal(t,
			dataprocessing.Schema{"Log distance [m]", "Feature type", "Max. depth [%]", "Comments"},
			schemas[dataprocessing.KindPipeTally])
		assert.Equal(t,
			dataprocessing.Schema{"Log distance [m]", "Wall thickness [mm]"},
			schemas[dataprocessing.KindWallThickness])
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadReference(filepath.Join(t.TempDir(), "absent.xlsx"))
		require.Error(t, err)
		assert.True(t, cerrors.IsCode(err, cerrors.CodeConfiguration))
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("unreadable file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "headers.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0644))

		_, err := loadReference(path)
		require.Error(t, err)
		assert.True(t, cerrors.IsCode(err, cerrors.CodeConfiguration))
		assert.Contains(t, err.Error(), "cannot open reference workbook")
	})

	t.Run("incomplete reference", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "headers.xlsx")
		writeWorkbook(t, path, []fixtureSheet{
			{name: "Pipe Tally", rows: [][]string{
				{"Log distance [m]", "Feature type", "Max. depth [%]", "Comments"},
			}},
		})

		_, err := loadReference(path)
		require.Error(t, err)
		assert.True(t, cerrors.IsCode(err, cerrors.CodeConfiguration))
		assert.Contains(t, err.Error(), "wall thickness")
	})
}

func TestRunFileConvertsWorkbook(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "Run 4 Pipe Tally.xlsx")
	writeInspectionWorkbook(t, input)

	logger, captured := testutil.NewCaptureLogger()
	opts := dataprocessing.Options{
		Reference:  loadTestReference(t, dir),
		OnProgress: printProgress,
		Logger:     logger,
	}

	var code int
	out := captureStdout(t, func() {
		code = runFile(context.Background(), logger, validation.NewFileValidator(logger), input, opts)
	})
	require.Equal(t, 0, code)

	dbPath := store.OutputPath(input)
	assert.Equal(t, filepath.Join(dir, "Run 4 Pipe Tally.db"), dbPath)
	assert.Equal(t,
		"PROGRESS:50\n"+
			"PROGRESS:100\n"+
			"Excel file "+input+" has been successfully converted to "+dbPath+".\n"+
			"Conversion completed successfully.\n",
		out)
	assert.Equal(t, []string{"Pipe Tally", "Wall Thickness List"}, tableNames(t, dbPath))
	assert.True(t, captured.Has("conversion finished"))

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT "Log distance [m]" FROM "Pipe Tally" ORDER BY "Log distance [m]"`)
	require.NoError(t, err)
	defer rows.Close()

	var distances []float64
	for rows.Next() {
		var d float64
		require.NoError(t, rows.Scan(&d))
		distances = append(distances, d)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []float64{1.235, 2.5}, distances)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "Wall Thickness List"`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRunFileFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string) string
	}{
		{
			name: "missing input",
			setup: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "absent.xlsx")
			},
		},
		{
			name: "wrong extension",
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "notes.txt")
				require.NoError(t, os.WriteFile(path, []byte("text"), 0644))
				return path
			},
		},
		{
			name: "office lock file",
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "~$tally.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("lock"), 0644))
				return path
			},
		},
		{
			name: "corrupt workbook",
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "broken.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0644))
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			input := tt.setup(t, dir)

			logger, _ := testutil.NewCaptureLogger()
			opts := dataprocessing.Options{
				Reference: loadTestReference(t, dir),
				Logger:    logger,
			}

			code := runFile(context.Background(), logger, validation.NewFileValidator(logger), input, opts)
			assert.Equal(t, 1, code)

			// A workbook that never opened must not leave a database behind.
			_, err := os.Stat(store.OutputPath(input))
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestRunFileSchemaViolation(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "tally.xlsx")
	writeWorkbook(t, input, []fixtureSheet{
		{name: "Pipe Tally", rows: [][]string{
			{},
			{"Log distance [m]", "Feature type", "Remarks"},
			{"1.0", "weld", "ok"},
		}},
		{name: "Wall Thickness List", rows: [][]string{
			{},
			{"Log distance [m]", "Wall thickness [mm]"},
			{"0.5", "12.7"},
		}},
	})

	logger, captured := testutil.NewCaptureLogger()
	opts := dataprocessing.Options{
		Reference: loadTestReference(t, dir),
		Logger:    logger,
	}

	code := runFile(context.Background(), logger, validation.NewFileValidator(logger), input, opts)
	assert.Equal(t, 1, code)
	assert.True(t, captured.Has("schema reconciliation failed"))

	// The database is created before the pipeline runs, so an aborted first
	// sheet leaves it present but empty and the later sheet untouched.
	dbPath := store.OutputPath(input)
	_, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.Empty(t, tableNames(t, dbPath))
}

func TestRunFileUnwritableOutputDir(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "tally.xlsx")
	writeInspectionWorkbook(t, input)
	reference := loadTestReference(t, t.TempDir())

	require.NoError(t, os.Chmod(dir, 0555))
	t.Cleanup(func() { os.Chmod(dir, 0755) })
	if f, err := os.Create(filepath.Join(dir, "w")); err == nil {
		f.Close()
		os.Remove(filepath.Join(dir, "w"))
		t.Skip("directory permissions not enforced on this system")
	}

	logger, captured := testutil.NewCaptureLogger()
	opts := dataprocessing.Options{
		Reference: reference,
		Logger:    logger,
	}

	code := runFile(context.Background(), logger, validation.NewFileValidator(logger), input, opts)
	assert.Equal(t, 1, code)
	assert.True(t, captured.Has("Output directory is not writable"))

	_, err := os.Stat(store.OutputPath(input))
	assert.True(t, os.IsNotExist(err))
}

func TestRunFileNonFatalFindings(t *testing.T) {
	// Extra columns and a missing designated sheet are reported but never
	// fail the run.
	dir := t.TempDir()
	input := filepath.Join(dir, "tally.xlsx")
	writeWorkbook(t, input, []fixtureSheet{
		{name: "Pipe Tally", rows: [][]string{
			{},
			{"Log distance [m]", "Feature type", "Max. depth [%]", "Operator remarks", "Remarks"},
			{"1.0", "weld", "45", "checked", "ok"},
		}},
	})

	logger, captured := testutil.NewCaptureLogger()
	opts := dataprocessing.Options{
		Reference:  loadTestReference(t, dir),
		OnProgress: printProgress,
		Logger:     logger,
	}

	var code int
	out := captureStdout(t, func() {
		code = runFile(context.Background(), logger, validation.NewFileValidator(logger), input, opts)
	})
	assert.Equal(t, 0, code)
	assert.True(t, captured.Has("Sheet persisted with extra columns"))
	assert.True(t, captured.Has("Designated sheets missing"))

	// The extra-column warning stays off stdout, while the missing-sheet
	// advisory prints as an error message without failing the run.
	dbPath := store.OutputPath(input)
	assert.Equal(t,
		"PROGRESS:100\n"+
			"Excel file "+input+" has been successfully converted to "+dbPath+".\n"+
			"Error: input workbook has no wall thickness sheet\n"+
			"Conversion completed successfully.\n",
		out)
	assert.Equal(t, []string{"Pipe Tally"}, tableNames(t, dbPath))
}

func TestRunDirectory(t *testing.T) {
	t.Run("converts every workbook", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"a.xlsx", "b.xlsx", "c.xlsx"} {
			writeInspectionWorkbook(t, filepath.Join(dir, name))
		}
		// Office lock files and legacy .xls files are skipped by discovery.
		require.NoError(t, os.WriteFile(filepath.Join(dir, "~$a.xlsx"), []byte("lock"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "legacy.xls"), []byte("old format"), 0644))

		logger, _ := testutil.NewCaptureLogger()
		opts := dataprocessing.Options{
			Reference: loadTestReference(t, t.TempDir()),
			Logger:    logger,
		}

		code := runDirectory(context.Background(), logger, validation.NewFileValidator(logger), dir, opts)
		assert.Equal(t, 0, code)

		for _, name := range []string{"a.db", "b.db", "c.db"} {
			_, err := os.Stat(filepath.Join(dir, name))
			assert.NoError(t, err, name)
		}
		for _, name := range []string{"~$a.db", "legacy.db"} {
			_, err := os.Stat(filepath.Join(dir, name))
			assert.True(t, os.IsNotExist(err), name)
		}
	})

	t.Run("keeps going past a failing workbook", func(t *testing.T) {
		dir := t.TempDir()
		writeInspectionWorkbook(t, filepath.Join(dir, "a.xlsx"))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.xlsx"), []byte("not a zip archive"), 0644))
		writeInspectionWorkbook(t, filepath.Join(dir, "c.xlsx"))

		logger, captured := testutil.NewCaptureLogger()
		opts := dataprocessing.Options{
			Reference: loadTestReference(t, t.TempDir()),
			Logger:    logger,
		}

		code := runDirectory(context.Background(), logger, validation.NewFileValidator(logger), dir, opts)
		assert.Equal(t, 1, code)
		assert.True(t, captured.Has("Conversion failed"))

		_, err := os.Stat(filepath.Join(dir, "a.db"))
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(dir, "b.db"))
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(filepath.Join(dir, "c.db"))
		assert.NoError(t, err)
	})

	t.Run("missing directory", func(t *testing.T) {
		logger, _ := testutil.NewCaptureLogger()
		opts := dataprocessing.Options{
			Reference: loadTestReference(t, t.TempDir()),
			Logger:    logger,
		}

		code := runDirectory(context.Background(), logger, validation.NewFileValidator(logger),
			filepath.Join(t.TempDir(), "absent"), opts)
		assert.Equal(t, 1, code)
	})

	t.Run("empty directory", func(t *testing.T) {
		logger, _ := testutil.NewCaptureLogger()
		opts := dataprocessing.Options{
			Reference: loadTestReference(t, t.TempDir()),
			Logger:    logger,
		}

		code := runDirectory(context.Background(), logger, validation.NewFileValidator(logger), t.TempDir(), opts)
		assert.Equal(t, 0, code)
	})
}
