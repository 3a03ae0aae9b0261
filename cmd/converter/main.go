package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"tallycli/internal/config"
	"tallycli/internal/dataprocessing"
	cerrors "tallycli/internal/errors"
	"tallycli/internal/excel"
	"tallycli/internal/files"
	"tallycli/internal/infrastructure"
	"tallycli/internal/store"
	"tallycli/internal/validation"
)

func main() {
	dir := flag.String("dir", "", "convert every Excel workbook directly inside this directory instead of a single file")
	reference := flag.String("reference", "", "reference headers workbook (defaults to paths.reference_file from config)")
	configFile := flag.String("config", "", "config file path (defaults to config.yaml, then configs/config.yaml)")
	flag.Parse()

	input := flag.Arg(0)
	if input == "" && *dir == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s [-dir folder] [-reference workbook] [-config file] <workbook.xlsx>\n",
			filepath.Base(os.Args[0]))
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		// An explicitly requested config file must load; the implicit
		// search is allowed to fall back to the defaults.
		if *configFile != "" {
			slog.Error("Failed to load config", "error", err)
			os.Exit(1)
		}
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		slog.Error("Failed to resolve paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// The log file is executable-relative like every other configured path.
	if !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = filepath.Join(paths.ExecutableDir, cfg.Logging.FilePath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	ctx := infrastructure.WithRunID(context.Background(), uuid.New().String())

	logger.InfoContext(ctx, "Starting conversion",
		slog.String("input", input),
		slog.String("dir", *dir),
		slog.String("executable_dir", paths.ExecutableDir),
		slog.Bool("strict_extra", cfg.Conversion.StrictExtra))
	paths.LogPathResolution()

	referenceFile := *reference
	if referenceFile == "" {
		referenceFile = paths.ReferenceFile
	}
	schemas, err := loadReference(referenceFile)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load reference schemas",
			slog.String("path", referenceFile),
			slog.String("error", err.Error()))
		fmt.Printf("Error: %v\n", err)
		fmt.Println("Conversion completed with errors.")
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Reference schemas loaded", slog.String("path", referenceFile))

	opts := dataprocessing.Options{
		Reference:   schemas,
		StrictExtra: cfg.Conversion.StrictExtra,
		OnProgress:  printProgress,
		Logger:      infrastructure.LoggerFromContext(ctx),
	}
	validator := validation.NewFileValidator(logger)

	if *dir != "" {
		os.Exit(runDirectory(ctx, logger, validator, *dir, opts))
	}
	os.Exit(runFile(ctx, logger, validator, input, opts))
}

// printProgress emits one machine-readable PROGRESS line per completed
// worksheet for whatever wraps the converter.
func printProgress(percent int) {
	fmt.Printf("PROGRESS:%d\n", percent)
}

// runFile converts a single workbook and prints the completion line. The
// returned value is the process exit code.
func runFile(ctx context.Context, logger *slog.Logger, v *validation.FileValidator, input string, opts dataprocessing.Options) int {
	if !config.FileExists(input) {
		err := cerrors.InputNotFound(input)
		logger.ErrorContext(ctx, "Input workbook missing", slog.String("error", err.Error()))
		fmt.Printf("Error: The file %s does not exist.\n", input)
		fmt.Println("Conversion completed with errors.")
		return 1
	}
	if err := v.ValidateExcelFile(input); err != nil {
		logger.ErrorContext(ctx, "Input validation failed",
			slog.String("input", input),
			slog.String("error", err.Error()))
		fmt.Printf("Error: %v\n", err)
		fmt.Println("Conversion completed with errors.")
		return 1
	}

	if err := convertOne(ctx, logger, v, input, opts); err != nil {
		logger.ErrorContext(ctx, "Conversion failed",
			slog.String("input", input),
			slog.String("error", err.Error()))
		fmt.Printf("Error: %v\n", err)
		fmt.Println("Conversion completed with errors.")
		return 1
	}
	fmt.Println("Conversion completed successfully.")
	return 0
}

// runDirectory converts every workbook directly inside dir, each to its own
// database next to the source file. A failing workbook does not stop the
// rest; the exit code reports whether any failed.
func runDirectory(ctx context.Context, logger *slog.Logger, v *validation.FileValidator, dir string, opts dataprocessing.Options) int {
	if err := v.ValidateInputDirectory(dir, "*.xlsx"); err != nil {
		logger.ErrorContext(ctx, "Input directory validation failed",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
		fmt.Printf("Error: %v\n", err)
		fmt.Println("Conversion completed with errors.")
		return 1
	}

	workbooks, err := files.NewDiscovery("").FindWorkbooks(dir)
	if err != nil {
		logger.ErrorContext(ctx, "Workbook discovery failed",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
		fmt.Printf("Error: %v\n", err)
		fmt.Println("Conversion completed with errors.")
		return 1
	}
	logger.InfoContext(ctx, "Excel files found",
		slog.String("dir", dir),
		slog.Int("count", len(workbooks)))
	fmt.Printf("Found %d Excel files\n", len(workbooks))

	failed := 0
	for _, wb := range workbooks {
		if err := convertOne(ctx, logger, v, wb.Path, opts); err != nil {
			failed++
			logger.ErrorContext(ctx, "Conversion failed",
				slog.String("input", wb.Path),
				slog.String("error", err.Error()))
			fmt.Printf("Error: %v\n", err)
			fmt.Println("Conversion completed with errors.")
			continue
		}
		fmt.Println("Conversion completed successfully.")
	}

	logger.InfoContext(ctx, "Directory conversion finished",
		slog.Int("workbooks", len(workbooks)),
		slog.Int("failed", failed))
	if failed > 0 {
		return 1
	}
	return 0
}

// convertOne runs the pipeline for one workbook. The output database is only
// created once the workbook itself opens cleanly and its directory proves
// writable, so a bad input never leaves an empty .db behind.
func convertOne(ctx context.Context, logger *slog.Logger, v *validation.FileValidator, input string, opts dataprocessing.Options) error {
	wb, err := excel.Open(input)
	if err != nil {
		return err
	}
	defer wb.Close()

	output := store.OutputPath(input)
	if err := v.ValidateOutputDirectory(filepath.Dir(output)); err != nil {
		return err
	}

	st, err := store.Open(output)
	if err != nil {
		return err
	}
	defer st.Close()

	logger.InfoContext(ctx, "Converting workbook",
		slog.String("input", input),
		slog.String("output", st.Path()),
		slog.Int("sheets", len(wb.SheetNames())))

	report, err := dataprocessing.NewConverter(wb, st, opts).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Excel file %s has been successfully converted to %s.\n", input, st.Path())

	for _, w := range report.Warnings {
		warning := cerrors.SchemaWarning(w.Sheet, w.Extra)
		logger.WarnContext(ctx, "Sheet persisted with extra columns",
			slog.String("sheet", w.Sheet),
			slog.String("error", warning.Error()))
	}

	if len(report.MissingKinds) > 0 {
		names := make([]string, len(report.MissingKinds))
		for i, kind := range report.MissingKinds {
			names[i] = kind.String()
		}
		advisory := cerrors.MissingDesignatedSheet(names)
		logger.WarnContext(ctx, "Designated sheets missing", slog.String("error", advisory.Error()))
		fmt.Printf("Error: %v\n", advisory)
	}
	return nil
}

// loadReference opens the reference workbook and loads the per-kind schemas
// designated sheets reconcile against.
func loadReference(path string) (dataprocessing.ReferenceSchemas, error) {
	if !config.FileExists(path) {
		return nil, cerrors.Configuration(fmt.Sprintf("reference workbook %s does not exist", path), nil)
	}
	wb, err := excel.Open(path)
	if err != nil {
		return nil, cerrors.Configuration("cannot open reference workbook", err)
	}
	defer wb.Close()
	return dataprocessing.LoadReferenceSchemas(wb)
}
