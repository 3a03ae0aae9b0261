package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved absolute paths the converter works with.
// Relative configured paths are ALWAYS resolved against the executable
// directory, never the current working directory, so the tool behaves the
// same wherever it is invoked from.
type Paths struct {
	ExecutableDir string
	DataDir       string
	LogsDir       string
	ReferenceFile string
}

// ResolvePaths turns the configured (possibly relative) paths into absolute
// ones anchored at the executable directory.
func (c *Config) ResolvePaths() (*Paths, error) {
	exeDir, err := executableDir()
	if err != nil {
		return nil, err
	}
	return &Paths{
		ExecutableDir: exeDir,
		DataDir:       resolveAgainst(exeDir, c.Paths.DataDir),
		LogsDir:       resolveAgainst(exeDir, c.Paths.LogsDir),
		ReferenceFile: resolveAgainst(exeDir, c.Paths.ReferenceFile),
	}, nil
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}
	return filepath.Dir(exe), nil
}

func resolveAgainst(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// EnsureDirectories creates the base directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.LogsDir,
	}
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}
	return nil
}

// GetLogPath returns the path for a log file.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogPathResolution logs the resolved paths for debugging.
func (p *Paths) LogPathResolution() {
	slog.Default().Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("logs", p.LogsDir),
		),
		slog.String("reference_file", p.ReferenceFile))
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
