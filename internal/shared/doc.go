// Package shared holds utilities used across the converter that belong to
// no single domain package.
//
// The testutil subpackage provides an in-memory slog handler so tests can
// assert on the structured log records the pipeline emits. It must never be
// imported outside _test.go files.
package shared
