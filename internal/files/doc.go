// Package files provides workbook discovery for the converter's batch mode.
//
// Discovery finds the .xlsx workbooks in a directory, skipping Office lock
// files and legacy .xls files, and returns them in a stable name order so
// repeated batch runs process the same files in the same sequence.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/path/to/base")
//	workbooks, err := discovery.FindWorkbooks("data")
package files
