// Package dataprocessing implements the conversion pipeline that turns raw
// inspection worksheets into finalized tables ready for the store.
//
// The pipeline runs per worksheet, strictly in workbook order:
//
// Header synthesis: the two-row composite header block is forward-filled
// and collapsed into a unique column schema (SynthesizeHeaders); the
// reference workbook's plain one-row headers go through SingleRowHeaders
// instead.
//
// Reconciliation: worksheets of the two designated kinds (pipe tally and
// wall thickness, recognized by name) are compared against the reference
// schema loaded once at startup. Reconcile classifies differences as
// missing, misspelled, or genuinely extra using a deliberately cheap
// positional near-match.
//
// ERF merge: the two alternative ERF measurement columns collapse into a
// single ERF column plus a transient per-row provenance flag (MergeERF).
//
// Coercion: CoerceColumns applies the per-column rounding and formatting
// policies and normalizes everything else to nullable strings.
//
// The Converter sequences these stages, gates persistence on the
// reconciliation outcome (missing or misspelled columns abort the run,
// extra columns warn), reports progress after each worksheet, and flags
// designated kinds that never occurred.
//
// Every stage takes a Table and returns a new one; nothing mutates a table
// in place.
package dataprocessing
