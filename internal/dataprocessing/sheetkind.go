package dataprocessing

import "strings"

// SheetKind is the semantic role of a worksheet. Only the two designated
// kinds are reconciled against the reference schema; everything else passes
// through unvalidated.
type SheetKind int

const (
	// KindGeneral is any worksheet that is not one of the designated kinds.
	KindGeneral SheetKind = iota
	// KindPipeTally is the primary measurement list.
	KindPipeTally
	// KindWallThickness is the nominal wall-thickness list. Its rightmost
	// column is a real data column, so the forced-Comments rule is skipped.
	KindWallThickness
)

// RecognizeSheetKind classifies a worksheet by name, case-insensitively.
func RecognizeSheetKind(name string) SheetKind {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(n, "pipe tally"), strings.Contains(n, "pipetally"):
		return KindPipeTally
	case strings.Contains(n, "wall thickness"), strings.Contains(n, "wt list"):
		return KindWallThickness
	default:
		return KindGeneral
	}
}

// Designated reports whether the kind participates in schema reconciliation.
func (k SheetKind) Designated() bool {
	return k == KindPipeTally || k == KindWallThickness
}

func (k SheetKind) String() string {
	switch k {
	case KindPipeTally:
		return "pipe tally"
	case KindWallThickness:
		return "wall thickness"
	default:
		return "general"
	}
}

// DesignatedKinds lists the kinds that require a reference schema, in
// reporting order.
func DesignatedKinds() []SheetKind {
	return []SheetKind{KindPipeTally, KindWallThickness}
}
