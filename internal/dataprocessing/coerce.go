package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CoerceColumns applies the per-column value policies and returns a new
// table. Recognized measurement columns get their numeric rounding and
// formatting rules, every other column is normalized to a nullable string.
// Missing designated columns are simply absent from the schema and cost
// nothing; cells that fail numeric parsing under a numeric policy become
// null rather than aborting the conversion.
func CoerceColumns(tbl Table) Table {
	policies := make([]func(any) any, len(tbl.Columns))
	for i, name := range tbl.Columns {
		policies[i] = policyFor(name)
	}

	rows := make([][]any, len(tbl.Rows))
	for r, row := range tbl.Rows {
		cells := make([]any, len(row))
		for c, v := range row {
			cells[c] = policies[c](v)
		}
		rows[r] = cells
	}
	return Table{Columns: tbl.Columns.Clone(), Rows: rows}
}

func policyFor(column string) func(any) any {
	switch {
	case column == logDistanceColumn:
		return coerceLogDistance
	case column == maxDepthPercentColumn:
		return coerceMaxDepthPercent
	case containsHeader(threeDecimalColumns, column):
		return coerceThreeDecimal
	case containsHeader(twoDecimalColumns, column):
		return coerceTwoDecimal
	case containsHeader(integerColumns, column):
		return coerceInteger
	default:
		return coerceGeneric
	}
}

// coerceLogDistance keeps the log distance numeric: parsed, rounded to
// three decimals, stored as a float64. The only column that stays a number.
func coerceLogDistance(v any) any {
	f, ok := cellFloat(v)
	if !ok {
		return nil
	}
	return roundTo(f, 3)
}

func coerceThreeDecimal(v any) any {
	f, ok := cellFloat(v)
	if !ok {
		return nil
	}
	return fmt.Sprintf("%.3f", roundTo(f, 3))
}

// coerceTwoDecimal rounds to two decimals with a compensation step: naive
// scaling by 100 drops some *.xx5 values a binary float stores just below
// the tie, so when the true three-decimal rounding runs ahead of the scaled
// result by a full thousandth, the result is bumped one cent. 12.005 must
// come out "12.01", not "12.00".
func coerceTwoDecimal(v any) any {
	f, ok := cellFloat(v)
	if !ok {
		return nil
	}
	rounded := math.Round(f*100) / 100
	if roundTo(f, 3)-rounded >= 0.001 {
		rounded += 0.01
	}
	return fmt.Sprintf("%.2f", roundTo(rounded, 2))
}

// coerceMaxDepthPercent renders depth percentages with at most one decimal:
// values carrying more precision collapse to a whole-number string, values
// already at 0 or 1 decimals keep their precision ("45.0" stays "45.0").
// Non-numeric text passes through untouched; non-finite values read as
// null, never as text.
func coerceMaxDepthPercent(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		if !isFinite(x) {
			return nil
		}
		return formatMaxDepthPercent(x)
	case string:
		if x == "" {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return x
		}
		if !isFinite(f) {
			return nil
		}
		return formatMaxDepthPercent(f)
	default:
		return fmt.Sprint(v)
	}
}

func formatMaxDepthPercent(f float64) string {
	if math.Abs(f-roundTo(f, 1)) > 0.00001 {
		return strconv.FormatFloat(math.Round(f), 'f', -1, 64)
	}
	if f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// coerceInteger rounds half away from zero: 2.5 becomes "3", 2.49 becomes
// "2".
func coerceInteger(v any) any {
	f, ok := cellFloat(v)
	if !ok {
		return nil
	}
	return strconv.FormatInt(int64(math.Round(f)), 10)
}

// coerceGeneric normalizes everything else to a nullable string. The
// literal forms "nan" and "None" are spreadsheet debris from upstream
// exports and read as null.
func coerceGeneric(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if x == "" || x == "nan" || x == "None" {
			return nil
		}
		return x
	default:
		return fmt.Sprint(v)
	}
}

// cellFloat parses a cell under numeric policy. Anything unparsable or
// non-finite reports false and ends up null.
func cellFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		if !isFinite(x) {
			return 0, false
		}
		return x, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || !isFinite(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// isFinite guards the numeric policies: ParseFloat accepts "nan" and "inf"
// spellings, which are upstream export debris, not measurements.
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func roundTo(f float64, decimals int) float64 {
	shift := math.Pow(10, float64(decimals))
	return math.Round(f*shift) / shift
}
