package dataprocessing

import (
	"fmt"
	"strings"
)

// Reconciliation classifies the differences between a candidate schema and
// the reference schema for its sheet kind. The three sets are disjoint:
// Missing names exist only in the reference with no near-match in the
// candidate, Misspelled names exist only in the candidate but near-match a
// reference name, Extra names exist only in the candidate and match
// nothing.
type Reconciliation struct {
	Missing    []string
	Misspelled []string
	Extra      []string
}

// OK reports whether the candidate matched the reference exactly.
func (r Reconciliation) OK() bool {
	return len(r.Missing) == 0 && len(r.Misspelled) == 0 && len(r.Extra) == 0
}

// String renders the outcome the way the conversion reports it: "OK" for a
// clean match, otherwise "HAVE ERROR" with the offending names.
func (r Reconciliation) String() string {
	if r.OK() {
		return "OK"
	}
	var b strings.Builder
	b.WriteString("HAVE ERROR")
	if len(r.Missing) > 0 {
		fmt.Fprintf(&b, "; missing: %s", strings.Join(r.Missing, ", "))
	}
	if len(r.Misspelled) > 0 {
		fmt.Fprintf(&b, "; misspelled: %s", strings.Join(r.Misspelled, ", "))
	}
	if len(r.Extra) > 0 {
		fmt.Fprintf(&b, "; extra: %s", strings.Join(r.Extra, ", "))
	}
	return b.String()
}

// Reconcile compares a candidate schema against the reference schema.
// Classification works on exact-string set differences first, then explains
// leftovers by near-matching: a candidate-only name that near-matches any
// reference name is a misspelling of it, and a reference-only name that
// near-matches any candidate name is not missing (the misspelling already
// accounts for it). Output order follows the input schemas, so reports are
// deterministic.
func Reconcile(reference, candidate Schema) Reconciliation {
	var rec Reconciliation

	inReference := make(map[string]struct{}, len(reference))
	for _, name := range reference {
		inReference[name] = struct{}{}
	}
	inCandidate := make(map[string]struct{}, len(candidate))
	for _, name := range candidate {
		inCandidate[name] = struct{}{}
	}

	for _, name := range candidate {
		if _, ok := inReference[name]; ok {
			continue
		}
		if nearMatchesAny(name, reference) {
			rec.Misspelled = append(rec.Misspelled, name)
		} else {
			rec.Extra = append(rec.Extra, name)
		}
	}

	for _, name := range reference {
		if _, ok := inCandidate[name]; ok {
			continue
		}
		if !nearMatchesAny(name, candidate) {
			rec.Missing = append(rec.Missing, name)
		}
	}

	return rec
}

func nearMatchesAny(name string, names Schema) bool {
	for _, other := range names {
		if nearMatch(name, other) {
			return true
		}
	}
	return false
}

// nearMatch is the cheap positional proxy for edit distance used by the
// reconciliation: at most two differing characters at aligned positions
// over the shorter length, and a length difference of at most two. It is
// not Levenshtein distance: an insertion that shifts alignment makes the
// remainder of the prefix disagree. That weakness is part of the contract,
// so keep it.
func nearMatch(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	lenDiff := len(ra) - len(rb)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > 2 {
		return false
	}

	n := len(ra)
	if len(rb) < n {
		n = len(rb)
	}
	diff := 0
	for i := 0; i < n; i++ {
		if ra[i] != rb[i] {
			diff++
			if diff > 2 {
				return false
			}
		}
	}
	return true
}
