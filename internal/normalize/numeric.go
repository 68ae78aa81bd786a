package normalize

import "regexp"

// Small instruction models are known to emit numeric literals with
// thousands-separators left in (e.g. `"total_amount": 169,050.28`), which is
// invalid JSON. Two escalating best-effort repairs run before parsing is
// declared failed; a full JSON-repair grammar would be out of proportion to
// the problem.

// narrowSeparator matches a comma splitting an unquoted number at a JSON
// value position: the digits follow a colon, comma or opening bracket, and
// the comma is followed by exactly three digits (the usual two/three-group
// thousands pattern).
var narrowSeparator = regexp.MustCompile(`([:\[,]\s*-?\d{1,3}),(\d{3})`)

// digitComma matches any comma directly between two digits, regardless of
// position — including inside quoted strings.
var digitComma = regexp.MustCompile(`(\d),(\d)`)

// repairNarrow strips thousands-separators from unquoted numbers at JSON
// value positions, leaving string content untouched.
func repairNarrow(s string) string {
	for {
		repaired := narrowSeparator.ReplaceAllString(s, "$1$2")
		if repaired == s {
			return repaired
		}
		s = repaired
	}
}

// repairAggressive strips every digit-adjacent comma. This can mangle
// legitimate comma-separated digits inside strings; it only runs when the
// narrow pass still fails to produce parseable JSON.
func repairAggressive(s string) string {
	for {
		repaired := digitComma.ReplaceAllString(s, "$1$2")
		if repaired == s {
			return repaired
		}
		s = repaired
	}
}
