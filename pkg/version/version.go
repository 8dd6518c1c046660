// Package version orders version and constraint strings the way Composer's
// runtime does (PHP's version_compare).
//
// # Ordering
//
// Strings are first canonicalised: '-', '_' and '+' become '.', a '.' is
// inserted wherever a run of digits meets a run of non-digits, and any other
// non-alphanumeric character collapses to '.'. The resulting segments are
// compared pairwise:
//
//   - two numeric segments compare as integers
//   - two word segments compare by special form:
//     unknown < dev < alpha = a < beta = b < RC = rc < # < pl = p
//   - a number beats every word except pl/p
//
// When one side runs out of segments, a remaining number makes the longer
// string greater ("1.0" < "1.0.0") and a remaining word is compared against a
// number ("1.0rc1" < "1.0").
//
// Constraint strings such as "^2.0" or ">=1.4 <2.0" are ordered with the same
// rules; operators collapse to word segments that compare equal to each other,
// so "^1.0" < "^1.5" < "^2.0".
package version

import (
	"slices"
	"strings"
)

// numberForm stands in for a numeric segment when it is compared against a word.
const numberForm = "#N#"

var specialForms = []struct {
	name  string
	order int
}{
	{"dev", 0},
	{"alpha", 1},
	{"a", 1},
	{"beta", 2},
	{"b", 2},
	{"RC", 3},
	{"rc", 3},
	{"#", 4},
	{"pl", 5},
	{"p", 5},
}

// Compare returns -1, 0 or +1 depending on whether a sorts before, equal to or
// after b.
func Compare(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}
	return compareSegments(segments(a), segments(b))
}

// Sort orders versions in place, lowest first. Equal elements keep their
// relative order.
func Sort(versions []string) {
	slices.SortStableFunc(versions, Compare)
}

// Max returns the greatest of versions, or false when versions is empty.
func Max(versions []string) (string, bool) {
	if len(versions) == 0 {
		return "", false
	}
	sorted := slices.Clone(versions)
	Sort(sorted)
	return sorted[len(sorted)-1], true
}

func segments(v string) []string {
	if strings.HasPrefix(v, "#") {
		return strings.Split(v, ".")
	}
	return strings.Split(canonicalize(v), ".")
}

func compareSegments(a, b []string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := compareSegment(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) > n:
		return compareTail(a[n:])
	case len(b) > n:
		return -compareTail(b[n:])
	}
	return 0
}

// compareTail compares the leftover segments of the longer string against
// an implicit number.
func compareTail(rest []string) int {
	for _, seg := range rest {
		if isDigit(first(seg)) {
			return 1
		}
		if c := compareForms(seg, numberForm); c != 0 {
			return c
		}
	}
	return 0
}

func compareSegment(a, b string) int {
	da, db := isDigit(first(a)), isDigit(first(b))
	switch {
	case da && db:
		return compareNumbers(a, b)
	case !da && !db:
		return compareForms(a, b)
	case da:
		return compareForms(numberForm, b)
	default:
		return compareForms(a, numberForm)
	}
}

// compareNumbers compares the leading digit runs of a and b as unbounded
// integers.
func compareNumbers(a, b string) int {
	a = strings.TrimLeft(leadingDigits(a), "0")
	b = strings.TrimLeft(leadingDigits(b), "0")
	if len(a) != len(b) {
		return sign(len(a) - len(b))
	}
	return strings.Compare(a, b)
}

func compareForms(a, b string) int {
	return sign(formOrder(a) - formOrder(b))
}

func formOrder(s string) int {
	for _, f := range specialForms {
		if strings.HasPrefix(s, f.name) {
			return f.order
		}
	}
	return -1
}

func canonicalize(v string) string {
	if v == "" {
		return ""
	}
	out := make([]byte, 0, len(v)*2)
	out = append(out, v[0])
	prev := v[0]
	for i := 1; i < len(v); i++ {
		c := v[i]
		switch {
		case c == '-' || c == '_' || c == '+':
			out = appendDot(out)
		case (isNonDigit(prev) && isDigit(c)) || (isDigit(prev) && isNonDigit(c)):
			out = appendDot(out)
			out = append(out, c)
		case !isAlnum(c):
			out = appendDot(out)
		default:
			out = append(out, c)
		}
		prev = c
	}
	return string(out)
}

func appendDot(b []byte) []byte {
	if b[len(b)-1] != '.' {
		return append(b, '.')
	}
	return b
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i]
}

func first(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}

func isDigit(c byte) bool    { return c >= '0' && c <= '9' }
func isNonDigit(c byte) bool { return !isDigit(c) && c != '.' }

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
