// Package version implements the total ordering over browser version strings
// and ranges used by every other stage of the pipeline. Malformed input never
// fails: unparseable parts degrade to 0 so a single odd version string cannot
// abort a whole run.
package version

import (
	"strconv"
	"strings"
)

// latestTokens are sentinel versions that compare greater than any numeric
// version (preview/nightly channels).
var latestTokens = map[string]bool{
	"current": true,
	"latest":  true,
	"preview": true,
	"tp":      true,
	"nightly": true,
}

// allToken is the sentinel meaning "all versions"; it compares less than any
// numeric version.
const allToken = "all"

// IsLatest reports whether v is a preview/latest sentinel.
func IsLatest(v string) bool {
	return latestTokens[strings.ToLower(strings.TrimSpace(v))]
}

// IsAll reports whether v is the "all versions" sentinel.
func IsAll(v string) bool {
	return strings.ToLower(strings.TrimSpace(v)) == allToken
}

// Compare returns -1, 0 or 1 ordering a against b.
func Compare(a, b string) int {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == b {
		return 0
	}

	aLatest, bLatest := IsLatest(a), IsLatest(b)
	if aLatest && bLatest {
		return 0
	}
	if aLatest {
		return 1
	}
	if bLatest {
		return -1
	}

	aAll, bAll := IsAll(a), IsAll(b)
	if aAll && bAll {
		return 0
	}
	if aAll {
		return -1
	}
	if bAll {
		return 1
	}

	ap, bp := parts(a), parts(b)
	n := len(ap)
	if len(bp) > n {
		n = len(bp)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(ap) {
			av = ap[i]
		}
		if i < len(bp) {
			bv = bp[i]
		}
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}

// parts splits a version on '.' and '-' into numeric components. Non-numeric
// components coerce to 0.
func parts(v string) []int {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == '.' || r == '-'
	})
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			n = 0
		}
		out = append(out, n)
	}
	return out
}

// SplitRange splits a version range into its start and end. A single version
// is its own start and end.
func SplitRange(rng string) (start, end string) {
	rng = strings.TrimSpace(rng)
	if i := strings.Index(rng, "-"); i > 0 && i < len(rng)-1 {
		return rng[:i], rng[i+1:]
	}
	return rng, rng
}

// IsRange reports whether rng denotes a start-end range rather than a single
// version.
func IsRange(rng string) bool {
	s, e := SplitRange(rng)
	return s != e
}

// InRange reports whether v falls inside rng. A single-version range is an
// equality check; a start-end range is inclusive membership.
func InRange(v, rng string) bool {
	start, end := SplitRange(rng)
	if start == end {
		return Compare(v, start) == 0
	}
	return Compare(v, start) >= 0 && Compare(v, end) <= 0
}

// Num reduces a version string to a float for proportional interpolation.
// The first two numeric parts become the integer and fractional components;
// sentinels and garbage reduce to 0.
func Num(v string) float64 {
	v = strings.TrimSpace(v)
	if IsLatest(v) || IsAll(v) {
		return 0
	}
	p := parts(v)
	if len(p) == 0 {
		return 0
	}
	out := float64(p[0])
	if len(p) > 1 {
		frac := float64(p[1])
		div := 10.0
		for frac >= div {
			div *= 10
		}
		out += frac / div
	}
	return out
}
