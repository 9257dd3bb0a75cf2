package merge

import (
	"strings"

	"github.com/featwatch/featwatch/pkg/feature"
)

// sourcePrefixes are the id prefixes added when a supplementary record is
// inserted as a brand-new feature. Stripped before id comparison.
var sourcePrefixes = []string{"web-", "mdn-"}

// categoryWords are leading words stripped from names before comparison, so
// "CSS Grid Layout" and "Grid Layout" normalize identically.
var categoryWords = map[string]bool{
	"css":        true,
	"html":       true,
	"js":         true,
	"javascript": true,
	"api":        true,
	"svg":        true,
	"web":        true,
}

// NormalizeID reduces a feature id to its comparable core: lowercase, source
// prefixes stripped, hierarchical paths reduced to their last segment,
// non-alphanumerics removed.
func NormalizeID(id string) string {
	s := strings.ToLower(strings.TrimSpace(id))
	for _, p := range sourcePrefixes {
		s = strings.TrimPrefix(s, p)
	}
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	return stripNonAlnum(s)
}

// NormalizeName reduces a feature name to its comparable core: markup
// stripped, lowercased, a leading category word dropped, non-alphanumerics
// removed.
func NormalizeName(name string) string {
	s := strings.ToLower(feature.StripMarkup(name))
	fields := strings.Fields(s)
	if len(fields) > 1 && categoryWords[fields[0]] {
		fields = fields[1:]
	}
	return stripNonAlnum(strings.Join(fields, ""))
}

// AreLikelyDuplicates reports whether two records from different sources
// likely describe the same feature, and how the match was established.
// This is a heuristic, not a proof: the substring containment and the 0.7
// length-ratio cutoff are acknowledged guesses and must not be changed
// without product review. The check is symmetric in its arguments.
func AreLikelyDuplicates(aID, aName, bID, bName string) (bool, feature.MatchKind) {
	na, nb := NormalizeID(aID), NormalizeID(bID)
	if na != "" && na == nb {
		return true, feature.MatchExact
	}

	ma, mb := NormalizeName(aName), NormalizeName(bName)
	if ma == "" || mb == "" {
		return false, ""
	}
	if ma == mb {
		return true, feature.MatchInferred
	}

	shorter, longer := ma, mb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if strings.Contains(longer, shorter) &&
		float64(len(shorter))/float64(len(longer)) > 0.7 {
		return true, feature.MatchInferred
	}
	return false, ""
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
