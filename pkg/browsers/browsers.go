package browsers

// Desktop browsers tracked by the catalog, in display order.
var Desktop = []string{"chrome", "edge", "firefox", "safari", "opera", "ie"}

// Mobile browsers tracked by the catalog, in display order.
var Mobile = []string{"and_chr", "ios_saf", "and_ff", "samsung", "op_mob", "android"}

// parentMap maps a browser with sparse source data to the "parent" browser
// whose support is mirrored when the source carries nothing for it. Mobile
// browsers mirror their desktop engine sibling.
var parentMap = map[string]string{
	"and_chr": "chrome",
	"android": "chrome",
	"samsung": "chrome",
	"op_mob":  "opera",
	"ios_saf": "safari",
	"and_ff":  "firefox",
}

// shortKeys are the compact browser keys used in emitted artifacts.
var shortKeys = map[string]string{
	"chrome":  "c",
	"edge":    "e",
	"firefox": "f",
	"safari":  "s",
	"opera":   "o",
	"ie":      "ie",
	"and_chr": "ac",
	"ios_saf": "is",
	"and_ff":  "af",
	"samsung": "sm",
	"op_mob":  "om",
	"android": "an",
}

// indexExcluded lists low-value browsers removed from the index quick-support
// view. They are still present in per-feature detail records.
var indexExcluded = map[string]bool{
	"ie":      true,
	"op_mob":  true,
	"android": true,
}

var longKeys map[string]string

func init() {
	longKeys = make(map[string]string, len(shortKeys))
	for long, short := range shortKeys {
		longKeys[short] = long
	}
}

// All returns every tracked browser, desktop first.
func All() []string {
	out := make([]string, 0, len(Desktop)+len(Mobile))
	out = append(out, Desktop...)
	out = append(out, Mobile...)
	return out
}

// Parent returns the browser whose support is inherited when b has no native
// source data, or "" if b has no parent.
func Parent(b string) string {
	return parentMap[b]
}

// ShortKey returns the compact artifact key for a browser. Unknown browsers
// map to themselves so round-tripping never loses data.
func ShortKey(b string) string {
	if s, ok := shortKeys[b]; ok {
		return s
	}
	return b
}

// FromShortKey resolves a compact artifact key back to the browser id.
func FromShortKey(s string) string {
	if long, ok := longKeys[s]; ok {
		return long
	}
	return s
}

// IndexExcluded reports whether a browser is hidden from the index
// quick-support view.
func IndexExcluded(b string) bool {
	return indexExcluded[b]
}

// IsMobile reports whether a browser belongs to the mobile usage bucket.
func IsMobile(b string) bool {
	for _, m := range Mobile {
		if m == b {
			return true
		}
	}
	return false
}

// IsKnown reports whether b is part of the tracked browser set.
func IsKnown(b string) bool {
	_, ok := shortKeys[b]
	return ok
}
