// Package feature defines the unified record model every source is folded
// into, plus the lossy index projection emitted for search.
package feature

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// Status is the support classification for one browser.
type Status string

const (
	StatusFull    Status = "full"
	StatusPartial Status = "partial"
	StatusNone    Status = "none"
	// StatusFlag means the feature exists but is disabled behind a
	// developer flag or similar switch.
	StatusFlag Status = "flag"
	// StatusPrefix means the feature is active under a vendor prefix.
	StatusPrefix  Status = "prefix"
	StatusUnknown Status = "unknown"
)

// Baseline is the coarse cross-browser readiness tier from the secondary
// catalog.
type Baseline string

const (
	BaselineHigh Baseline = "high"
	BaselineLow  Baseline = "low"
	BaselineNone Baseline = "false"
)

// MatchKind records how a supplementary source record was linked to a merged
// feature.
type MatchKind string

const (
	MatchExact    MatchKind = "exact"
	MatchViaLink  MatchKind = "via-secondary-link"
	MatchInferred MatchKind = "inferred"
)

// MaxVersionHistory bounds the per-browser version list to the most recent
// entries that carry data.
const MaxVersionHistory = 10

// VersionSupport is one version's support statement for a browser.
type VersionSupport struct {
	Version string   `json:"v"`
	Status  Status   `json:"s"`
	Flags   []string `json:"f,omitempty"`
	Note    string   `json:"n,omitempty"`
}

// SupportDetail is the resolved support picture for a single browser.
// FirstFull and FirstPartial only ever move backwards in version order as
// more data is folded in.
type SupportDetail struct {
	Current      Status           `json:"cur"`
	FirstFull    string           `json:"ff,omitempty"`
	FirstPartial string           `json:"fp,omitempty"`
	Versions     []VersionSupport `json:"hist,omitempty"`
}

// Clone returns a deep copy, used when a browser inherits its parent's data.
func (d *SupportDetail) Clone() *SupportDetail {
	if d == nil {
		return nil
	}
	out := &SupportDetail{
		Current:      d.Current,
		FirstFull:    d.FirstFull,
		FirstPartial: d.FirstPartial,
	}
	if len(d.Versions) > 0 {
		out.Versions = make([]VersionSupport, len(d.Versions))
		copy(out.Versions, d.Versions)
	}
	return out
}

// BrowserSupport maps every tracked browser to its support detail. Absent
// source data is represented as an explicit "none" detail, never a missing
// key, so consumers can iterate without existence checks.
type BrowserSupport map[string]*SupportDetail

// Usage holds the global usage percentages for a feature. Total always
// equals Full+Partial within rounding. Estimated records provenance: false
// means the figures came straight from the primary source.
type Usage struct {
	Full      float64 `json:"full"`
	Partial   float64 `json:"partial"`
	Total     float64 `json:"total"`
	Desktop   float64 `json:"desktop"`
	Mobile    float64 `json:"mobile"`
	Estimated bool    `json:"estimated"`
}

// SourceRef points at one source record that contributed to a feature.
type SourceRef struct {
	Source string    `json:"source"`
	ID     string    `json:"id"`
	Match  MatchKind `json:"match,omitempty"`
}

// Provenance records which sources built a feature and how each match was
// established. Exactly one primary record exists per feature.
type Provenance struct {
	Primary     SourceRef   `json:"primary"`
	Supplements []SourceRef `json:"supplements,omitempty"`
}

// Feature is the normalized, merged record for one web platform feature.
type Feature struct {
	ID          string         `json:"id"`
	Source      string         `json:"source"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Support     BrowserSupport `json:"support"`
	Usage       Usage          `json:"usage"`
	Baseline    Baseline       `json:"baseline"`
	Docs        string         `json:"docs,omitempty"`
	Provenance  Provenance     `json:"sourceData"`
}

// IndexEntry is the lossy search-index projection of a Feature. It is
// regenerated wholesale on every pipeline run and never mutated in place.
type IndexEntry struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"desc"`
	Category    string            `json:"cat"`
	Support     map[string]Status `json:"support"`
	UsageTotal  float64           `json:"usage"`
	Baseline    Baseline          `json:"baseline"`
}

// unificationMap is the source of truth for category normalization.
// It groups raw, source-specific category strings under a closed category set.
var unificationMap = map[string][]string{
	"css":      {"css", "css2", "css3", "css properties"},
	"html":     {"html", "html5", "dom parsing", "forms"},
	"js":       {"js", "javascript", "es5", "es6", "es2015"},
	"api":      {"js api", "dom", "api", "canvas", "webapi", "web api"},
	"svg":      {"svg"},
	"security": {"security", "tls", "http"},
	"other":    {"other", "png", "pdf", "deprecated", "media"},
}

// categoryMap is a reverse map generated from unificationMap for efficient
// lookups.
var categoryMap map[string]string

func init() {
	categoryMap = make(map[string]string)
	for unified, raws := range unificationMap {
		for _, raw := range raws {
			categoryMap[raw] = unified
		}
	}
}

// NormalizeCategory folds a raw source category into the closed category set.
func NormalizeCategory(category string) string {
	catLower := strings.ToLower(strings.TrimSpace(category))
	if unified, ok := categoryMap[catLower]; ok {
		return unified
	}
	return "other"
}

// Categories returns the closed category set, sorted.
func Categories() []string {
	return []string{"api", "css", "html", "js", "other", "security", "svg"}
}

// StripMarkup flattens inline HTML in source-provided names and descriptions
// down to plain text.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(strings.Join(strings.Fields(doc.Text()), " "))
}

// TruncateDescription bounds a description to n runes for the index
// projection.
func TruncateDescription(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	cut := string(runes[:n])
	// Cut on a word boundary when one is close enough.
	if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " .,;:") + "…"
}
