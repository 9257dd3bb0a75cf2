// Package sources defines the common shape every per-source extractor
// produces, plus the parent-browser inference that guarantees a support
// detail for every tracked browser.
package sources

import (
	"github.com/featwatch/featwatch/pkg/browsers"
	"github.com/featwatch/featwatch/pkg/feature"
)

// Record is one source's view of a feature, already mapped onto the unified
// support shape. Fields a source is not authoritative for are left zero.
type Record struct {
	ID          string
	Name        string
	Description string
	Category    string

	// Link is an explicit cross-source mapping to a primary-source id,
	// supplied by the record itself (secondary source only).
	Link string

	// Docs is an external documentation URL (tertiary source only).
	Docs string

	// Baseline is the readiness tier (secondary source only).
	Baseline feature.Baseline

	// Support is the fully resolved per-browser support: every tracked
	// browser is present.
	Support feature.BrowserSupport

	// UsageFull and UsagePartial are pre-computed global percentages from
	// the primary source. Zero means "not supplied".
	UsageFull    float64
	UsagePartial float64
}

// Stats counts what happened while extracting one source.
type Stats struct {
	Total   int
	Parsed  int
	Skipped int
}

// Extractor turns one source's native snapshot into normalized records.
// Extraction is tolerant: a malformed individual entry is counted in Stats
// and skipped, while a malformed snapshot as a whole is an error.
type Extractor interface {
	Name() string
	Extract(data []byte) ([]Record, Stats, error)
}

// ResolveSupport fills the gaps in a source's native per-browser data. A
// browser with no native detail inherits a copy of its parent browser's
// detail; if the parent has none either, the browser is marked fully
// unsupported. The result always contains every tracked browser.
func ResolveSupport(native map[string]*feature.SupportDetail) feature.BrowserSupport {
	out := make(feature.BrowserSupport, len(browsers.All()))
	for _, b := range browsers.All() {
		if d := native[b]; d != nil {
			out[b] = d
			continue
		}
		if p := browsers.Parent(b); p != "" {
			if pd := native[p]; pd != nil {
				out[b] = pd.Clone()
				continue
			}
		}
		out[b] = &feature.SupportDetail{
			Current:  feature.StatusNone,
			Versions: []feature.VersionSupport{},
		}
	}
	return out
}
