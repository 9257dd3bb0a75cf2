// Package usage turns per-version global adoption numbers plus resolved
// support data into aggregate support percentages. The estimate is fully
// deterministic: re-running with identical inputs yields identical output.
package usage

import (
	"fmt"
	"math"
	"sort"

	"github.com/featwatch/featwatch/pkg/browsers"
	"github.com/featwatch/featwatch/pkg/feature"
	"github.com/featwatch/featwatch/pkg/version"
	"github.com/tidwall/gjson"
)

// Table is the global usage share per browser per version (or version
// range). Values are percentage points of global traffic.
type Table map[string]map[string]float64

// ParseTable loads a usage-share snapshot.
func ParseTable(data []byte) (Table, error) {
	root := gjson.ParseBytes(data)
	agents := root.Get("agents")
	if !agents.Exists() || !agents.IsObject() {
		return nil, fmt.Errorf("usage snapshot has no top-level agents object")
	}
	table := Table{}
	agents.ForEach(func(browser, node gjson.Result) bool {
		b := browser.String()
		if !browsers.IsKnown(b) {
			return true
		}
		shares := map[string]float64{}
		node.Get("usage_global").ForEach(func(ver, pct gjson.Result) bool {
			shares[ver.String()] = pct.Float()
			return true
		})
		if len(shares) > 0 {
			table[b] = shares
		}
		return true
	})
	return table, nil
}

// Estimate computes a feature's usage percentages from its resolved support
// and the global usage table. Non-zero authoritative percentages from the
// primary source override the computed global figures (their accuracy is
// superior) while the per-browser desktop/mobile breakdown is retained.
func Estimate(support feature.BrowserSupport, table Table, authFull, authPartial float64) feature.Usage {
	var fullSum, partialSum, desktop, mobile float64

	for _, b := range sortedBrowsers(table) {
		d := support[b]
		if d == nil {
			continue
		}
		bFull, bPartial := browserUsage(d, table[b])
		fullSum += bFull
		partialSum += bPartial
		if browsers.IsMobile(b) {
			mobile += bFull + bPartial
		} else {
			desktop += bFull + bPartial
		}
	}

	u := feature.Usage{
		Full:      round2(fullSum),
		Partial:   round2(partialSum),
		Desktop:   round2(desktop),
		Mobile:    round2(mobile),
		Estimated: true,
	}
	if authFull > 0 || authPartial > 0 {
		u.Full = round2(authFull)
		u.Partial = round2(authPartial)
		u.Estimated = false
	}
	u.Total = round2(u.Full + u.Partial)
	return u
}

// browserUsage walks every version-usage entry for one browser and buckets
// its share into full or partial support.
func browserUsage(d *feature.SupportDetail, shares map[string]float64) (full, partial float64) {
	for _, ver := range sortedVersions(shares) {
		pct := shares[ver]
		if pct == 0 {
			continue
		}

		if version.IsLatest(ver) {
			// The current/latest channel contributes by the browser's
			// current status.
			switch d.Current {
			case feature.StatusFull:
				full += pct
			case feature.StatusPartial:
				partial += pct
			}
			continue
		}

		if version.IsRange(ver) {
			start, end := version.SplitRange(ver)
			fullFrac := coverFraction(d.FirstFull, start, end)
			full += pct * fullFrac
			if fullFrac < 1 {
				partialFrac := coverFraction(d.FirstPartial, start, end)
				if extra := partialFrac - fullFrac; extra > 0 {
					partial += pct * extra
				}
			}
			continue
		}

		if d.FirstFull != "" && version.Compare(ver, d.FirstFull) >= 0 {
			full += pct
		} else if d.FirstPartial != "" && version.Compare(ver, d.FirstPartial) >= 0 {
			partial += pct
		}
	}
	return full, partial
}

// coverFraction returns how much of the version range [start, end] is at or
// past the crossing point: 1 when the crossing is at or before the range
// start, 0 when strictly after the end, and a linear fraction inside.
func coverFraction(crossing, start, end string) float64 {
	if crossing == "" {
		return 0
	}
	if version.Compare(crossing, start) <= 0 {
		return 1
	}
	if version.Compare(crossing, end) > 0 {
		return 0
	}
	s, e, c := version.Num(start), version.Num(end), version.Num(crossing)
	if e <= s {
		return 0
	}
	return clamp01((e - c) / (e - s))
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func sortedBrowsers(table Table) []string {
	out := make([]string, 0, len(table))
	for b := range table {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

func sortedVersions(shares map[string]float64) []string {
	out := make([]string, 0, len(shares))
	for v := range shares {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := version.Compare(out[i], out[j]); c != 0 {
			return c < 0
		}
		return out[i] < out[j]
	})
	return out
}
