// Package webstatus extracts the secondary source: a flat catalog carrying a
// baseline readiness tier and a single "available since" version per browser,
// with optional explicit links to primary-source ids.
package webstatus

import (
	"fmt"
	"sort"

	"github.com/featwatch/featwatch/internal/utils"
	"github.com/featwatch/featwatch/pkg/feature"
	"github.com/featwatch/featwatch/pkg/sources"
	"github.com/tidwall/gjson"
)

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Name() string { return "webstatus" }

func (e *Extractor) Extract(data []byte) ([]sources.Record, sources.Stats, error) {
	root := gjson.ParseBytes(data)
	featuresNode := root.Get("features")
	if !featuresNode.Exists() || !featuresNode.IsArray() {
		return nil, sources.Stats{}, fmt.Errorf("webstatus snapshot has no top-level features array")
	}

	var records []sources.Record
	stats := sources.Stats{}

	featuresNode.ForEach(func(_, value gjson.Result) bool {
		stats.Total++
		rec, err := extractOne(value)
		if err != nil {
			utils.Log.Warnf("webstatus: skipping record %s: %v", value.Get("feature_id").String(), err)
			stats.Skipped++
			return true
		}
		records = append(records, rec)
		stats.Parsed++
		return true
	})

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, stats, nil
}

func extractOne(node gjson.Result) (sources.Record, error) {
	id := node.Get("feature_id").String()
	if id == "" {
		return sources.Record{}, fmt.Errorf("empty feature_id")
	}
	name := node.Get("name").String()
	if name == "" {
		return sources.Record{}, fmt.Errorf("missing name")
	}

	native := map[string]*feature.SupportDetail{}
	node.Get("browser_implementations").ForEach(func(browser, impl gjson.Result) bool {
		v := impl.Get("version").String()
		if v == "" {
			return true
		}
		// This source has no version history: synthesize a one-element
		// list and treat the browser as fully supported since then.
		native[browser.String()] = &feature.SupportDetail{
			Current:   feature.StatusFull,
			FirstFull: v,
			Versions: []feature.VersionSupport{
				{Version: v, Status: feature.StatusFull},
			},
		}
		return true
	})

	return sources.Record{
		ID:          id,
		Name:        feature.StripMarkup(name),
		Description: node.Get("description_html").String(),
		Category:    feature.NormalizeCategory(node.Get("group").String()),
		Link:        node.Get("caniuse").String(),
		Baseline:    baselineTier(node.Get("baseline.status").String()),
		Support:     sources.ResolveSupport(native),
	}, nil
}

func baselineTier(status string) feature.Baseline {
	switch status {
	case "widely", "high":
		return feature.BaselineHigh
	case "newly", "low":
		return feature.BaselineLow
	default:
		return feature.BaselineNone
	}
}
