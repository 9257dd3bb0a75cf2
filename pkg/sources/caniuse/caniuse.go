// Package caniuse extracts the primary source: a catalog keyed by feature id
// carrying per-browser per-version status strings and pre-computed usage
// percentages.
package caniuse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/featwatch/featwatch/internal/utils"
	"github.com/featwatch/featwatch/pkg/feature"
	"github.com/featwatch/featwatch/pkg/sources"
	"github.com/featwatch/featwatch/pkg/version"
	"github.com/tidwall/gjson"
)

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Name() string { return "caniuse" }

func (e *Extractor) Extract(data []byte) ([]sources.Record, sources.Stats, error) {
	root := gjson.ParseBytes(data)
	featuresNode := root.Get("data")
	if !featuresNode.Exists() || !featuresNode.IsObject() {
		return nil, sources.Stats{}, fmt.Errorf("caniuse snapshot has no top-level data object")
	}

	var records []sources.Record
	stats := sources.Stats{}

	featuresNode.ForEach(func(key, value gjson.Result) bool {
		stats.Total++
		rec, err := extractOne(key.String(), value)
		if err != nil {
			utils.Log.Warnf("caniuse: skipping record %s: %v", key.String(), err)
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

func extractOne(id string, node gjson.Result) (sources.Record, error) {
	if id == "" {
		return sources.Record{}, fmt.Errorf("empty feature id")
	}
	title := node.Get("title").String()
	if title == "" {
		return sources.Record{}, fmt.Errorf("missing title")
	}
	statsNode := node.Get("stats")
	if !statsNode.IsObject() {
		return sources.Record{}, fmt.Errorf("missing stats table")
	}

	native := map[string]*feature.SupportDetail{}
	statsNode.ForEach(func(browser, table gjson.Result) bool {
		if d := supportDetail(table); d != nil {
			native[browser.String()] = d
		}
		return true
	})

	category := "other"
	if cats := node.Get("categories").Array(); len(cats) > 0 {
		category = feature.NormalizeCategory(cats[0].String())
	}

	return sources.Record{
		ID:           id,
		Name:         feature.StripMarkup(title),
		Description:  node.Get("description").String(),
		Category:     category,
		Support:      sources.ResolveSupport(native),
		UsageFull:    node.Get("usage_perc_y").Float(),
		UsagePartial: node.Get("usage_perc_a").Float(),
	}, nil
}

// supportDetail folds one browser's version -> status-string table into a
// SupportDetail, iterating versions in comparator order.
func supportDetail(table gjson.Result) *feature.SupportDetail {
	type row struct {
		version string
		raw     string
	}
	var rows []row
	table.ForEach(func(ver, status gjson.Result) bool {
		rows = append(rows, row{version: ver.String(), raw: status.String()})
		return true
	})
	if len(rows) == 0 {
		return nil
	}
	sort.Slice(rows, func(i, j int) bool {
		return version.Compare(rows[i].version, rows[j].version) < 0
	})

	d := &feature.SupportDetail{Current: feature.StatusUnknown}
	for _, r := range rows {
		status, flags, note := classify(r.raw)
		d.Versions = append(d.Versions, feature.VersionSupport{
			Version: r.version,
			Status:  status,
			Flags:   flags,
			Note:    note,
		})
		if status == feature.StatusFull && d.FirstFull == "" {
			d.FirstFull = r.version
		}
		if status == feature.StatusPartial && d.FirstPartial == "" {
			d.FirstPartial = r.version
		}
		d.Current = status
	}
	if len(d.Versions) > feature.MaxVersionHistory {
		d.Versions = d.Versions[len(d.Versions)-feature.MaxVersionHistory:]
	}
	return d
}

// classify decodes a raw status string into a status plus a side list of
// modifiers. Modifier combinations resolve to their own statuses: support
// that only exists behind a vendor prefix is "prefix", support that is
// present but disabled by default is "flag".
func classify(raw string) (feature.Status, []string, string) {
	var (
		base  feature.Status = feature.StatusUnknown
		flags []string
		note  string
	)
	for i, tok := range strings.Fields(raw) {
		if strings.HasPrefix(tok, "#") {
			note = tok
			continue
		}
		if i == 0 {
			switch tok[0] {
			case 'y':
				base = feature.StatusFull
			case 'a':
				base = feature.StatusPartial
			case 'n':
				base = feature.StatusNone
			case 'p':
				// Polyfill only: no native support.
				base = feature.StatusNone
				flags = append(flags, "polyfill")
			case 'u':
				base = feature.StatusUnknown
			}
			continue
		}
		switch tok {
		case "x":
			flags = append(flags, "prefix")
		case "d":
			flags = append(flags, "disabled")
		case "p":
			flags = append(flags, "polyfill")
		}
	}

	for _, f := range flags {
		switch f {
		case "prefix":
			if base == feature.StatusFull || base == feature.StatusPartial {
				base = feature.StatusPrefix
			}
		case "disabled":
			if base == feature.StatusNone {
				base = feature.StatusFlag
			}
		}
	}
	return base, flags, note
}
