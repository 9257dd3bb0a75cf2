// Package mdn extracts the tertiary source: a hierarchical compatibility
// tree of arbitrary nesting whose compat nodes carry a support object with
// one or more statements per browser.
package mdn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/featwatch/featwatch/pkg/feature"
	"github.com/featwatch/featwatch/pkg/sources"
	"github.com/featwatch/featwatch/pkg/version"
	"github.com/tidwall/gjson"
)

const compatKey = "__compat"

// browserIDs maps this source's browser names onto the tracked browser set.
var browserIDs = map[string]string{
	"chrome":                 "chrome",
	"chrome_android":         "and_chr",
	"edge":                   "edge",
	"firefox":                "firefox",
	"firefox_android":        "and_ff",
	"safari":                 "safari",
	"safari_ios":             "ios_saf",
	"opera":                  "opera",
	"opera_android":          "op_mob",
	"samsunginternet_android": "samsung",
	"webview_android":        "android",
	"ie":                     "ie",
}

// pathCategories maps a compat-tree root segment onto the closed category set.
var pathCategories = map[string]string{
	"css":        "css",
	"html":       "html",
	"javascript": "js",
	"api":        "api",
	"svg":        "svg",
	"http":       "security",
}

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Name() string { return "mdn" }

func (e *Extractor) Extract(data []byte) ([]sources.Record, sources.Stats, error) {
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, sources.Stats{}, fmt.Errorf("compat snapshot is not a JSON object")
	}

	var records []sources.Record
	stats := sources.Stats{}
	walk("", root, &records, &stats)

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, stats, nil
}

// walk descends the tree depth-first. Any node carrying a compat object
// becomes a candidate record; its siblings are still visited since nesting
// depth is arbitrary.
func walk(path string, node gjson.Result, records *[]sources.Record, stats *sources.Stats) {
	node.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if name == compatKey {
			stats.Total++
			rec, ok := extractCompat(path, value)
			if !ok {
				stats.Skipped++
				return true
			}
			*records = append(*records, rec)
			stats.Parsed++
			return true
		}
		if !value.IsObject() {
			return true
		}
		childPath := name
		if path != "" {
			childPath = path + "." + name
		}
		walk(childPath, value, records, stats)
		return true
	})
}

func extractCompat(path string, compat gjson.Result) (sources.Record, bool) {
	if path == "" {
		return sources.Record{}, false
	}
	supportNode := compat.Get("support")
	if !supportNode.IsObject() {
		return sources.Record{}, false
	}

	native := map[string]*feature.SupportDetail{}
	supportNode.ForEach(func(browser, statements gjson.Result) bool {
		id, known := browserIDs[browser.String()]
		if !known {
			return true
		}
		if d := browserDetail(statements); d != nil {
			native[id] = d
		}
		return true
	})
	if len(native) == 0 {
		return sources.Record{}, false
	}

	segments := strings.Split(path, ".")
	name := segments[len(segments)-1]
	category := "other"
	if c, ok := pathCategories[segments[0]]; ok {
		category = c
	}

	return sources.Record{
		ID:          path,
		Name:        name,
		Description: feature.StripMarkup(compat.Get("description").String()),
		Category:    category,
		Docs:        compat.Get("mdn_url").String(),
		Support:     sources.ResolveSupport(native),
	}, true
}

// browserDetail folds one browser's statement list into a SupportDetail.
// Returns nil when every statement was skipped, letting the caller fall back
// to parent-browser inference.
func browserDetail(statements gjson.Result) *feature.SupportDetail {
	list := []gjson.Result{statements}
	if statements.IsArray() {
		list = statements.Array()
	}

	var entries []feature.VersionSupport
	for _, st := range list {
		added := st.Get("version_added")
		switch added.Type {
		case gjson.True:
			// Supported since before version records began: fully
			// supported, no history to build.
			return &feature.SupportDetail{Current: feature.StatusFull}
		case gjson.False, gjson.Null:
			continue
		case gjson.String:
		default:
			continue
		}
		v := added.String()
		if v == "" {
			continue
		}

		entry := feature.VersionSupport{Version: v, Status: feature.StatusFull}
		if flagsNode := st.Get("flags"); flagsNode.IsArray() && len(flagsNode.Array()) > 0 {
			entry.Status = feature.StatusFlag
			for _, f := range flagsNode.Array() {
				if n := f.Get("name").String(); n != "" {
					entry.Flags = append(entry.Flags, n)
				}
			}
		} else if st.Get("partial_implementation").Bool() {
			entry.Status = feature.StatusPartial
		}
		if note := st.Get("notes").String(); note != "" {
			entry.Note = note
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		return version.Compare(entries[i].Version, entries[j].Version) < 0
	})

	d := &feature.SupportDetail{}
	for _, e := range entries {
		if e.Status == feature.StatusFull && d.FirstFull == "" {
			d.FirstFull = e.Version
		}
		if e.Status == feature.StatusPartial && d.FirstPartial == "" {
			d.FirstPartial = e.Version
		}
		d.Current = e.Status
	}
	d.Versions = entries
	if len(d.Versions) > feature.MaxVersionHistory {
		d.Versions = d.Versions[len(d.Versions)-feature.MaxVersionHistory:]
	}
	return d
}
