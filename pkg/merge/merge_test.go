package merge

import (
	"testing"

	"github.com/featwatch/featwatch/pkg/feature"
	"github.com/featwatch/featwatch/pkg/sources"
)

func fullSupport(browser, ver string) feature.BrowserSupport {
	return feature.BrowserSupport{
		browser: {
			Current:   feature.StatusFull,
			FirstFull: ver,
			Versions:  []feature.VersionSupport{{Version: ver, Status: feature.StatusFull}},
		},
	}
}

func TestMergePriorityAndProvenance(t *testing.T) {
	primary := []sources.Record{
		{
			ID: "css-grid", Name: "CSS Grid Layout",
			Category: "css", Support: fullSupport("chrome", "57"),
			UsageFull: 93.2, UsagePartial: 1.1,
		},
	}
	secondary := []sources.Record{
		{
			ID: "grid", Name: "Grid",
			Link: "css-grid", Baseline: feature.BaselineHigh,
			Support: fullSupport("chrome", "58"),
		},
	}
	tertiary := []sources.Record{
		{
			ID: "css.properties.display.grid", Name: "Grid Layout",
			Category: "css", Docs: "https://developer.mozilla.org/docs/Web/CSS/grid",
			Support: fullSupport("chrome", "57"),
		},
	}

	features, stats := Merge(primary, secondary, tertiary)
	if len(features) != 1 {
		t.Fatalf("expected a single merged feature, got %d", len(features))
	}
	f := features["css-grid"]
	if f == nil {
		t.Fatal("merged feature lost its primary id")
	}

	// Support stays the primary source's version; the secondary's 58 must
	// not leak in.
	if f.Support["chrome"].FirstFull != "57" {
		t.Errorf("firstFull = %q, supplementary source overwrote support", f.Support["chrome"].FirstFull)
	}
	if f.Usage.Full != 93.2 || f.Usage.Partial != 1.1 {
		t.Errorf("usage = %+v, want the primary figures kept", f.Usage)
	}
	if f.Baseline != feature.BaselineHigh {
		t.Errorf("baseline = %q, want supplemented high", f.Baseline)
	}
	if f.Docs != "https://developer.mozilla.org/docs/Web/CSS/grid" {
		t.Errorf("docs = %q, want supplemented from tertiary", f.Docs)
	}

	if f.Provenance.Primary.Source != "caniuse" {
		t.Errorf("primary provenance = %+v", f.Provenance.Primary)
	}
	if len(f.Provenance.Supplements) != 2 {
		t.Fatalf("supplements = %+v, want two", f.Provenance.Supplements)
	}
	if f.Provenance.Supplements[0].Match != feature.MatchViaLink {
		t.Errorf("secondary match = %q, want via-secondary-link", f.Provenance.Supplements[0].Match)
	}
	if f.Provenance.Supplements[1].Match != feature.MatchInferred {
		t.Errorf("tertiary match = %q, want inferred via normalized name", f.Provenance.Supplements[1].Match)
	}

	if stats[0].Added != 1 || stats[1].Merged != 1 || stats[2].Merged != 1 {
		t.Errorf("unexpected stage stats: %+v", stats)
	}
}

func TestMergeUnmatchedRecordsGetPrefixedIDs(t *testing.T) {
	secondary := []sources.Record{
		{ID: "view-transitions", Name: "View Transitions",
			Baseline: feature.BaselineLow, Support: fullSupport("chrome", "111")},
	}
	tertiary := []sources.Record{
		{ID: "api.CookieStore", Name: "CookieStore",
			Support: fullSupport("chrome", "87")},
	}

	features, stats := Merge(nil, secondary, tertiary)
	if len(features) != 2 {
		t.Fatalf("expected two new features, got %d", len(features))
	}

	vt := features["web-view-transitions"]
	if vt == nil {
		t.Fatal("secondary insert missing its web- prefix")
	}
	if vt.Baseline != feature.BaselineLow {
		t.Errorf("baseline = %q, want the record's own tier", vt.Baseline)
	}
	if vt.Provenance.Primary.Source != "webstatus" || vt.Provenance.Primary.ID != "view-transitions" {
		t.Errorf("provenance = %+v", vt.Provenance.Primary)
	}

	cs := features["mdn-api.CookieStore"]
	if cs == nil {
		t.Fatal("tertiary insert missing its mdn- prefix")
	}
	if cs.Baseline != feature.BaselineNone {
		t.Errorf("baseline = %q, want false when the source carries none", cs.Baseline)
	}

	if stats[1].Added != 1 || stats[2].Added != 1 {
		t.Errorf("unexpected stage stats: %+v", stats)
	}
}

func TestMergeLinksHierarchicalPathToPlainID(t *testing.T) {
	primary := []sources.Record{
		{ID: "grid", Name: "CSS Grid Layout", Category: "css",
			Support: fullSupport("chrome", "57"), UsageFull: 92},
	}
	tertiary := []sources.Record{
		{ID: "css.properties.display.grid", Name: "grid", Category: "css",
			Docs:    "https://developer.mozilla.org/docs/Web/CSS/grid",
			Support: fullSupport("chrome", "57")},
	}

	features, _ := Merge(primary, nil, tertiary)
	if len(features) != 1 {
		t.Fatalf("expected one merged feature, got %d", len(features))
	}
	if _, ok := features["mdn-css.properties.display.grid"]; ok {
		t.Fatal("duplicate record created instead of linking by normalized id")
	}
	f := features["grid"]
	if len(f.Provenance.Supplements) != 1 || f.Provenance.Supplements[0].Match != feature.MatchExact {
		t.Errorf("supplements = %+v, want one exact id match", f.Provenance.Supplements)
	}
	if f.Usage.Full != 92 {
		t.Errorf("usage.Full = %v, authoritative figure lost", f.Usage.Full)
	}
}

func TestMergeCategoryInferenceOnlyFillsOther(t *testing.T) {
	primary := []sources.Record{
		{ID: "fetch", Name: "Fetch", Category: "other", Support: fullSupport("chrome", "42")},
		{ID: "css-grid", Name: "CSS Grid Layout", Category: "css", Support: fullSupport("chrome", "57")},
	}
	tertiary := []sources.Record{
		{ID: "api.fetch", Name: "fetch", Category: "api", Support: fullSupport("chrome", "42")},
		{ID: "css.properties.grid", Name: "Grid Layout", Category: "js", Support: fullSupport("chrome", "57")},
	}

	features, _ := Merge(primary, nil, tertiary)
	if got := features["fetch"].Category; got != "api" {
		t.Errorf("uncategorized feature category = %q, want inferred api", got)
	}
	if got := features["css-grid"].Category; got != "css" {
		t.Errorf("categorized feature category = %q, tertiary must not overwrite", got)
	}
}

func TestMergeDropsInvalidRecords(t *testing.T) {
	primary := []sources.Record{
		{ID: "", Name: "nameless", Support: fullSupport("chrome", "1")},
		{ID: "no-support", Name: "No support map"},
		{ID: "ok", Name: "OK", Support: fullSupport("chrome", "1")},
	}
	features, stats := Merge(primary, nil, nil)
	if len(features) != 1 {
		t.Fatalf("expected one surviving feature, got %d", len(features))
	}
	if stats[0].Errors != 2 || stats[0].Added != 1 {
		t.Errorf("unexpected primary stats: %+v", stats[0])
	}
}
