package caniuse

import (
	"testing"

	"github.com/featwatch/featwatch/pkg/feature"
)

const sampleSnapshot = `{
	"data": {
		"grid": {
			"title": "CSS Grid Layout (level 1)",
			"description": "Method of using a grid concept to lay out content.",
			"categories": ["CSS"],
			"usage_perc_y": 92.0,
			"usage_perc_a": 1.53,
			"stats": {
				"chrome": {
					"4": "n",
					"29": "n d",
					"56": "a x",
					"57": "y",
					"120": "y"
				},
				"ie": {
					"10": "a x #1",
					"11": "a x #1"
				}
			}
		},
		"broken": {
			"description": "no title, no stats"
		}
	}
}`

func TestExtractClassifiesAndTracksFirstVersions(t *testing.T) {
	records, stats, err := New().Extract([]byte(sampleSnapshot))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 2 || stats.Parsed != 1 || stats.Skipped != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.ID != "grid" {
		t.Fatalf("unexpected id %q", rec.ID)
	}
	if rec.Category != "css" {
		t.Errorf("category = %q, want css", rec.Category)
	}
	if rec.UsageFull != 92.0 || rec.UsagePartial != 1.53 {
		t.Errorf("usage percentages not extracted: %v / %v", rec.UsageFull, rec.UsagePartial)
	}

	chrome := rec.Support["chrome"]
	if chrome.FirstFull != "57" {
		t.Errorf("chrome FirstFull = %q, want 57", chrome.FirstFull)
	}
	// The only partial entry is prefixed, which classifies as prefix, so no
	// version ever reaches plain partial.
	if chrome.FirstPartial != "" {
		t.Errorf("chrome FirstPartial = %q, want empty", chrome.FirstPartial)
	}
	if chrome.Current != feature.StatusFull {
		t.Errorf("chrome Current = %q, want full", chrome.Current)
	}

	// Modifier combinations resolve to their own statuses, with the
	// modifiers still decoded into the side list.
	byVersion := map[string]*feature.VersionSupport{}
	for i := range chrome.Versions {
		byVersion[chrome.Versions[i].Version] = &chrome.Versions[i]
	}
	disabled := byVersion["29"]
	if disabled == nil {
		t.Fatal("version 29 missing from history")
	}
	if disabled.Status != feature.StatusFlag {
		t.Errorf("version 29 status = %q, want flag", disabled.Status)
	}
	if len(disabled.Flags) != 1 || disabled.Flags[0] != "disabled" {
		t.Errorf("version 29 flags = %#v, want [disabled]", disabled.Flags)
	}
	prefixed := byVersion["56"]
	if prefixed == nil {
		t.Fatal("version 56 missing from history")
	}
	if prefixed.Status != feature.StatusPrefix {
		t.Errorf("version 56 status = %q, want prefix", prefixed.Status)
	}
	if len(prefixed.Flags) != 1 || prefixed.Flags[0] != "prefix" {
		t.Errorf("version 56 flags = %#v, want [prefix]", prefixed.Flags)
	}

	ie := rec.Support["ie"]
	if ie.Current != feature.StatusPrefix {
		t.Errorf("ie Current = %q, want prefix", ie.Current)
	}
	if ie.Versions[0].Note != "#1" {
		t.Errorf("ie footnote = %q, want #1", ie.Versions[0].Note)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		raw       string
		want      feature.Status
		wantFlags []string
		wantNote  string
	}{
		{"y", feature.StatusFull, nil, ""},
		{"a", feature.StatusPartial, nil, ""},
		{"n", feature.StatusNone, nil, ""},
		{"u", feature.StatusUnknown, nil, ""},
		{"y x", feature.StatusPrefix, []string{"prefix"}, ""},
		{"a x", feature.StatusPrefix, []string{"prefix"}, ""},
		{"n d", feature.StatusFlag, []string{"disabled"}, ""},
		{"n x", feature.StatusNone, []string{"prefix"}, ""},
		{"p", feature.StatusNone, []string{"polyfill"}, ""},
		{"a x #1", feature.StatusPrefix, []string{"prefix"}, "#1"},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			status, flags, note := classify(tc.raw)
			if status != tc.want {
				t.Errorf("status = %q, want %q", status, tc.want)
			}
			if len(flags) != len(tc.wantFlags) {
				t.Fatalf("flags = %#v, want %#v", flags, tc.wantFlags)
			}
			for i := range flags {
				if flags[i] != tc.wantFlags[i] {
					t.Errorf("flags = %#v, want %#v", flags, tc.wantFlags)
				}
			}
			if note != tc.wantNote {
				t.Errorf("note = %q, want %q", note, tc.wantNote)
			}
		})
	}
}

func TestExtractTruncatesHistory(t *testing.T) {
	snapshot := `{"data": {"feat": {"title": "Feature", "stats": {"chrome": {
		"1":"n","2":"n","3":"n","4":"n","5":"n","6":"n","7":"a","8":"y","9":"y","10":"y","11":"y","12":"y"
	}}}}}`
	records, _, err := New().Extract([]byte(snapshot))
	if err != nil {
		t.Fatal(err)
	}
	chrome := records[0].Support["chrome"]
	if len(chrome.Versions) != feature.MaxVersionHistory {
		t.Fatalf("history length = %d, want %d", len(chrome.Versions), feature.MaxVersionHistory)
	}
	// The most recent versions survive the cap.
	if chrome.Versions[len(chrome.Versions)-1].Version != "12" {
		t.Fatalf("newest version = %q, want 12", chrome.Versions[len(chrome.Versions)-1].Version)
	}
	// First-version trackers are computed before truncation.
	if chrome.FirstPartial != "7" || chrome.FirstFull != "8" {
		t.Fatalf("first versions = %q/%q, want 7/8", chrome.FirstPartial, chrome.FirstFull)
	}
}

func TestExtractRejectsMalformedSnapshot(t *testing.T) {
	if _, _, err := New().Extract([]byte(`[1,2,3]`)); err == nil {
		t.Fatal("expected error for snapshot without a data object")
	}
}
