package usage

import (
	"testing"

	"github.com/featwatch/featwatch/pkg/feature"
)

func TestParseTableFiltersUnknownBrowsers(t *testing.T) {
	data := []byte(`{
		"agents": {
			"chrome": {"usage_global": {"120": 12.5, "121": 8.0}},
			"baidu": {"usage_global": {"13.5": 0.3}},
			"and_chr": {"usage_global": {"122": 41.2}}
		}
	}`)
	table, err := ParseTable(data)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := table["baidu"]; ok {
		t.Error("untracked browser kept in table")
	}
	if table["chrome"]["120"] != 12.5 || table["and_chr"]["122"] != 41.2 {
		t.Errorf("unexpected table contents: %#v", table)
	}
}

func TestParseTableRejectsMissingAgents(t *testing.T) {
	if _, err := ParseTable([]byte(`{"data": {}}`)); err == nil {
		t.Fatal("expected error for snapshot without agents object")
	}
}

func TestEstimateBucketsByFirstVersions(t *testing.T) {
	support := feature.BrowserSupport{
		"chrome": {
			Current:      feature.StatusFull,
			FirstFull:    "57",
			FirstPartial: "55",
		},
		"ios_saf": {
			Current:   feature.StatusFull,
			FirstFull: "10",
		},
	}
	table := Table{
		"chrome": {
			"54":      5,
			"55":      5,
			"57":      20,
			"current": 2,
		},
		"ios_saf": {"12": 8},
		"firefox": {"118": 3}, // no support detail, contributes nothing
	}

	u := Estimate(support, table, 0, 0)
	if u.Full != 30 || u.Partial != 5 {
		t.Errorf("full/partial = %v/%v, want 30/5", u.Full, u.Partial)
	}
	if u.Desktop != 27 || u.Mobile != 8 {
		t.Errorf("desktop/mobile = %v/%v, want 27/8", u.Desktop, u.Mobile)
	}
	if u.Total != 35 {
		t.Errorf("total = %v, want 35", u.Total)
	}
	if !u.Estimated {
		t.Error("expected estimated flag")
	}
}

func TestEstimateRangeInterpolation(t *testing.T) {
	table := Table{"chrome": {"100-110": 10}}

	tests := []struct {
		name         string
		firstFull    string
		firstPartial string
		wantFull     float64
		wantPartial  float64
	}{
		{"crossing mid-range", "105", "", 5, 0},
		{"crossing at range start", "100", "", 10, 0},
		{"crossing past range end", "111", "", 0, 0},
		{"partial fills uncovered half", "105", "100", 5, 5},
		{"partial behind full adds nothing", "100", "100", 10, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			support := feature.BrowserSupport{
				"chrome": {
					Current:      feature.StatusFull,
					FirstFull:    tc.firstFull,
					FirstPartial: tc.firstPartial,
				},
			}
			u := Estimate(support, table, 0, 0)
			if u.Full != tc.wantFull || u.Partial != tc.wantPartial {
				t.Errorf("full/partial = %v/%v, want %v/%v",
					u.Full, u.Partial, tc.wantFull, tc.wantPartial)
			}
		})
	}
}

func TestEstimateSentinelBucketsByCurrentStatus(t *testing.T) {
	table := Table{"safari": {"tp": 0.5, "17.4": 2}}
	support := feature.BrowserSupport{
		"safari": {
			Current:      feature.StatusPartial,
			FirstPartial: "17.0",
		},
	}
	u := Estimate(support, table, 0, 0)
	if u.Full != 0 || u.Partial != 2.5 {
		t.Errorf("full/partial = %v/%v, want 0/2.5", u.Full, u.Partial)
	}
}

func TestEstimateAuthoritativeOverride(t *testing.T) {
	support := feature.BrowserSupport{
		"chrome": {Current: feature.StatusFull, FirstFull: "57"},
	}
	table := Table{"chrome": {"120": 25}}

	u := Estimate(support, table, 93.5, 1.21)
	if u.Full != 93.5 || u.Partial != 1.21 {
		t.Errorf("full/partial = %v/%v, want authoritative 93.5/1.21", u.Full, u.Partial)
	}
	if u.Total != 94.71 {
		t.Errorf("total = %v, want 94.71", u.Total)
	}
	if u.Estimated {
		t.Error("authoritative figures must clear the estimated flag")
	}
	// The per-browser breakdown is still the computed one.
	if u.Desktop != 25 {
		t.Errorf("desktop = %v, want 25", u.Desktop)
	}
}

func TestEstimateZeroSharesSkipped(t *testing.T) {
	support := feature.BrowserSupport{
		"chrome": {Current: feature.StatusFull, FirstFull: "1"},
	}
	table := Table{"chrome": {"50": 0, "60": 1.337}}
	u := Estimate(support, table, 0, 0)
	if u.Full != 1.34 {
		t.Errorf("full = %v, want rounded 1.34", u.Full)
	}
}
