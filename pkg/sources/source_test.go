package sources

import (
	"testing"

	"github.com/featwatch/featwatch/pkg/browsers"
	"github.com/featwatch/featwatch/pkg/feature"
)

func TestResolveSupportKeepsNativeData(t *testing.T) {
	native := map[string]*feature.SupportDetail{
		"chrome": {Current: feature.StatusFull, FirstFull: "57"},
	}
	got := ResolveSupport(native)
	if got["chrome"].FirstFull != "57" {
		t.Fatalf("native chrome data was not kept: %#v", got["chrome"])
	}
}

func TestResolveSupportInheritsFromParent(t *testing.T) {
	native := map[string]*feature.SupportDetail{
		"chrome": {Current: feature.StatusFull, FirstFull: "57"},
	}
	got := ResolveSupport(native)

	// Mobile browsers mirror their desktop engine sibling.
	if got["and_chr"].Current != feature.StatusFull || got["and_chr"].FirstFull != "57" {
		t.Fatalf("and_chr did not inherit from chrome: %#v", got["and_chr"])
	}
	// Inheritance must be a copy, not an alias.
	got["and_chr"].FirstFull = "58"
	if got["chrome"].FirstFull != "57" {
		t.Fatal("inherited detail aliases the parent detail")
	}
}

func TestResolveSupportMarksUnknownBrowsersUnsupported(t *testing.T) {
	got := ResolveSupport(map[string]*feature.SupportDetail{})

	for _, b := range browsers.All() {
		d, ok := got[b]
		if !ok || d == nil {
			t.Fatalf("browser %s is absent from resolved support", b)
		}
		if d.Current != feature.StatusNone {
			t.Errorf("browser %s = %s, want none", b, d.Current)
		}
		if d.Versions == nil {
			t.Errorf("browser %s has a nil version list, want empty", b)
		}
	}
}
