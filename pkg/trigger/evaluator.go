package trigger

import (
	"github.com/featwatch/featwatch/pkg/browsers"
	"github.com/featwatch/featwatch/pkg/diff"
	"github.com/featwatch/featwatch/pkg/feature"
	"github.com/featwatch/featwatch/pkg/version"
)

// Evaluate is a pure function deciding which triggers crossed for one
// feature in one change report. Every rule requires the underlying field to
// have changed in this report: a value that was already satisfied before the
// report never fires. A nil change (feature not in the report) never fires
// anything.
func Evaluate(triggers []Trigger, change *diff.FeatureChange, f *feature.Feature) []Trigger {
	if change == nil || f == nil {
		return nil
	}

	var fired []Trigger
	for _, t := range triggers {
		if fires(t, change, f) {
			fired = append(fired, t)
		}
	}
	return fired
}

func fires(t Trigger, change *diff.FeatureChange, f *feature.Feature) bool {
	switch t.Kind {
	case KindUsageThreshold:
		if change.UsageDelta == nil {
			return false
		}
		current := usageValue(f.Usage, t.UsageKind)
		previous := current - *change.UsageDelta
		// Strict crossing, not merely "currently above".
		return current >= t.Threshold && previous < t.Threshold

	case KindBrowserSupport:
		sc := supportChangeFor(change, t.Browser)
		return sc != nil && sc.To == t.Status

	case KindBrowserVersion:
		if supportChangeFor(change, t.Browser) == nil {
			return false
		}
		d := f.Support[t.Browser]
		if d == nil {
			return false
		}
		return statusReachedAt(d, t.Status, t.Version)

	case KindBaseline:
		if change.Baseline == nil {
			return false
		}
		if change.Baseline.To == t.Baseline {
			return true
		}
		// Tier progression is monotonic: a "low" target is satisfied by
		// the baseline jumping straight to "high".
		return t.Baseline == feature.BaselineLow && change.Baseline.To == feature.BaselineHigh
	}
	return false
}

func usageValue(u feature.Usage, kind UsageKind) float64 {
	switch kind {
	case UsageFull:
		return u.Full
	case UsagePartial:
		return u.Partial
	default:
		return u.Total
	}
}

func supportChangeFor(change *diff.FeatureChange, browser string) *diff.SupportChange {
	short := browsers.ShortKey(browser)
	for i := range change.Support {
		if change.Support[i].Browser == short {
			return &change.Support[i]
		}
	}
	return nil
}

// statusReachedAt reports whether the browser reached the target status at
// or before the given version. Full support also satisfies a partial target.
func statusReachedAt(d *feature.SupportDetail, target feature.Status, v string) bool {
	if d.FirstFull != "" && version.Compare(d.FirstFull, v) <= 0 {
		return true
	}
	if target == feature.StatusPartial &&
		d.FirstPartial != "" && version.Compare(d.FirstPartial, v) <= 0 {
		return true
	}
	return false
}
