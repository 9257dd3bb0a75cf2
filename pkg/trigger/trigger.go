// Package trigger models user-configured notification conditions as a
// closed tagged union and decides, against a change report, which of them
// crossed. A trigger fires only on the transition from not-satisfied to
// satisfied, never merely on being satisfied.
package trigger

import (
	"fmt"
	"time"

	"github.com/featwatch/featwatch/pkg/browsers"
	"github.com/featwatch/featwatch/pkg/feature"
)

// Kind tags the trigger union.
type Kind string

const (
	KindBrowserSupport Kind = "browser-support"
	KindBrowserVersion Kind = "browser-version"
	KindUsageThreshold Kind = "usage-threshold"
	KindBaseline       Kind = "baseline-status"
)

// UsageKind selects which usage percentage a usage-threshold trigger reads.
type UsageKind string

const (
	UsageFull    UsageKind = "full"
	UsagePartial UsageKind = "partial"
	UsageTotal   UsageKind = "total"
)

// Trigger is one condition attached to a feature tracking. Only the fields
// relevant to Kind are set.
type Trigger struct {
	Kind      Kind             `json:"kind"`
	Browser   string           `json:"browser,omitempty"`
	Version   string           `json:"version,omitempty"`
	Status    feature.Status   `json:"status,omitempty"`
	UsageKind UsageKind        `json:"usage,omitempty"`
	Threshold float64          `json:"threshold,omitempty"`
	Baseline  feature.Baseline `json:"baseline,omitempty"`
}

// Validate checks the variant's required fields. The switch is exhaustive
// over Kind so a new variant cannot be added without a case here.
func (t Trigger) Validate() error {
	switch t.Kind {
	case KindBrowserSupport:
		if err := validateBrowser(t.Browser); err != nil {
			return err
		}
		if t.Status != feature.StatusFull && t.Status != feature.StatusPartial {
			return fmt.Errorf("browser-support target must be full or partial, got %q", t.Status)
		}
	case KindBrowserVersion:
		if err := validateBrowser(t.Browser); err != nil {
			return err
		}
		if t.Version == "" {
			return fmt.Errorf("browser-version trigger needs a version")
		}
		if t.Status != feature.StatusFull && t.Status != feature.StatusPartial {
			return fmt.Errorf("browser-version target must be full or partial, got %q", t.Status)
		}
	case KindUsageThreshold:
		switch t.UsageKind {
		case UsageFull, UsagePartial, UsageTotal:
		default:
			return fmt.Errorf("unknown usage kind %q", t.UsageKind)
		}
		if t.Threshold <= 0 || t.Threshold > 100 {
			return fmt.Errorf("threshold must be in (0, 100], got %v", t.Threshold)
		}
	case KindBaseline:
		if t.Baseline != feature.BaselineLow && t.Baseline != feature.BaselineHigh {
			return fmt.Errorf("baseline target must be low or high, got %q", t.Baseline)
		}
	default:
		return fmt.Errorf("unknown trigger kind %q", t.Kind)
	}
	return nil
}

// validateBrowser checks that a browser-condition target can actually be
// observed. Change reports are built from the index quick view, so a trigger
// on an index-excluded browser would never fire.
func validateBrowser(b string) error {
	if !browsers.IsKnown(b) {
		return fmt.Errorf("unknown browser %q", b)
	}
	if browsers.IndexExcluded(b) {
		return fmt.Errorf("browser %q is excluded from change reporting and cannot be watched", b)
	}
	return nil
}

// String renders the condition for notification content.
func (t Trigger) String() string {
	switch t.Kind {
	case KindBrowserSupport:
		return fmt.Sprintf("%s reaches %s support", t.Browser, t.Status)
	case KindBrowserVersion:
		return fmt.Sprintf("%s %s reaches %s support", t.Browser, t.Version, t.Status)
	case KindUsageThreshold:
		return fmt.Sprintf("%s usage reaches %.2f%%", t.UsageKind, t.Threshold)
	case KindBaseline:
		return fmt.Sprintf("baseline reaches %s", t.Baseline)
	}
	return string(t.Kind)
}

// TrackingStatus is the lifecycle of a tracking row.
type TrackingStatus string

const (
	StatusActive    TrackingStatus = "active"
	StatusNotified  TrackingStatus = "notified"
	StatusCompleted TrackingStatus = "completed"
)

// Tracking is one user-feature subscription. Created by a user action;
// mutated only by the evaluator (active -> notified) or an explicit user
// action (-> completed, or deletion).
type Tracking struct {
	ID           int64
	UserRef      string
	Contact      string
	FeatureID    string
	FeatureTitle string
	Triggers     []Trigger
	Status       TrackingStatus
	NotifiedAt   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
