// Package diff compares the index produced by the current pipeline run
// against the index persisted at the previous run and reports what changed.
// A feature with no previous snapshot entry is never reported: new-feature
// announcements are deliberately out of scope.
package diff

import (
	"encoding/json"
	"math"
	"os"
	"sort"
	"time"

	"github.com/featwatch/featwatch/pkg/feature"
)

// usageDeltaFloor is the minimum absolute usage movement, in percentage
// points, worth reporting.
const usageDeltaFloor = 1.0

// SupportChange is one browser's status transition. Browser is the compact
// artifact key.
type SupportChange struct {
	Browser string         `json:"browser"`
	From    feature.Status `json:"from"`
	To      feature.Status `json:"to"`
}

// BaselineChange is a readiness tier transition.
type BaselineChange struct {
	From feature.Baseline `json:"from"`
	To   feature.Baseline `json:"to"`
}

// FeatureChange is everything that moved for one feature between snapshots.
type FeatureChange struct {
	ID         string          `json:"id"`
	UsageDelta *float64        `json:"usageDelta,omitempty"`
	Support    []SupportChange `json:"support,omitempty"`
	Baseline   *BaselineChange `json:"baseline,omitempty"`
}

// Report is the full change set between two index snapshots.
type Report struct {
	Timestamp        time.Time       `json:"timestamp"`
	PreviousSnapshot string          `json:"previousSnapshot"`
	CurrentSnapshot  string          `json:"currentSnapshot"`
	TotalChanges     int             `json:"totalChanges"`
	Changes          []FeatureChange `json:"changes"`
}

// Change returns the report entry for a feature id, or nil.
func (r *Report) Change(id string) *FeatureChange {
	for i := range r.Changes {
		if r.Changes[i].ID == id {
			return &r.Changes[i]
		}
	}
	return nil
}

// Diff compares the previous and current snapshots. An empty previous
// snapshot (first run) yields an empty report, not an error.
func Diff(previous, current []feature.IndexEntry, prevID, curID string) Report {
	report := Report{
		Timestamp:        time.Now().UTC(),
		PreviousSnapshot: prevID,
		CurrentSnapshot:  curID,
		Changes:          []FeatureChange{},
	}
	if len(previous) == 0 {
		return report
	}

	prevByID := make(map[string]*feature.IndexEntry, len(previous))
	for i := range previous {
		prevByID[previous[i].ID] = &previous[i]
	}

	for i := range current {
		cur := &current[i]
		prev, ok := prevByID[cur.ID]
		if !ok {
			continue
		}
		if fc := compare(prev, cur); fc != nil {
			report.Changes = append(report.Changes, *fc)
		}
	}
	report.TotalChanges = len(report.Changes)
	return report
}

func compare(prev, cur *feature.IndexEntry) *FeatureChange {
	fc := FeatureChange{ID: cur.ID}
	changed := false

	if delta := cur.UsageTotal - prev.UsageTotal; math.Abs(delta) > usageDeltaFloor {
		fc.UsageDelta = &delta
		changed = true
	}

	keys := make([]string, 0, len(cur.Support))
	for k := range cur.Support {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		prevStatus, ok := prev.Support[k]
		if !ok {
			continue
		}
		if curStatus := cur.Support[k]; curStatus != prevStatus {
			fc.Support = append(fc.Support, SupportChange{Browser: k, From: prevStatus, To: curStatus})
			changed = true
		}
	}

	if cur.Baseline != prev.Baseline {
		fc.Baseline = &BaselineChange{From: prev.Baseline, To: cur.Baseline}
		changed = true
	}

	if !changed {
		return nil
	}
	return &fc
}

// WriteReport persists a report as change-report.json content.
func WriteReport(path string, r Report) error {
	data, err := json.MarshalIndent(r, "", " ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ReadReport loads a previously written change report.
func ReadReport(path string) (Report, error) {
	var r Report
	data, err := os.ReadFile(path)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, err
	}
	return r, nil
}
