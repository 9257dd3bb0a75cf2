// Package merge folds the three extracted sources into one normalized
// feature map, in strict source-priority order. A supplementary source only
// contributes the metadata it is authoritative for; it never overwrites
// support or usage data computed from a higher-priority source.
package merge

import (
	"sort"

	"github.com/featwatch/featwatch/internal/utils"
	"github.com/featwatch/featwatch/pkg/feature"
	"github.com/featwatch/featwatch/pkg/sources"
)

const (
	sourcePrimary   = "caniuse"
	sourceSecondary = "webstatus"
	sourceTertiary  = "mdn"
)

// StageStats counts what happened while folding one source in.
type StageStats struct {
	Source string
	Total  int
	Merged int
	Added  int
	Errors int
}

// Merge processes the sources strictly primary -> secondary -> tertiary.
// Errors on individual records are counted and skip that record only.
func Merge(primary, secondary, tertiary []sources.Record) (map[string]*feature.Feature, []StageStats) {
	features := map[string]*feature.Feature{}

	pStats := StageStats{Source: sourcePrimary}
	for _, rec := range primary {
		pStats.Total++
		if rec.ID == "" || rec.Support == nil {
			utils.Log.Warnf("merge: dropping invalid %s record %q", sourcePrimary, rec.ID)
			pStats.Errors++
			continue
		}
		features[rec.ID] = &feature.Feature{
			ID:          rec.ID,
			Source:      sourcePrimary,
			Name:        rec.Name,
			Description: rec.Description,
			Category:    rec.Category,
			Support:     rec.Support,
			Usage: feature.Usage{
				Full:    rec.UsageFull,
				Partial: rec.UsagePartial,
			},
			Baseline: feature.BaselineNone,
			Provenance: feature.Provenance{
				Primary: feature.SourceRef{Source: sourcePrimary, ID: rec.ID},
			},
		}
		pStats.Added++
	}

	sStats := foldSource(features, secondary, sourceSecondary, "web-", supplementSecondary)
	tStats := foldSource(features, tertiary, sourceTertiary, "mdn-", supplementTertiary)

	return features, []StageStats{pStats, sStats, tStats}
}

// foldSource merges one supplementary source into the feature map. Per
// record it tries, in order: the explicit cross-source link, the similarity
// heuristic against every existing feature, and finally insertion as a new
// record under a source-prefixed id.
func foldSource(
	features map[string]*feature.Feature,
	records []sources.Record,
	source, prefix string,
	supplement func(*feature.Feature, sources.Record),
) StageStats {
	stats := StageStats{Source: source}
	for _, rec := range records {
		stats.Total++
		if rec.ID == "" || rec.Support == nil {
			utils.Log.Warnf("merge: dropping invalid %s record %q", source, rec.ID)
			stats.Errors++
			continue
		}

		if rec.Link != "" {
			if f, ok := features[rec.Link]; ok {
				supplement(f, rec)
				f.Provenance.Supplements = append(f.Provenance.Supplements,
					feature.SourceRef{Source: source, ID: rec.ID, Match: feature.MatchViaLink})
				stats.Merged++
				continue
			}
		}

		if f, kind := findDuplicate(features, rec); f != nil {
			supplement(f, rec)
			f.Provenance.Supplements = append(f.Provenance.Supplements,
				feature.SourceRef{Source: source, ID: rec.ID, Match: kind})
			stats.Merged++
			continue
		}

		nf := &feature.Feature{
			ID:          prefix + rec.ID,
			Source:      source,
			Name:        rec.Name,
			Description: rec.Description,
			Category:    rec.Category,
			Support:     rec.Support,
			Baseline:    feature.BaselineNone,
			Docs:        rec.Docs,
			Provenance: feature.Provenance{
				Primary: feature.SourceRef{Source: source, ID: rec.ID},
			},
		}
		if rec.Baseline != "" {
			nf.Baseline = rec.Baseline
		}
		features[nf.ID] = nf
		stats.Added++
	}
	return stats
}

// findDuplicate runs the similarity heuristic against every existing merged
// record, in sorted id order so re-runs are deterministic.
func findDuplicate(features map[string]*feature.Feature, rec sources.Record) (*feature.Feature, feature.MatchKind) {
	ids := make([]string, 0, len(features))
	for id := range features {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		f := features[id]
		if dup, kind := AreLikelyDuplicates(rec.ID, rec.Name, f.ID, f.Name); dup {
			return f, kind
		}
	}
	return nil, ""
}

// supplementSecondary applies the metadata the secondary source is
// authoritative for: the baseline tier.
func supplementSecondary(f *feature.Feature, rec sources.Record) {
	if rec.Baseline != "" {
		f.Baseline = rec.Baseline
	}
}

// supplementTertiary applies the metadata the tertiary source is
// authoritative for: the external documentation link, plus category
// inference when the higher-priority sources left the feature uncategorized.
func supplementTertiary(f *feature.Feature, rec sources.Record) {
	if f.Docs == "" && rec.Docs != "" {
		f.Docs = rec.Docs
	}
	if f.Category == "other" && rec.Category != "other" && rec.Category != "" {
		f.Category = rec.Category
	}
}
