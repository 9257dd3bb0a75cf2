// Package artifact projects the merged feature map into the compact search
// index and the per-feature detail records. Output is deterministic: the
// same merged map always produces the same bytes. Writes are staged and
// swapped so a failed run leaves the prior artifacts untouched.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/featwatch/featwatch/pkg/browsers"
	"github.com/featwatch/featwatch/pkg/feature"
)

const (
	IndexFile   = "index.json"
	FeaturesDir = "features"

	descriptionLimit = 160
)

// detailRecord is the lossless, short-keyed on-disk form of a Feature.
type detailRecord struct {
	ID          string                            `json:"id"`
	Source      string                            `json:"source"`
	Name        string                            `json:"name"`
	Description string                            `json:"description"`
	Category    string                            `json:"category"`
	Support     map[string]*feature.SupportDetail `json:"support"`
	Usage       feature.Usage                     `json:"usage"`
	Baseline    feature.Baseline                  `json:"baseline"`
	Docs        string                            `json:"docs,omitempty"`
	Provenance  feature.Provenance                `json:"sourceData"`
}

// BuildIndex projects the merged map into index entries sorted by id. The
// fixed exclusion list removes low-value browsers from the quick-support
// view without touching the detail records.
func BuildIndex(features map[string]*feature.Feature) []feature.IndexEntry {
	entries := make([]feature.IndexEntry, 0, len(features))
	for _, f := range features {
		quick := make(map[string]feature.Status, len(f.Support))
		for b, d := range f.Support {
			if browsers.IndexExcluded(b) {
				continue
			}
			quick[browsers.ShortKey(b)] = d.Current
		}
		entries = append(entries, feature.IndexEntry{
			ID:          f.ID,
			Name:        f.Name,
			Description: feature.TruncateDescription(feature.StripMarkup(f.Description), descriptionLimit),
			Category:    f.Category,
			Support:     quick,
			UsageTotal:  f.Usage.Total,
			Baseline:    f.Baseline,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// WriteCatalog writes index.json and one features/<id>.json per feature
// under dir. Everything is marshaled up front, staged into temporary paths,
// then swapped in: on any error the previous artifacts remain.
func WriteCatalog(dir string, features map[string]*feature.Feature) error {
	indexBytes, err := json.MarshalIndent(BuildIndex(features), "", " ")
	if err != nil {
		return fmt.Errorf("marshaling index: %w", err)
	}

	ids := make([]string, 0, len(features))
	for id := range features {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	details := make(map[string][]byte, len(ids))
	for _, id := range ids {
		b, err := json.MarshalIndent(toDetail(features[id]), "", " ")
		if err != nil {
			return fmt.Errorf("marshaling feature %s: %w", id, err)
		}
		details[id] = b
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	stagedFeatures := filepath.Join(dir, FeaturesDir+".tmp")
	if err := os.RemoveAll(stagedFeatures); err != nil {
		return err
	}
	if err := os.MkdirAll(stagedFeatures, 0o755); err != nil {
		return err
	}
	for _, id := range ids {
		if err := os.WriteFile(filepath.Join(stagedFeatures, id+".json"), details[id], 0o644); err != nil {
			os.RemoveAll(stagedFeatures)
			return err
		}
	}
	stagedIndex := filepath.Join(dir, IndexFile+".tmp")
	if err := os.WriteFile(stagedIndex, indexBytes, 0o644); err != nil {
		os.RemoveAll(stagedFeatures)
		return err
	}

	featuresPath := filepath.Join(dir, FeaturesDir)
	if err := os.RemoveAll(featuresPath); err != nil {
		return err
	}
	if err := os.Rename(stagedFeatures, featuresPath); err != nil {
		return err
	}
	return os.Rename(stagedIndex, filepath.Join(dir, IndexFile))
}

// ReadIndex loads a previously written index snapshot.
func ReadIndex(path string) ([]feature.IndexEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []feature.IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing index %s: %w", path, err)
	}
	return entries, nil
}

// ReadDetail loads one per-feature detail record back into its full form.
func ReadDetail(dir, id string) (*feature.Feature, error) {
	data, err := os.ReadFile(filepath.Join(dir, FeaturesDir, id+".json"))
	if err != nil {
		return nil, err
	}
	var rec detailRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing feature %s: %w", id, err)
	}
	support := make(feature.BrowserSupport, len(rec.Support))
	for short, d := range rec.Support {
		support[browsers.FromShortKey(short)] = d
	}
	return &feature.Feature{
		ID:          rec.ID,
		Source:      rec.Source,
		Name:        rec.Name,
		Description: rec.Description,
		Category:    rec.Category,
		Support:     support,
		Usage:       rec.Usage,
		Baseline:    rec.Baseline,
		Docs:        rec.Docs,
		Provenance:  rec.Provenance,
	}, nil
}

func toDetail(f *feature.Feature) detailRecord {
	support := make(map[string]*feature.SupportDetail, len(f.Support))
	for b, d := range f.Support {
		support[browsers.ShortKey(b)] = d
	}
	return detailRecord{
		ID:          f.ID,
		Source:      f.Source,
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		Support:     support,
		Usage:       f.Usage,
		Baseline:    f.Baseline,
		Docs:        f.Docs,
		Provenance:  f.Provenance,
	}
}
