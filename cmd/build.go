package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/featwatch/featwatch/internal/utils"
	"github.com/featwatch/featwatch/pkg/artifact"
	"github.com/featwatch/featwatch/pkg/merge"
	"github.com/featwatch/featwatch/pkg/sources"
	"github.com/featwatch/featwatch/pkg/sources/caniuse"
	"github.com/featwatch/featwatch/pkg/sources/mdn"
	"github.com/featwatch/featwatch/pkg/sources/webstatus"
	"github.com/featwatch/featwatch/pkg/usage"
)

// Snapshot file names expected inside the data directory. The fetch command
// writes them; build reads them.
const (
	primarySnapshot   = "caniuse.json"
	secondarySnapshot = "webstatus.json"
	tertiarySnapshot  = "mdn.json"
	usageSnapshot     = "usage.json"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the normalized feature catalog from source snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("datadir")
		outDir, _ := cmd.Flags().GetString("out")

		// A missing source file or malformed top-level JSON aborts the
		// whole run: downstream stages cannot produce meaningful output.
		primaryRecs, err := extract(caniuse.New(), filepath.Join(dataDir, primarySnapshot))
		if err != nil {
			return err
		}
		secondaryRecs, err := extract(webstatus.New(), filepath.Join(dataDir, secondarySnapshot))
		if err != nil {
			return err
		}
		tertiaryRecs, err := extract(mdn.New(), filepath.Join(dataDir, tertiarySnapshot))
		if err != nil {
			return err
		}

		usageData, err := os.ReadFile(filepath.Join(dataDir, usageSnapshot))
		if err != nil {
			return fmt.Errorf("reading usage snapshot: %w", err)
		}
		table, err := usage.ParseTable(usageData)
		if err != nil {
			return err
		}

		features, stages := merge.Merge(primaryRecs, secondaryRecs, tertiaryRecs)
		for _, s := range stages {
			utils.Log.Infof("merge %s: %d records, %d merged, %d added, %d errors",
				s.Source, s.Total, s.Merged, s.Added, s.Errors)
		}

		for _, f := range features {
			f.Usage = usage.Estimate(f.Support, table, f.Usage.Full, f.Usage.Partial)
		}

		if err := artifact.WriteCatalog(outDir, features); err != nil {
			return err
		}
		fmt.Printf("Wrote %d features to %s\n", len(features), outDir)
		return nil
	},
}

func extract(e sources.Extractor, path string) ([]sources.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s snapshot: %w", e.Name(), err)
	}
	records, stats, err := e.Extract(data)
	if err != nil {
		return nil, err
	}
	utils.Log.Infof("extract %s: %d records, %d parsed, %d skipped",
		e.Name(), stats.Total, stats.Parsed, stats.Skipped)
	return records, nil
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().String("out", "dist", "Output directory for index.json and feature detail files")
}
