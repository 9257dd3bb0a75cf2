package cmd

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/featwatch/featwatch/internal/utils"
	"github.com/featwatch/featwatch/pkg/artifact"
	"github.com/featwatch/featwatch/pkg/diff"
	"github.com/featwatch/featwatch/pkg/feature"
)

const previousIndexFile = "index.prev.json"

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Diff the current index against the previous snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("datadir")
		outDir, _ := cmd.Flags().GetString("out")
		reportPath, _ := cmd.Flags().GetString("report")
		previousOverride, _ := cmd.Flags().GetString("previous")
		noRotate, _ := cmd.Flags().GetBool("no-rotate")

		currentPath := filepath.Join(outDir, artifact.IndexFile)
		current, err := artifact.ReadIndex(currentPath)
		if err != nil {
			return fmt.Errorf("reading current index: %w", err)
		}
		curID, err := snapshotID(currentPath)
		if err != nil {
			return err
		}

		// First run: no previous snapshot means an empty report, not an
		// error.
		previousPath := filepath.Join(dataDir, previousIndexFile)
		if previousOverride != "" {
			previousPath = previousOverride
		}
		var previous []feature.IndexEntry
		prevID := ""
		if _, statErr := os.Stat(previousPath); statErr == nil {
			previous, err = artifact.ReadIndex(previousPath)
			if err != nil {
				return fmt.Errorf("reading previous index: %w", err)
			}
			if prevID, err = snapshotID(previousPath); err != nil {
				return err
			}
		} else {
			utils.Log.Info("No previous snapshot found; producing an empty report")
		}

		report := diff.Diff(previous, current, prevID, curID)
		if err := diff.WriteReport(reportPath, report); err != nil {
			return err
		}
		fmt.Printf("Found %d changed features, report written to %s\n", report.TotalChanges, reportPath)

		// Rotation always targets the stored snapshot, never an explicit
		// --previous override.
		if !noRotate {
			if err := copyFile(currentPath, filepath.Join(dataDir, previousIndexFile)); err != nil {
				return fmt.Errorf("rotating snapshot: %w", err)
			}
		}
		return nil
	},
}

// snapshotID derives a stable identifier for an index snapshot from its
// content.
func snapshotID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum[:8]), nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().String("out", "dist", "Directory holding the current index.json")
	diffCmd.Flags().String("report", "change-report.json", "Path to write the change report")
	diffCmd.Flags().String("previous", "", "Explicit previous index snapshot (default: the stored copy in the data directory)")
	diffCmd.Flags().Bool("no-rotate", false, "Do not replace the stored previous snapshot with the current one")
}
