package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/featwatch/featwatch/pkg/artifact"
	"github.com/featwatch/featwatch/pkg/feature"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints statistics about the built feature catalog.",
	Long:  "Prints statistics about the built feature catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir, _ := cmd.Flags().GetString("out")

		indexPath := filepath.Join(outDir, artifact.IndexFile)
		entries, err := artifact.ReadIndex(indexPath)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("index not found: %s (run 'featwatch build' first)", indexPath)
			}
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No features in the catalog to generate stats.")
			return nil
		}

		type row struct {
			count    int
			baseline map[feature.Baseline]int
		}
		byCategory := map[string]*row{}
		for _, e := range entries {
			r := byCategory[e.Category]
			if r == nil {
				r = &row{baseline: map[feature.Baseline]int{}}
				byCategory[e.Category] = r
			}
			r.count++
			r.baseline[e.Baseline]++
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "CATEGORY\tFEATURES\tBASELINE HIGH\tBASELINE LOW\t")

		// The whole closed category set is printed, so a category with no
		// features shows up as an explicit zero row.
		var total, totalHigh, totalLow int
		for _, c := range feature.Categories() {
			r := byCategory[c]
			if r == nil {
				fmt.Fprintf(w, "%s\t0\t0\t0\t\n", c)
				continue
			}
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t\n", c, r.count, r.baseline[feature.BaselineHigh], r.baseline[feature.BaselineLow])
			total += r.count
			totalHigh += r.baseline[feature.BaselineHigh]
			totalLow += r.baseline[feature.BaselineLow]
		}

		fmt.Fprintln(w, " \t \t \t \t")
		fmt.Fprintf(w, "TOTAL\t%d\t%d\t%d\t\n", total, totalHigh, totalLow)

		w.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().String("out", "dist", "Directory holding the built catalog")
}
