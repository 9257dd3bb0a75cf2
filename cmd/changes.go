package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/featwatch/featwatch/pkg/diff"
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Show the contents of a change report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reportPath, _ := cmd.Flags().GetString("report")
		if _, err := os.Stat(reportPath); err != nil {
			return fmt.Errorf("change report not found: %s", reportPath)
		}
		report, err := diff.ReadReport(reportPath)
		if err != nil {
			return err
		}

		fmt.Printf("%s  %s -> %s  (%d changes)\n",
			report.Timestamp.Format("2006-01-02 15:04:05"),
			report.PreviousSnapshot, report.CurrentSnapshot, report.TotalChanges)

		for _, c := range report.Changes {
			if c.UsageDelta != nil {
				fmt.Printf("📈  %s  usage %+.2f%%\n", c.ID, *c.UsageDelta)
			}
			for _, s := range c.Support {
				fmt.Printf("🔄  %s  %s  %s -> %s\n", c.ID, s.Browser, s.From, s.To)
			}
			if c.Baseline != nil {
				fmt.Printf("🆕  %s  baseline  %s -> %s\n", c.ID, c.Baseline.From, c.Baseline.To)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(changesCmd)
	changesCmd.Flags().String("report", "change-report.json", "Path to the change report")
}
