package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/featwatch/featwatch/internal/utils"
	"github.com/featwatch/featwatch/pkg/artifact"
	"github.com/featwatch/featwatch/pkg/diff"
	"github.com/featwatch/featwatch/pkg/notify"
	"github.com/featwatch/featwatch/pkg/storage"
	"github.com/featwatch/featwatch/pkg/trigger"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Evaluate tracked features against a change report and notify users",
	RunE: func(cmd *cobra.Command, args []string) error {
		reportPath, _ := cmd.Flags().GetString("report")
		outDir, _ := cmd.Flags().GetString("out")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		report, err := diff.ReadReport(reportPath)
		if err != nil {
			return fmt.Errorf("reading change report: %w", err)
		}
		if report.TotalChanges == 0 {
			fmt.Println("No changes in report, nothing to evaluate.")
			return nil
		}

		appURL := viper.GetString("app.url")
		var dispatcher notify.Dispatcher
		if !dryRun {
			// Missing credentials are a fatal startup error.
			dispatcher, err = notify.NewHTTPDispatcher(
				viper.GetString("notify.endpoint"),
				viper.GetString("notify.token"))
			if err != nil {
				return err
			}
		}

		storePath, err := utils.GetAbsStorePath(viper.GetString("store.path"))
		if err != nil {
			return err
		}
		lock, err := utils.NewStoreLock(storePath)
		if err != nil {
			return err
		}
		if err := lock.Lock(); err != nil {
			return err
		}
		defer lock.Unlock()

		db, err := storage.Open(storePath)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		sent, failed := 0, 0
		for i := range report.Changes {
			change := &report.Changes[i]

			trackings, err := db.ListActiveByFeature(ctx, change.ID)
			if err != nil {
				return err
			}
			if len(trackings) == 0 {
				continue
			}

			full, err := artifact.ReadDetail(outDir, change.ID)
			if err != nil {
				utils.Log.Warnf("No detail record for changed feature %s: %v", change.ID, err)
				continue
			}

			for _, t := range trackings {
				fired := trigger.Evaluate(t.Triggers, change, full)
				if len(fired) == 0 {
					continue
				}

				msg := notify.Build(t, fired, appURL)
				if dryRun {
					fmt.Printf("[dry-run] would notify %s about %s (%d triggers)\n",
						t.Contact, t.FeatureID, len(fired))
					continue
				}

				// Delivery failures are per-tracking: log and leave the
				// row active so the next run retries it.
				if err := dispatcher.Send(ctx, msg); err != nil {
					utils.Log.Warnf("Failed to notify %s for tracking %d: %v", t.Contact, t.ID, err)
					failed++
					continue
				}
				if err := db.MarkNotified(ctx, t.ID); err != nil {
					utils.Log.Warnf("Failed to mark tracking %d notified: %v", t.ID, err)
					continue
				}
				sent++
			}
		}

		fmt.Printf("Notifications sent: %d, failed: %d\n", sent, failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.Flags().String("report", "change-report.json", "Path to the change report")
	notifyCmd.Flags().String("out", "dist", "Directory holding the built catalog")
	notifyCmd.Flags().Bool("dry-run", false, "Evaluate triggers without sending or updating anything")
}
