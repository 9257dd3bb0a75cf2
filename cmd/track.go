package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/featwatch/featwatch/internal/utils"
	"github.com/featwatch/featwatch/pkg/feature"
	"github.com/featwatch/featwatch/pkg/storage"
	"github.com/featwatch/featwatch/pkg/trigger"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Manage feature trackings",
}

var trackAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Track a feature and get notified when a condition crosses",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		contact, _ := cmd.Flags().GetString("contact")
		featureID, _ := cmd.Flags().GetString("feature")
		title, _ := cmd.Flags().GetString("title")
		specs, _ := cmd.Flags().GetStringArray("when")

		if featureID == "" {
			return fmt.Errorf("please provide a feature id via --feature")
		}
		if len(specs) == 0 {
			return fmt.Errorf("please provide at least one condition via --when")
		}
		if title == "" {
			title = featureID
		}

		triggers := make([]trigger.Trigger, 0, len(specs))
		for _, s := range specs {
			t, err := parseTriggerSpec(s)
			if err != nil {
				return err
			}
			triggers = append(triggers, t)
		}

		db, lock, err := openStore()
		if err != nil {
			return err
		}
		defer lock.Unlock()
		defer db.Close()

		id, err := db.CreateTracking(cmd.Context(), trigger.Tracking{
			UserRef:      user,
			Contact:      contact,
			FeatureID:    featureID,
			FeatureTitle: title,
			Triggers:     triggers,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Tracking %d created for feature %s (%d conditions)\n", id, featureID, len(triggers))
		return nil
	},
}

var trackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trackings",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")

		db, lock, err := openStore()
		if err != nil {
			return err
		}
		defer lock.Unlock()
		defer db.Close()

		trackings, err := db.ListTrackings(cmd.Context(), status)
		if err != nil {
			return err
		}
		if len(trackings) == 0 {
			fmt.Println("No trackings found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tUSER\tFEATURE\tSTATUS\tCONDITIONS\t")
		for _, t := range trackings {
			conditions := make([]string, 0, len(t.Triggers))
			for _, tr := range t.Triggers {
				conditions = append(conditions, tr.String())
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t\n",
				t.ID, t.UserRef, t.FeatureID, t.Status, strings.Join(conditions, "; "))
		}
		w.Flush()
		return nil
	},
}

var trackDoneCmd = &cobra.Command{
	Use:   "done",
	Short: "Mark a tracking as completed",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requiredID(cmd)
		if err != nil {
			return err
		}
		db, lock, err := openStore()
		if err != nil {
			return err
		}
		defer lock.Unlock()
		defer db.Close()

		if err := db.CompleteTracking(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Tracking %d completed\n", id)
		return nil
	},
}

var trackRmCmd = &cobra.Command{
	Use:   "rm",
	Short: "Delete a tracking",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requiredID(cmd)
		if err != nil {
			return err
		}
		db, lock, err := openStore()
		if err != nil {
			return err
		}
		defer lock.Unlock()
		defer db.Close()

		if err := db.DeleteTracking(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Tracking %d deleted\n", id)
		return nil
	},
}

func requiredID(cmd *cobra.Command) (int64, error) {
	id, _ := cmd.Flags().GetInt64("id")
	if id == 0 {
		return 0, fmt.Errorf("please provide a tracking id via --id")
	}
	return id, nil
}

func openStore() (*storage.DB, *utils.StoreLock, error) {
	storePath, err := utils.GetAbsStorePath(viper.GetString("store.path"))
	if err != nil {
		return nil, nil, err
	}
	lock, err := utils.NewStoreLock(storePath)
	if err != nil {
		return nil, nil, err
	}
	if err := lock.Lock(); err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(storePath)
	if err != nil {
		lock.Unlock()
		return nil, nil, err
	}
	return db, lock, nil
}

// parseTriggerSpec turns a compact condition string into a trigger:
//
//	usage:<full|partial|total>:<threshold>
//	support:<browser>:<full|partial>
//	version:<browser>:<version>:<full|partial>
//	baseline:<low|high>
func parseTriggerSpec(spec string) (trigger.Trigger, error) {
	parts := strings.Split(spec, ":")
	var t trigger.Trigger

	switch parts[0] {
	case "usage":
		if len(parts) != 3 {
			return t, fmt.Errorf("invalid condition %q: expected usage:<kind>:<threshold>", spec)
		}
		threshold, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return t, fmt.Errorf("invalid threshold in %q: %w", spec, err)
		}
		t = trigger.Trigger{
			Kind:      trigger.KindUsageThreshold,
			UsageKind: trigger.UsageKind(parts[1]),
			Threshold: threshold,
		}
	case "support":
		if len(parts) != 3 {
			return t, fmt.Errorf("invalid condition %q: expected support:<browser>:<status>", spec)
		}
		t = trigger.Trigger{
			Kind:    trigger.KindBrowserSupport,
			Browser: parts[1],
			Status:  feature.Status(parts[2]),
		}
	case "version":
		if len(parts) != 4 {
			return t, fmt.Errorf("invalid condition %q: expected version:<browser>:<version>:<status>", spec)
		}
		t = trigger.Trigger{
			Kind:    trigger.KindBrowserVersion,
			Browser: parts[1],
			Version: parts[2],
			Status:  feature.Status(parts[3]),
		}
	case "baseline":
		if len(parts) != 2 {
			return t, fmt.Errorf("invalid condition %q: expected baseline:<tier>", spec)
		}
		t = trigger.Trigger{
			Kind:     trigger.KindBaseline,
			Baseline: feature.Baseline(parts[1]),
		}
	default:
		return t, fmt.Errorf("unknown condition type %q", parts[0])
	}

	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("invalid condition %q: %w", spec, err)
	}
	return t, nil
}

func init() {
	rootCmd.AddCommand(trackCmd)
	trackCmd.AddCommand(trackAddCmd)
	trackCmd.AddCommand(trackListCmd)
	trackCmd.AddCommand(trackDoneCmd)
	trackCmd.AddCommand(trackRmCmd)

	trackAddCmd.Flags().String("user", "", "User reference")
	trackAddCmd.Flags().String("contact", "", "Contact address for notifications")
	trackAddCmd.Flags().String("feature", "", "Feature id to track")
	trackAddCmd.Flags().String("title", "", "Feature title shown in notifications (default: feature id)")
	trackAddCmd.Flags().StringArray("when", nil, "Condition spec, repeatable. Example: --when usage:total:80 --when support:safari:full")

	trackListCmd.Flags().String("status", "", "Filter by status (active, notified, completed)")
	trackDoneCmd.Flags().Int64("id", 0, "Tracking id")
	trackRmCmd.Flags().Int64("id", 0, "Tracking id")
}
