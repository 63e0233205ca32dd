package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/audit"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/db"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Manage the local audit trail",
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete audit entries older than a cutoff",
	Long: `Deletes audit entries recorded before the cutoff given with --before.
The cutoff is an age ("90d", "720h") or a date ("2024-01-31", RFC 3339).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		before, _ := cmd.Flags().GetString("before")
		cutoff, err := parseCutoff(before, time.Now())
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := db.Open(databasePath(cfg))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		n, err := audit.NewStore(database).DeleteBefore(context.Background(), cutoff)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d audit entries recorded before %s\n", n, cutoff.UTC().Format(time.RFC3339))
		return nil
	},
}

func init() {
	auditPruneCmd.Flags().String("before", "", "cutoff age or date (required)")
	auditPruneCmd.MarkFlagRequired("before")
	auditCmd.AddCommand(auditPruneCmd)
	rootCmd.AddCommand(auditCmd)
}

// parseCutoff turns an age or a date into an absolute time.
func parseCutoff(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("--before is required")
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("invalid age %q", s)
		}
		return now.AddDate(0, 0, -n), nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("invalid age %q", s)
		}
		return now.Add(-d), nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid cutoff %q: want an age like 90d or a date like 2024-01-31", s)
}
