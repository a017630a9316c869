package cli

import (
	"fmt"
	"path"
	"time"

	"github.com/spf13/cobra"
)

func newMigrateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				db, err := a.openDB(cmd.Context(), false)
				if err != nil {
					return err
				}
				defer db.Close()

				results, err := db.Migrate(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(results) == 0 {
					fmt.Fprintln(out, "database is up to date")
					return nil
				}
				for _, r := range results {
					fmt.Fprintf(out, "OK   %-40s %s\n", path.Base(r.Source.Path), r.Duration.Round(time.Millisecond))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show which migrations are applied",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				db, err := a.openDB(cmd.Context(), false)
				if err != nil {
					return err
				}
				defer db.Close()

				status, err := db.MigrationStatus(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, s := range status {
					applied := "Pending"
					if !s.AppliedAt.IsZero() {
						applied = s.AppliedAt.UTC().Format(time.DateTime)
					}
					fmt.Fprintf(out, "%-20s %s\n", applied, path.Base(s.Source.Path))
				}
				return nil
			},
		},
	)
	return cmd
}
