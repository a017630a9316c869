package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/conftrack/internal/model"
	"github.com/sakif/conftrack/internal/service"
	"github.com/sakif/conftrack/internal/validation"
)

func newEventCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Manage events",
	}
	cmd.AddCommand(newEventAddCommand(a), newEventListCommand(a))
	return cmd
}

func newEventAddCommand(a *app) *cobra.Command {
	var slug, title, start, end string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			event := &model.Event{Slug: slug, Title: title}
			var err error
			if event.StartDate, err = parseDate("start", start); err != nil {
				return err
			}
			if event.EndDate, err = parseDate("end", end); err != nil {
				return err
			}

			db, err := a.openDB(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer db.Close()

			events := service.NewEventService(db.Events(), validation.New(), a.cfg.Events.Current, a.logger)
			if err := events.Create(cmd.Context(), event); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created event %s (%s)\n", event.Slug, event.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&slug, "slug", "", "URL slug, e.g. osb2026 (required)")
	cmd.Flags().StringVar(&title, "title", "", "display title (required)")
	cmd.Flags().StringVar(&start, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "last day, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("slug")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newEventListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List events, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openDB(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer db.Close()

			events := service.NewEventService(db.Events(), validation.New(), a.cfg.Events.Current, a.logger)
			list, err := events.List(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SLUG\tTITLE\tSTART\tEND")
			for _, e := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Slug, e.Title, dateOrDash(e.StartDate), dateOrDash(e.EndDate))
			}
			return tw.Flush()
		},
	}
}

func parseDate(flag, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: want YYYY-MM-DD, got %q", flag, value)
	}
	return t, nil
}

func dateOrDash(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}
