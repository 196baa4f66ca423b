package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lifelogapp/lifelog-server/internal/service"
)

func (a *app) searchCmd() *cobra.Command {
	var logType, date string

	cmd := &cobra.Command{
		Use:   "search <text...>",
		Short: "Find entries containing text (last 90 days unless --date is given)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			results, err := e.srch.Search(cmd.Context(), service.SearchRequest{
				Query: strings.Join(args, " "),
				TZ:    a.tz,
				Type:  logType,
				Date:  date,
			})
			if err != nil {
				return err
			}
			return printLogs(cmd.OutOrStdout(), results, e.loc)
		},
	}

	cmd.Flags().StringVar(&logType, "type", "", "restrict to one log type")
	cmd.Flags().StringVar(&date, "date", "", "restrict to one day (YYYY-MM-DD)")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show activity counts, recent bookmarks and top tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			stats, err := e.stats.Get(cmd.Context(), a.tz, month)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Today: %d\n", stats.TodayCount)
			fmt.Fprintf(w, "This week: %d\n", stats.WeekCount)
			if len(stats.RecentURLs) > 0 {
				fmt.Fprintln(w, "\nRecent bookmarks:")
				for _, u := range stats.RecentURLs {
					fmt.Fprintf(w, "  %s\n", u)
				}
			}
			if len(stats.TopTags) > 0 {
				fmt.Fprintln(w, "\nTop tags:")
				for _, t := range stats.TopTags {
					fmt.Fprintf(w, "  %-20s %d\n", t.Name, t.Count)
				}
			}
			if month != "" {
				fmt.Fprintf(w, "\n%s:\n", month)
				for _, d := range stats.MonthDays {
					fmt.Fprintf(w, "  %s %s %d\n", d.Date, strings.Repeat("#", min(d.Count, 40)), d.Count)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "include per-day counts for a month (YYYY-MM)")
	return cmd
}
