package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lifelogapp/lifelog-server/internal/domain"
	"github.com/lifelogapp/lifelog-server/internal/store"
	"github.com/lifelogapp/lifelog-server/internal/timewindow"
)

const displayLayout = "2006-01-02 15:04"

// typeLabel renders a log type for people: wake_up becomes "Wake Up".
func typeLabel(t domain.LogType) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(t), "_", " "))
}

func formatTime(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(loc).Format(displayLayout)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func printLogs(w io.Writer, logs []*domain.Log, loc *time.Location) error {
	if len(logs) == 0 {
		_, err := fmt.Fprintln(w, "No entries.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, l := range logs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.ID, formatTime(l.Timestamp, loc), typeLabel(l.Type), truncate(l.Content, 60))
	}
	return tw.Flush()
}

func printPage(w io.Writer, page *store.PaginatedResult[*domain.Log], loc *time.Location) error {
	if err := printLogs(w, page.Items, loc); err != nil {
		return err
	}
	if page.HasMore && page.NextCursor != nil {
		_, err := fmt.Fprintf(w, "more: --cursor %s\n", *page.NextCursor)
		return err
	}
	return nil
}

func loadZone(tz string) (*time.Location, error) {
	return timewindow.LoadZone(tz)
}
