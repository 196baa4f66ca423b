package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	domainerrors "github.com/lifelogapp/lifelog-server/internal/errors"
	"github.com/lifelogapp/lifelog-server/internal/service"
	"github.com/lifelogapp/lifelog-server/internal/timewindow"
)

func (a *app) addCmd() *cobra.Command {
	var (
		at   string
		tags []string
		meta map[string]string
	)

	cmd := &cobra.Command{
		Use:   "add <type> <content...>",
		Short: "Add an entry",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			in := service.CreateLogInput{
				Type:    args[0],
				Content: strings.Join(args[1:], " "),
			}
			if at != "" {
				ts, err := parseTimestamp(at, e.loc)
				if err != nil {
					return err
				}
				in.Timestamp = &ts
			}
			if len(meta) > 0 {
				in.Metadata = make(map[string]any, len(meta))
				for k, v := range meta {
					in.Metadata[k] = v
				}
			}
			if in.TagIDs, err = resolveTags(cmd, e, tags); err != nil {
				return err
			}

			l, err := e.logs.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s at %s\n", typeLabel(l.Type), l.ID, formatTime(l.Timestamp, e.loc))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "event time: epoch milliseconds, RFC 3339, or \"YYYY-MM-DD HH:MM\" in --tz")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tag name to attach (repeatable)")
	cmd.Flags().StringToStringVarP(&meta, "meta", "m", nil, "metadata key=value, e.g. url=https://example.com")
	return cmd
}

// parseTimestamp accepts epoch milliseconds, RFC 3339, or a local wall time.
func parseTimestamp(s string, loc *time.Location) (int64, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UnixMilli(), nil
	}
	if t, err := time.ParseInLocation(displayLayout, s, loc); err == nil {
		return t.UnixMilli(), nil
	}
	return 0, domainerrors.Validationf("invalid --at %q", s)
}

// resolveTags maps tag names to IDs. Unknown names are an error.
func resolveTags(cmd *cobra.Command, e *env, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	all, err := e.tags.List(cmd.Context())
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(all))
	for _, t := range all {
		byName[t.Name] = t.ID
	}

	ids := make([]string, 0, len(names))
	for _, name := range names {
		tagID, ok := byName[strings.TrimSpace(name)]
		if !ok {
			return nil, domainerrors.NotFoundf("tag %q not found", name)
		}
		ids = append(ids, tagID)
	}
	return ids, nil
}

func (a *app) dayCmd() *cobra.Command {
	var page service.PageRequest

	cmd := &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "List entries on a day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			date := timewindow.LocalDate(a.now().UnixMilli(), e.loc)
			if len(args) == 1 {
				date = args[0]
			}

			result, err := e.logs.ListByDay(cmd.Context(), date, a.tz, page)
			if err != nil {
				return err
			}
			return printPage(cmd.OutOrStdout(), result, e.loc)
		},
	}

	addPageFlags(cmd, &page)
	return cmd
}

func (a *app) archiveCmd() *cobra.Command {
	var page service.PageRequest

	cmd := &cobra.Command{
		Use:   "archive [type[,type...]...]",
		Short: "List entries of the given types across all time",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			result, err := e.logs.ListByTypes(cmd.Context(), args, page)
			if err != nil {
				return err
			}
			return printPage(cmd.OutOrStdout(), result, e.loc)
		},
	}

	addPageFlags(cmd, &page)
	return cmd
}

func addPageFlags(cmd *cobra.Command, page *service.PageRequest) {
	cmd.Flags().StringVarP(&page.Limit, "limit", "n", "", "page size (1-100, default 50)")
	cmd.Flags().StringVar(&page.Cursor, "cursor", "", "cursor printed by the previous page")
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			l, err := e.logs.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			tags, err := e.tags.List(cmd.Context())
			if err != nil {
				return err
			}
			names := make(map[string]string, len(tags))
			for _, t := range tags {
				names[t.ID] = t.Name
			}
			tagNames := make([]string, 0, len(l.TagIDs))
			for _, tagID := range l.TagIDs {
				tagNames = append(tagNames, names[tagID])
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "ID:       %s\n", l.ID)
			fmt.Fprintf(w, "Type:     %s\n", typeLabel(l.Type))
			fmt.Fprintf(w, "Time:     %s\n", formatTime(l.Timestamp, e.loc))
			fmt.Fprintf(w, "Tags:     %s\n", strings.Join(tagNames, ", "))
			if len(l.Metadata) > 0 {
				meta, err := json.Marshal(l.Metadata)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "Metadata: %s\n", meta)
			}
			fmt.Fprintf(w, "\n%s\n", l.Content)
			return nil
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.logs.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
