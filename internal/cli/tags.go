package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lifelogapp/lifelog-server/internal/service"
)

func (a *app) tagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage tags",
	}
	cmd.AddCommand(a.tagsListCmd())
	cmd.AddCommand(a.tagsAddCmd())
	cmd.AddCommand(a.tagsRmCmd())
	cmd.AddCommand(a.tagsLogsCmd())
	return cmd
}

func (a *app) tagsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tags by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			tags, err := e.tags.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tags yet. Use 'lifelog tags add' to create one.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, t := range tags {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, t.Color)
			}
			return tw.Flush()
		},
	}
}

func (a *app) tagsAddCmd() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			t, err := e.tags.Create(cmd.Context(), service.CreateTagInput{Name: args[0], Color: color})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created tag %s %s\n", t.Name, t.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "display color, e.g. #4caf50")
	return cmd
}

func (a *app) tagsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a tag and detach it from every entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.tags.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted tag %s\n", args[0])
			return nil
		},
	}
}

func (a *app) tagsLogsCmd() *cobra.Command {
	var page service.PageRequest

	cmd := &cobra.Command{
		Use:   "logs <id>",
		Short: "List entries carrying a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			result, err := e.logs.ListByTag(cmd.Context(), args[0], page)
			if err != nil {
				return err
			}
			return printPage(cmd.OutOrStdout(), result, e.loc)
		},
	}

	addPageFlags(cmd, &page)
	return cmd
}
