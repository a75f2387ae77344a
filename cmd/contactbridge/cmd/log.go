package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/contactbridge/pkg/runlog"
)

// NewLogCommand creates the log command.
func NewLogCommand(a App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent sync runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sink, err := a.RunLog()
			if err != nil {
				return err
			}

			entries, err := sink.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), a.Format(), entries, func(w io.Writer) error {
				return writeEntries(w, entries)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}

func writeEntries(w io.Writer, entries []runlog.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "no sync runs recorded")
		return err
	}
	for _, e := range entries {
		_, err := fmt.Fprintf(w, "%s  %-8s %-5s pushed %d, new %d, merged %d, failed %d",
			e.Timestamp.Format(time.RFC3339), e.Account, e.Direction,
			e.Pushed, e.New, e.Merged, e.Failed)
		if err != nil {
			return err
		}
		if e.Errors != "" {
			if _, err := fmt.Fprintf(w, "  [%s]", e.Errors); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
