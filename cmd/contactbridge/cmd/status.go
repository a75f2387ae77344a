package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(a App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show buffer occupancy",
		Long: `Status counts the buffer rows by source party and state without
acquiring the sync lock.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bridge, err := a.Bridge()
			if err != nil {
				return err
			}

			st, err := bridge.Status(cmd.Context())
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), a.Format(), st, func(w io.Writer) error {
				if _, err := fmt.Fprintf(w, "%d buffer rows\n", st.Total); err != nil {
					return err
				}
				for _, party := range sortedKeys(st.Pending, st.Consumed) {
					_, err := fmt.Fprintf(w, "  %s: %d pending, %d consumed\n",
						party, st.Pending[party], st.Consumed[party])
					if err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func sortedKeys(maps ...map[string]int) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range maps {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
