package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/contactbridge"
	"github.com/agentstation/contactbridge/pkg/reconcile"
	"github.com/agentstation/contactbridge/pkg/runlog"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(a App) *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync cycle",
		Long: `Sync acquires the shared lock, pulls the other party's pending
buffer rows into this party's directory, pushes this party's changed
contacts into the buffer, and releases the lock.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bridge, err := a.Bridge()
			if err != nil {
				return err
			}

			var opts []contactbridge.SyncOption
			switch direction {
			case "", "sync":
			case "push":
				opts = append(opts, contactbridge.WithDirection(runlog.DirectionPush))
			case "pull":
				opts = append(opts, contactbridge.WithDirection(runlog.DirectionPull))
			default:
				return fmt.Errorf("unknown direction %q, want push, pull, or sync", direction)
			}

			res, err := bridge.Sync(cmd.Context(), opts...)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), a.Format(), res, func(w io.Writer) error {
				return writeRunResult(w, res)
			})
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "sync", "restrict the run: push, pull, or sync")
	return cmd
}

func writeRunResult(w io.Writer, res *contactbridge.RunResult) error {
	pushed, created, merged, failed := res.Counts()
	_, err := fmt.Fprintf(w, "%s %s: pushed %d, new %d, merged %d, failed %d (%s)\n",
		res.Party, res.Direction, pushed, created, merged, failed, res.Duration.Round(time.Millisecond))
	if err != nil {
		return err
	}

	for _, phase := range []*reconcile.Result{res.Pull, res.Push} {
		if phase == nil {
			continue
		}
		for _, e := range phase.Errors {
			if _, err := fmt.Fprintf(w, "  error: %v\n", e); err != nil {
				return err
			}
		}
	}
	return nil
}
