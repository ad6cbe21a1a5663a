package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/anhofmann/dsar/internal/scheduler"
)

var sendCmd = &cobra.Command{
	Use:   "send [request-id]",
	Short: "Send a drafted request, or all drafts with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if all == (len(args) == 1) {
			return fmt.Errorf("pass exactly one of a request id or --all")
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		sched, err := a.scheduler(true)
		if err != nil {
			return err
		}

		now := time.Now()
		if all {
			outcomes, err := sched.SendAllDrafts(cmd.Context(), now)
			if err != nil {
				return err
			}
			sent := 0
			for _, o := range outcomes {
				if o.Result == scheduler.ResultSent {
					sent++
				}
			}
			fmt.Printf("Sent %d/%d drafts\n", sent, len(outcomes))
			printOutcomes(outcomes)
			return nil
		}

		if err := sched.SendRequest(cmd.Context(), args[0], now); err != nil {
			return err
		}
		fmt.Printf("Request %s sent\n", args[0])
		return nil
	},
}

func init() {
	sendCmd.Flags().Bool("all", false, "Send every drafted request")
}
