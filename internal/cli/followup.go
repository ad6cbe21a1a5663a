package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/anhofmann/dsar/internal/scheduler"
)

var followupCmd = &cobra.Command{
	Use:   "followup",
	Short: "Run the follow-up scheduler once",
	Long: `Runs one follow-up batch: every awaiting request is checked against the
reminder and escalation deadlines, and due messages are sent. The run is
idempotent; invoke it as often as you like, e.g. from cron.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		sched, err := a.scheduler(true)
		if err != nil {
			return err
		}

		outcomes, err := sched.Run(cmd.Context(), time.Now())
		if err != nil {
			return err
		}
		if len(outcomes) == 0 {
			fmt.Println("No awaiting requests.")
			return nil
		}

		acted, failed := 0, 0
		for _, o := range outcomes {
			switch o.Result {
			case scheduler.ResultSent:
				acted++
			case scheduler.ResultFailed, scheduler.ResultConflict:
				failed++
			}
		}
		fmt.Printf("Checked %d requests: %d follow-ups sent, %d failed\n", len(outcomes), acted, failed)
		printOutcomes(outcomes)
		if failed > 0 {
			return fmt.Errorf("%d follow-ups failed; they will be retried on the next run", failed)
		}
		return nil
	},
}
