package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var closeCmd = &cobra.Command{
	Use:   "close <request-id>",
	Short: "Close a request manually",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		sched, err := a.scheduler(false)
		if err != nil {
			return err
		}
		if err := sched.CloseRequest(cmd.Context(), args[0], time.Now()); err != nil {
			return err
		}
		fmt.Printf("Request %s closed\n", args[0])
		return nil
	},
}
