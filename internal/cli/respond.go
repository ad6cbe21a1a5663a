package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var respondCmd = &cobra.Command{
	Use:   "respond <request-id>",
	Short: "Record and classify a company's reply",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")
		if (text == "") == (file == "") {
			return fmt.Errorf("pass exactly one of --text or --file")
		}
		if file != "" {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read reply file: %w", err)
			}
			text = string(data)
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		sched, err := a.scheduler(false)
		if err != nil {
			return err
		}

		result, err := sched.ProcessResponse(cmd.Context(), args[0], text, time.Now())
		if err != nil {
			return err
		}

		if result.TerminalNoOp {
			fmt.Printf("Request %s is already %s; reply ignored.\n", result.RequestID, result.PreviousStatus)
			return nil
		}

		cl := result.Classification
		fmt.Printf("Category:   %s (confidence %.1f)\n", cl.Category, cl.Confidence)
		fmt.Printf("Summary:    %s\n", cl.Summary)
		if result.Transitioned {
			fmt.Printf("Status:     %s → %s\n", result.PreviousStatus, result.NewStatus)
		} else {
			fmt.Printf("Status:     %s (unchanged, reply recorded as annotation)\n", result.NewStatus)
			fmt.Println("Action required: review this reply manually.")
		}
		return nil
	},
}

func init() {
	respondCmd.Flags().String("text", "", "Reply text")
	respondCmd.Flags().String("file", "", "Read the reply from a file")
}
