// Package cli implements the dsar command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dsar",
	Short: "Track GDPR deletion and access requests",
	Long: `dsar drafts, sends and tracks GDPR deletion/access requests.

It keeps one record per request, sends reminders after 14 days of silence,
escalates 30 days after the original send, and classifies company replies
into the next lifecycle step.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(companyCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(followupCmd)
	rootCmd.AddCommand(respondCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(doctorCmd)

	rootCmd.PersistentFlags().StringP("env", "e", "", "Path to .env file (default: ./.env when present)")
}

// Execute runs the root command with the given context
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
