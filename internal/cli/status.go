package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anhofmann/dsar/internal/journal"
	"github.com/anhofmann/dsar/internal/request"
)

var statusCmd = &cobra.Command{
	Use:   "status [request-id]",
	Short: "Show request status, or one request's full history",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			return showRequest(cmd, a, args[0])
		}
		return listRequests(cmd, a)
	},
}

func listRequests(cmd *cobra.Command, a *app) error {
	reqs, err := a.store.ListRequests(cmd.Context())
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		fmt.Println("No requests found.")
		return nil
	}

	fmt.Printf("%-36s  %-13s  %-10s  %-9s  %s\n", "ID", "KIND", "STATUS", "REMINDERS", "CREATED")
	for _, r := range reqs {
		fmt.Printf("%-36s  %-13s  %-10s  %-9d  %s\n",
			r.ID, r.Kind, r.Status, r.ReminderCount, r.CreatedAt.Format("2006-01-02"))
	}
	fmt.Printf("\nTotal: %d requests\n", len(reqs))
	return nil
}

func showRequest(cmd *cobra.Command, a *app, id string) error {
	r, err := a.store.GetRequest(cmd.Context(), id)
	if err != nil {
		return err
	}
	co, err := a.store.GetCompany(cmd.Context(), r.CompanyID)
	if err != nil {
		return err
	}

	fmt.Printf("Request:    %s\n", r.ID)
	fmt.Printf("Company:    %s <%s>\n", co.Name, co.Email)
	fmt.Printf("Kind:       %s\n", r.Kind)
	fmt.Printf("Status:     %s%s\n", r.Status, terminalMark(r.Status))
	fmt.Printf("Created:    %s\n", r.CreatedAt.Format("2006-01-02 15:04"))
	if r.SentAt != nil {
		fmt.Printf("Sent:       %s\n", r.SentAt.Format("2006-01-02 15:04"))
	}
	if r.LastContactAt != nil {
		fmt.Printf("Last contact: %s\n", r.LastContactAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("Reminders:  %d\n", r.ReminderCount)
	fmt.Printf("Escalated:  %v\n", r.Escalated)

	if len(r.Annotations) > 0 {
		fmt.Println("\nAnnotations:")
		for _, an := range r.Annotations {
			flag := ""
			if an.ActionRequired {
				flag = "  [action required]"
			}
			fmt.Printf("  %s  %s%s\n", an.At.Format("2006-01-02"), an.Summary, flag)
		}
	}

	history, err := journal.History(a.cfg.JournalPath, r.ID)
	if err != nil {
		a.logger.Warn("failed to read journal", "error", err)
		return nil
	}
	if len(history) > 0 {
		fmt.Println("\nHistory:")
		for _, e := range history {
			fmt.Printf("  %s  %s → %s (%s)\n", e.Time.Format("2006-01-02 15:04"), e.From, e.To, e.Trigger)
		}
	}
	return nil
}

func terminalMark(s request.Status) string {
	if s.Terminal() {
		return " (terminal)"
	}
	return ""
}
