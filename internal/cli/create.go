package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/anhofmann/dsar/internal/request"
	"github.com/anhofmann/dsar/internal/store"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a request for a company",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		companyRef, _ := cmd.Flags().GetString("company")

		co, err := a.store.GetCompany(ctx, companyRef)
		if errors.Is(err, store.ErrNotFound) {
			co, err = a.store.GetCompanyByName(ctx, companyRef)
		}
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("company %q not found; add it with 'dsar company add'", companyRef)
		}
		if err != nil {
			return err
		}

		kindFlag, _ := cmd.Flags().GetString("kind")
		kind := request.Kind(kindFlag)
		if !kind.Valid() {
			return fmt.Errorf("unknown request kind %q (deletion, access, rectification, objection, other)", kindFlag)
		}

		language, _ := cmd.Flags().GetString("language")
		if language == "" {
			language = a.cfg.DefaultLanguage
		}

		now := time.Now()
		r := request.New(co.ID, kind, language, now)
		r.Reason, _ = cmd.Flags().GetString("reason")
		r.RequesterName, _ = cmd.Flags().GetString("name")
		r.RequesterEmail, _ = cmd.Flags().GetString("email")

		if err := a.store.CreateRequest(ctx, r); err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		a.logger.Info("request created", "request", r.ID, "company", co.Name, "kind", kind)

		autoSend, _ := cmd.Flags().GetBool("send")
		if !autoSend {
			fmt.Printf("Request created as draft (ID: %s)\n", r.ID)
			return nil
		}

		sched, err := a.scheduler(true)
		if err != nil {
			return err
		}
		if err := sched.SendRequest(ctx, r.ID, now); err != nil {
			return fmt.Errorf("request %s created but not sent: %w", r.ID, err)
		}
		fmt.Printf("Request created and sent (ID: %s)\n", r.ID)
		return nil
	},
}

func init() {
	createCmd.Flags().String("company", "", "Company id or name (required)")
	createCmd.Flags().String("kind", string(request.KindDeletion), "Request kind: deletion, access, rectification, objection, other")
	createCmd.Flags().String("name", "", "Your name, used for identification in the letter")
	createCmd.Flags().String("email", "", "Your email, used for identification in the letter")
	createCmd.Flags().String("reason", "", "Optional reason included in the letter")
	createCmd.Flags().String("language", "", "Letter language: de or en (default from config)")
	createCmd.Flags().Bool("send", false, "Send immediately instead of leaving a draft")
	_ = createCmd.MarkFlagRequired("company")
}
