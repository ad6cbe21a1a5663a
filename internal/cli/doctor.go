package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anhofmann/dsar/internal/classify"
	"github.com/anhofmann/dsar/internal/notify"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check database, SMTP and classifier connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		// The store connected during newApp, so the database is fine if we
		// got this far.
		fmt.Println("database:   ok")

		failed := false
		if err := a.cfg.ValidateMail(); err != nil {
			fmt.Printf("smtp:       not configured (%v)\n", err)
			failed = true
		} else {
			sender, err := notify.NewSMTPSender(notify.SMTPConfig{
				Host:       a.cfg.SMTPHost,
				Port:       a.cfg.SMTPPort,
				Username:   a.cfg.SMTPUsername,
				Password:   a.cfg.SMTPPassword,
				SenderMail: a.cfg.SenderEmail,
				SenderName: a.cfg.SenderName,
			}, a.logger)
			if err == nil {
				err = sender.Verify(cmd.Context())
			}
			if err != nil {
				fmt.Printf("smtp:       failed (%v)\n", err)
				failed = true
			} else {
				fmt.Println("smtp:       ok")
			}
		}

		if !a.cfg.UseModel {
			fmt.Println("classifier: keyword rules (model disabled)")
		} else if classify.NewOllamaClassifier(a.cfg.OllamaHost, a.cfg.OllamaModel, a.logger).Available(cmd.Context()) {
			fmt.Printf("classifier: ollama ok (%s, model %s)\n", a.cfg.OllamaHost, a.cfg.OllamaModel)
		} else {
			fmt.Printf("classifier: ollama unreachable at %s, keyword fallback will be used\n", a.cfg.OllamaHost)
		}

		if failed {
			return fmt.Errorf("some checks failed")
		}
		return nil
	},
}
