package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/anhofmann/dsar/internal/classify"
	"github.com/anhofmann/dsar/internal/compose"
	"github.com/anhofmann/dsar/internal/config"
	"github.com/anhofmann/dsar/internal/journal"
	"github.com/anhofmann/dsar/internal/lock"
	"github.com/anhofmann/dsar/internal/notify"
	"github.com/anhofmann/dsar/internal/scheduler"
	"github.com/anhofmann/dsar/internal/store/postgres"
)

// app wires the collaborators a command needs from the loaded configuration
type app struct {
	cfg     *config.Config
	store   *postgres.PostgresStore
	logger  *slog.Logger
	journal *journal.Journal
	locker  lock.Locker
}

// newApp loads config, connects the store and prepares logging. Callers
// must Close() it.
func newApp(cmd *cobra.Command) (*app, error) {
	envPath, _ := cmd.Flags().GetString("env")
	cfg, err := config.Load(envPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))

	st, err := postgres.Open(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	jnl, err := journal.Open(cfg.JournalPath)
	if err != nil {
		st.Close()
		return nil, err
	}

	a := &app{cfg: cfg, store: st, logger: logger, journal: jnl}
	a.locker = lock.NewLocalLocker()
	if cfg.RedisAddr != "" {
		rl, err := lock.NewRedisLocker(cmd.Context(), cfg.RedisAddr, 30*time.Second)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.locker = rl
	}
	return a, nil
}

// Close releases the store and journal
func (a *app) Close() {
	if a.journal != nil {
		_ = a.journal.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	if rl, ok := a.locker.(*lock.RedisLocker); ok {
		_ = rl.Close()
	}
}

// scheduler builds the lifecycle driver. withMail controls whether an SMTP
// sender is attached; commands that only read or classify pass false and
// work without mail credentials.
func (a *app) scheduler(withMail bool) (*scheduler.Scheduler, error) {
	var notifier scheduler.Notifier
	if withMail {
		if err := a.cfg.ValidateMail(); err != nil {
			return nil, err
		}
		sender, err := notify.NewSMTPSender(notify.SMTPConfig{
			Host:       a.cfg.SMTPHost,
			Port:       a.cfg.SMTPPort,
			Username:   a.cfg.SMTPUsername,
			Password:   a.cfg.SMTPPassword,
			SenderMail: a.cfg.SenderEmail,
			SenderName: a.cfg.SenderName,
		}, a.logger)
		if err != nil {
			return nil, err
		}
		notifier = sender
	}

	composer := compose.NewComposer(a.cfg.DefaultLanguage)
	sched := scheduler.New(a.store, notifier, composer, a.cfg.Policy(), a.logger)
	sched.SetJournal(a.journal)
	sched.SetLocker(a.locker)
	if a.cfg.UseModel {
		sched.SetClassifier(classify.NewOllamaClassifier(a.cfg.OllamaHost, a.cfg.OllamaModel, a.logger))
	}
	return sched, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// printOutcomes renders a batch result the way `followup` and `send --all`
// report it
func printOutcomes(outcomes []scheduler.Outcome) {
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			fmt.Printf("  %s  %s (%s): %v\n", o.RequestID, o.Result, o.Action, o.Err)
		case o.Action != "" && o.Action != "none":
			fmt.Printf("  %s  %s (%s)\n", o.RequestID, o.Result, o.Action)
		default:
			fmt.Printf("  %s  %s\n", o.RequestID, o.Result)
		}
	}
}
