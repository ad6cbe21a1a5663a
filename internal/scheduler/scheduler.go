// Package scheduler drives the request lifecycle: it sends drafted
// requests, runs the deadline-driven follow-up batch and applies classified
// replies. All state changes go through lifecycle-approved transitions and
// are committed with compare-and-swap saves, so overlapping runs never send
// a follow-up twice.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anhofmann/dsar/internal/classify"
	"github.com/anhofmann/dsar/internal/compose"
	"github.com/anhofmann/dsar/internal/journal"
	"github.com/anhofmann/dsar/internal/lifecycle"
	"github.com/anhofmann/dsar/internal/lock"
	"github.com/anhofmann/dsar/internal/request"
	"github.com/anhofmann/dsar/internal/store"
)

// Notifier executes a send intent
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Result classifies the per-request outcome of one scheduling pass
type Result string

const (
	ResultSent     Result = "sent"
	ResultSkipped  Result = "skipped-not-due"
	ResultFailed   Result = "failed"
	ResultConflict Result = "conflict"
	ResultLocked   Result = "locked"
)

// Outcome reports what happened to one request in a batch. A batch never
// rolls back: each request succeeds or fails on its own.
type Outcome struct {
	RequestID string
	Action    lifecycle.Decision
	Result    Result
	Err       error
}

// Scheduler coordinates the store, notifier, composer and classifier
type Scheduler struct {
	store    store.Store
	notifier Notifier
	composer *compose.Composer
	policy   lifecycle.Policy
	logger   *slog.Logger

	classifier classify.Classifier
	locker     lock.Locker
	journal    *journal.Journal
}

// New creates a scheduler with a local locker and the keyword classifier;
// both can be swapped via the setters.
func New(st store.Store, notifier Notifier, composer *compose.Composer, policy lifecycle.Policy, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:      st,
		notifier:   notifier,
		composer:   composer,
		policy:     policy,
		logger:     logger,
		classifier: classify.NewKeywordClassifier(),
		locker:     lock.NewLocalLocker(),
	}
}

// SetClassifier replaces the reply classifier
func (s *Scheduler) SetClassifier(c classify.Classifier) {
	s.classifier = c
}

// SetLocker replaces the per-request locker (e.g. with the Redis locker
// when several scheduler instances may overlap)
func (s *Scheduler) SetLocker(l lock.Locker) {
	s.locker = l
}

// SetJournal enables the audit journal for committed transitions
func (s *Scheduler) SetJournal(j *journal.Journal) {
	s.journal = j
}

// Run executes one follow-up batch at the given time. It loads every
// awaiting request, decides what is due and performs at most one transition
// per request. Running it again with the same now is a no-op for every
// request the first run committed.
func (s *Scheduler) Run(ctx context.Context, now time.Time) ([]Outcome, error) {
	reqs, err := s.store.ListRequests(ctx,
		request.StatusSent, request.StatusReminded, request.StatusEscalated)
	if err != nil {
		return nil, fmt.Errorf("failed to load awaiting requests: %w", err)
	}

	outcomes := make([]Outcome, 0, len(reqs))
	for _, r := range reqs {
		outcomes = append(outcomes, s.followUp(ctx, r.ID, now))
	}

	acted := 0
	for _, o := range outcomes {
		if o.Result == ResultSent {
			acted++
		}
	}
	s.logger.Info("follow-up batch complete", "requests", len(outcomes), "acted", acted)
	return outcomes, nil
}

// followUp applies one read-decide-commit sequence under the per-request
// lock. The request is re-read after the lock is held, so the decision is
// always based on the freshest committed state.
func (s *Scheduler) followUp(ctx context.Context, id string, now time.Time) Outcome {
	release, err := s.locker.Acquire(ctx, id)
	if errors.Is(err, lock.ErrHeld) {
		return Outcome{RequestID: id, Action: lifecycle.DecisionNone, Result: ResultLocked, Err: err}
	}
	if err != nil {
		return Outcome{RequestID: id, Action: lifecycle.DecisionNone, Result: ResultFailed, Err: err}
	}
	defer release()

	r, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return Outcome{RequestID: id, Action: lifecycle.DecisionNone, Result: ResultFailed, Err: err}
	}

	decision := lifecycle.Decide(r, now, s.policy)
	if decision == lifecycle.DecisionNone {
		return Outcome{RequestID: id, Action: decision, Result: ResultSkipped}
	}

	co, err := s.store.GetCompany(ctx, r.CompanyID)
	if err != nil {
		return Outcome{RequestID: id, Action: decision, Result: ResultFailed,
			Err: fmt.Errorf("failed to load company %s: %w", r.CompanyID, err)}
	}

	var msg compose.Message
	switch decision {
	case lifecycle.DecisionReminder:
		msg, err = s.composer.Reminder(r, co)
	case lifecycle.DecisionEscalation:
		msg, err = s.composer.Escalation(r, co)
	}
	if err != nil {
		return Outcome{RequestID: id, Action: decision, Result: ResultFailed, Err: err}
	}

	if err := s.notifier.Send(ctx, co.Email, msg.Subject, msg.Body); err != nil {
		// State unchanged: the next run retries.
		s.logger.Warn("follow-up send failed", "request", id, "action", decision, "error", err)
		return Outcome{RequestID: id, Action: decision, Result: ResultFailed, Err: err}
	}

	prev := r.Status
	switch decision {
	case lifecycle.DecisionReminder:
		err = lifecycle.MarkReminded(r, now)
	case lifecycle.DecisionEscalation:
		err = lifecycle.MarkEscalated(r, now)
	}
	if err != nil {
		return Outcome{RequestID: id, Action: decision, Result: ResultFailed, Err: err}
	}

	if err := s.store.SaveRequest(ctx, r); err != nil {
		if errors.Is(err, store.ErrConflict) {
			s.logger.Warn("lost commit race after send", "request", id, "action", decision)
			return Outcome{RequestID: id, Action: decision, Result: ResultConflict, Err: err}
		}
		return Outcome{RequestID: id, Action: decision, Result: ResultFailed, Err: err}
	}

	s.record(journal.Entry{
		Time:      now.UTC(),
		RequestID: id,
		From:      prev,
		To:        r.Status,
		Trigger:   string(decision),
	})
	s.logger.Info("follow-up sent", "request", id, "action", decision, "status", r.Status)
	return Outcome{RequestID: id, Action: decision, Result: ResultSent}
}

// SendRequest sends a drafted request and commits DRAFT→SENT
func (s *Scheduler) SendRequest(ctx context.Context, id string, now time.Time) error {
	release, err := s.locker.Acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	r, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	if r.Status != request.StatusDraft {
		return fmt.Errorf("request %s is %s, only drafts can be sent", id, r.Status)
	}

	co, err := s.store.GetCompany(ctx, r.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to load company %s: %w", r.CompanyID, err)
	}

	msg, err := s.composer.Request(r, co)
	if err != nil {
		return err
	}
	if err := s.notifier.Send(ctx, co.Email, msg.Subject, msg.Body); err != nil {
		return err
	}

	if err := lifecycle.MarkSent(r, now); err != nil {
		return err
	}
	if err := s.store.SaveRequest(ctx, r); err != nil {
		return err
	}

	s.record(journal.Entry{
		Time:      now.UTC(),
		RequestID: id,
		From:      request.StatusDraft,
		To:        request.StatusSent,
		Trigger:   "send",
	})
	s.logger.Info("request sent", "request", id, "company", co.Name)
	return nil
}

// SendAllDrafts sends every drafted request, reporting per-request outcomes
func (s *Scheduler) SendAllDrafts(ctx context.Context, now time.Time) ([]Outcome, error) {
	drafts, err := s.store.ListRequests(ctx, request.StatusDraft)
	if err != nil {
		return nil, fmt.Errorf("failed to load drafts: %w", err)
	}

	outcomes := make([]Outcome, 0, len(drafts))
	for _, r := range drafts {
		o := Outcome{RequestID: r.ID, Action: lifecycle.DecisionNone, Result: ResultSent}
		if err := s.SendRequest(ctx, r.ID, now); err != nil {
			o.Result = ResultFailed
			o.Err = err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

// CloseRequest commits a caller-initiated terminal close
func (s *Scheduler) CloseRequest(ctx context.Context, id string, now time.Time) error {
	release, err := s.locker.Acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	r, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	prev := r.Status
	if err := lifecycle.Close(r); err != nil {
		return err
	}
	if err := s.store.SaveRequest(ctx, r); err != nil {
		return err
	}
	s.record(journal.Entry{
		Time:      now.UTC(),
		RequestID: id,
		From:      prev,
		To:        request.StatusClosed,
		Trigger:   "close",
	})
	return nil
}

// record writes a journal entry if the journal is enabled. Journal failures
// are logged, never propagated: the transition is already committed.
func (s *Scheduler) record(e journal.Entry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(e); err != nil {
		s.logger.Warn("failed to write journal entry", "request", e.RequestID, "error", err)
	}
}
