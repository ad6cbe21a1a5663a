package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/anhofmann/dsar/internal/classify"
	"github.com/anhofmann/dsar/internal/journal"
	"github.com/anhofmann/dsar/internal/lifecycle"
	"github.com/anhofmann/dsar/internal/request"
)

// ResponseResult reports how one reply was handled
type ResponseResult struct {
	RequestID      string
	Classification *classify.Classification
	PreviousStatus request.Status
	NewStatus      request.Status
	// Transitioned is false when the category mapped to no transition and
	// the reply was recorded as an annotation only.
	Transitioned bool
	// TerminalNoOp is true when the request was already terminal; nothing
	// was classified or changed.
	TerminalNoOp bool
}

// ProcessResponse classifies a raw reply and applies the resulting
// transition. A reply for a request already in a terminal status is
// reported as a no-op, not an error.
func (s *Scheduler) ProcessResponse(ctx context.Context, id, text string, now time.Time) (*ResponseResult, error) {
	release, err := s.locker.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	r, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status.Terminal() {
		s.logger.Info("reply for terminal request ignored", "request", id, "status", r.Status)
		return &ResponseResult{RequestID: id, PreviousStatus: r.Status, NewStatus: r.Status, TerminalNoOp: true}, nil
	}

	cl, err := s.classifier.Classify(ctx, text, r.Language)
	if err != nil {
		return nil, fmt.Errorf("classification failed for request %s: %w", id, err)
	}
	return s.applyClassification(ctx, r, cl, now)
}

// ProcessClassified applies a classification computed upstream, skipping
// the classifier call
func (s *Scheduler) ProcessClassified(ctx context.Context, id string, cl *classify.Classification, now time.Time) (*ResponseResult, error) {
	release, err := s.locker.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	r, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status.Terminal() {
		return &ResponseResult{RequestID: id, PreviousStatus: r.Status, NewStatus: r.Status, TerminalNoOp: true}, nil
	}
	return s.applyClassification(ctx, r, cl, now)
}

func (s *Scheduler) applyClassification(ctx context.Context, r *request.Request, cl *classify.Classification, now time.Time) (*ResponseResult, error) {
	prev := r.Status
	result := &ResponseResult{
		RequestID:      r.ID,
		Classification: cl,
		PreviousStatus: prev,
	}

	target, mapped := classify.SuggestedStatusFor(cl.Category)
	if mapped && lifecycle.CanTransition(r.Status, target) {
		if err := lifecycle.Resolve(r, target, now); err != nil {
			return nil, err
		}
		r.Annotate(now, cl.Summary, false)
		result.Transitioned = true
	} else {
		// Ambiguous or unmapped category: annotate only, flag for review.
		// The reply still counts as contact.
		r.Annotate(now, cl.Summary, true)
		t := now.UTC()
		r.LastContactAt = &t
	}
	result.NewStatus = r.Status

	if err := s.store.SaveRequest(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to commit reply for request %s: %w", r.ID, err)
	}

	trigger := "reply:" + string(cl.Category)
	if !result.Transitioned {
		trigger = "annotate:" + string(cl.Category)
	}
	s.record(journal.Entry{
		Time:      now.UTC(),
		RequestID: r.ID,
		From:      prev,
		To:        r.Status,
		Trigger:   trigger,
		Note:      cl.Summary,
	})
	s.logger.Info("reply processed", "request", r.ID, "category", cl.Category,
		"status", r.Status, "transitioned", result.Transitioned)
	return result, nil
}
