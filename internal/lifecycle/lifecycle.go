// Package lifecycle is the pure decision core: given a request's persisted
// state and an explicit "now", it decides what follow-up is due and which
// transitions are legal. It never performs side effects and never reads the
// wall clock, so every decision is replayable.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/anhofmann/dsar/internal/request"
)

// Decision is the follow-up action a request is due for
type Decision string

const (
	DecisionNone       Decision = "none"
	DecisionReminder   Decision = "reminder"
	DecisionEscalation Decision = "escalation"
)

// Policy holds the deadline durations. EscalateAfter is measured from the
// original send, not from the last reminder, so a late reminder cannot push
// the statutory ceiling out.
type Policy struct {
	ReminderAfter time.Duration
	EscalateAfter time.Duration
}

// DefaultPolicy returns the statutory defaults: remind after 14 days of
// silence, escalate 30 days after the original send.
func DefaultPolicy() Policy {
	return Policy{
		ReminderAfter: 14 * 24 * time.Hour,
		EscalateAfter: 30 * 24 * time.Hour,
	}
}

// Validate rejects policies that could never fire in a sane order
func (p Policy) Validate() error {
	if p.ReminderAfter <= 0 {
		return fmt.Errorf("policy: reminder threshold must be positive, got %s", p.ReminderAfter)
	}
	if p.EscalateAfter <= p.ReminderAfter {
		return fmt.Errorf("policy: escalation threshold %s must exceed reminder threshold %s",
			p.EscalateAfter, p.ReminderAfter)
	}
	return nil
}

// Decide returns the follow-up action due for r at the given time. It is a
// pure function: no counters advance until the caller commits the transition,
// so calling it twice with the same inputs yields the same decision.
func Decide(r *request.Request, now time.Time, p Policy) Decision {
	switch r.Status {
	case request.StatusSent:
		since := r.SentAt
		if r.LastContactAt != nil {
			since = r.LastContactAt
		}
		if since != nil && now.Sub(*since) >= p.ReminderAfter {
			return DecisionReminder
		}
	case request.StatusReminded:
		// Measured against the original send so the 30-day ceiling holds
		// regardless of when the reminder actually went out.
		if r.SentAt != nil && now.Sub(*r.SentAt) >= p.EscalateAfter {
			return DecisionEscalation
		}
	}
	return DecisionNone
}

// CanTransition reports whether the state machine permits moving from one
// status to another. Terminal statuses are absorbing.
func CanTransition(from, to request.Status) bool {
	if from.Terminal() {
		return false
	}
	switch to {
	case request.StatusSent:
		return from == request.StatusDraft
	case request.StatusReminded:
		return from == request.StatusSent
	case request.StatusEscalated:
		return from == request.StatusReminded
	case request.StatusConfirmed, request.StatusCompleted, request.StatusRejected:
		return from.Awaiting()
	case request.StatusClosed:
		return true // manual close from any non-terminal status
	}
	return false
}

// MarkSent commits the DRAFT→SENT transition
func MarkSent(r *request.Request, now time.Time) error {
	if err := guard(r, request.StatusSent); err != nil {
		return err
	}
	t := now.UTC()
	r.Status = request.StatusSent
	r.SentAt = &t
	r.LastContactAt = &t
	return nil
}

// MarkReminded commits the SENT→REMINDED transition after a successful
// reminder send
func MarkReminded(r *request.Request, now time.Time) error {
	if err := guard(r, request.StatusReminded); err != nil {
		return err
	}
	t := now.UTC()
	r.Status = request.StatusReminded
	r.ReminderCount++
	r.LastContactAt = &t
	return nil
}

// MarkEscalated commits the REMINDED→ESCALATED transition after a successful
// escalation send
func MarkEscalated(r *request.Request, now time.Time) error {
	if err := guard(r, request.StatusEscalated); err != nil {
		return err
	}
	t := now.UTC()
	r.Status = request.StatusEscalated
	r.Escalated = true
	r.LastContactAt = &t
	return nil
}

// Close commits a caller-initiated terminal close
func Close(r *request.Request) error {
	if err := guard(r, request.StatusClosed); err != nil {
		return err
	}
	r.Status = request.StatusClosed
	return nil
}

// Resolve commits a reply-driven transition to one of the terminal reply
// statuses (CONFIRMED, COMPLETED or REJECTED)
func Resolve(r *request.Request, to request.Status, now time.Time) error {
	switch to {
	case request.StatusConfirmed, request.StatusCompleted, request.StatusRejected:
	default:
		return fmt.Errorf("lifecycle: %q is not a reply-driven status", to)
	}
	if err := guard(r, to); err != nil {
		return err
	}
	t := now.UTC()
	r.Status = to
	r.LastContactAt = &t
	return nil
}

func guard(r *request.Request, to request.Status) error {
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("lifecycle: illegal transition %s → %s for request %s", r.Status, to, r.ID)
	}
	return nil
}
