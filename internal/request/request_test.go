package request

import (
	"testing"
	"time"
)

func TestNewRequestIsDraft(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	r := New("company-1", KindDeletion, "de", now)

	if r.Status != StatusDraft {
		t.Errorf("Status = %s, want %s", r.Status, StatusDraft)
	}
	if r.SentAt != nil {
		t.Error("SentAt should be unset for a draft")
	}
	if r.ID == "" {
		t.Error("ID should be assigned")
	}
	if err := r.CheckInvariants(); err != nil {
		t.Errorf("CheckInvariants() error = %v", err)
	}
}

func TestCheckInvariants(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		mutate func(*Request)
	}{
		{"sent without sent_at", func(r *Request) { r.Status = StatusSent }},
		{"draft with sent_at", func(r *Request) { r.SentAt = &now }},
		{"reminders before send", func(r *Request) { r.ReminderCount = 1 }},
		{"escalated without reminder", func(r *Request) {
			r.Status = StatusEscalated
			r.SentAt = &now
			r.Escalated = true
		}},
		{"unknown status", func(r *Request) { r.Status = "limbo"; r.SentAt = &now }},
		{"unknown kind", func(r *Request) { r.Kind = "portability" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := New("company-1", KindDeletion, "de", now)
			tc.mutate(r)
			if err := r.CheckInvariants(); err == nil {
				t.Error("expected invariant violation, got nil")
			}
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := []Status{StatusConfirmed, StatusCompleted, StatusRejected, StatusClosed}
	live := []Status{StatusDraft, StatusSent, StatusReminded, StatusEscalated}

	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range live {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	r := New("company-1", KindAccess, "en", now)
	r.SentAt = &now
	r.Status = StatusSent
	r.Annotate(now, "acknowledged", true)

	c := r.Clone()
	*c.SentAt = now.Add(time.Hour)
	c.Annotations[0].Summary = "changed"

	if !r.SentAt.Equal(now) {
		t.Error("mutating the clone's SentAt changed the original")
	}
	if r.Annotations[0].Summary != "acknowledged" {
		t.Error("mutating the clone's annotations changed the original")
	}
}
