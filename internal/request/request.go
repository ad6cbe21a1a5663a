// Package request defines the tracked domain records: the deletion/access
// request itself and the company it is addressed to.
package request

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind is the legal basis of a request
type Kind string

const (
	KindDeletion      Kind = "deletion"      // Art. 17 GDPR
	KindAccess        Kind = "access"        // Art. 15 GDPR
	KindRectification Kind = "rectification" // Art. 16 GDPR
	KindObjection     Kind = "objection"     // Art. 21 GDPR
	KindOther         Kind = "other"
)

// Valid reports whether k is a known request kind
func (k Kind) Valid() bool {
	switch k {
	case KindDeletion, KindAccess, KindRectification, KindObjection, KindOther:
		return true
	}
	return false
}

// Status is the lifecycle state of a request
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusReminded  Status = "reminded"
	StatusEscalated Status = "escalated"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
	StatusClosed    Status = "closed"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusReminded, StatusEscalated,
		StatusConfirmed, StatusCompleted, StatusRejected, StatusClosed:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions
func (s Status) Terminal() bool {
	switch s {
	case StatusConfirmed, StatusCompleted, StatusRejected, StatusClosed:
		return true
	}
	return false
}

// Awaiting reports whether s is waiting on the company (a sent request
// that has not reached a terminal state)
func (s Status) Awaiting() bool {
	switch s {
	case StatusSent, StatusReminded, StatusEscalated:
		return true
	}
	return false
}

// NonTerminal returns all statuses the scheduler may still act on
func NonTerminal() []Status {
	return []Status{StatusDraft, StatusSent, StatusReminded, StatusEscalated}
}

// Annotation is a note attached to a request, typically the summary of a
// classified reply that did not trigger a transition
type Annotation struct {
	At             time.Time `json:"at"`
	Summary        string    `json:"summary"`
	ActionRequired bool      `json:"action_required,omitempty"`
}

// Request is one legal deletion/access request addressed to one company.
// Status and timestamps are mutated only through lifecycle-approved
// transitions; a request in a terminal status never changes again.
type Request struct {
	ID             string       `json:"id"`
	CompanyID      string       `json:"company_id"`
	Kind           Kind         `json:"kind"`
	Status         Status       `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	SentAt         *time.Time   `json:"sent_at,omitempty"`
	LastContactAt  *time.Time   `json:"last_contact_at,omitempty"`
	ReminderCount  int          `json:"reminder_count"`
	Escalated      bool         `json:"escalated"`
	Language       string       `json:"language"`
	Reason         string       `json:"reason,omitempty"`
	RequesterName  string       `json:"requester_name,omitempty"`
	RequesterEmail string       `json:"requester_email,omitempty"`
	Annotations    []Annotation `json:"annotations,omitempty"`

	// Version is the optimistic-concurrency token. The store rejects a save
	// whose Version does not match the persisted record.
	Version int64 `json:"version"`
}

// New creates a DRAFT request for the given company
func New(companyID string, kind Kind, language string, now time.Time) *Request {
	return &Request{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Kind:      kind,
		Status:    StatusDraft,
		CreatedAt: now.UTC(),
		Language:  language,
		Version:   1,
	}
}

// Annotate appends a note to the request
func (r *Request) Annotate(now time.Time, summary string, actionRequired bool) {
	r.Annotations = append(r.Annotations, Annotation{
		At:             now.UTC(),
		Summary:        summary,
		ActionRequired: actionRequired,
	})
}

// CheckInvariants validates the structural invariants of the record
func (r *Request) CheckInvariants() error {
	if r.ID == "" {
		return fmt.Errorf("request has no id")
	}
	if r.CompanyID == "" {
		return fmt.Errorf("request %s has no company id", r.ID)
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("request %s has unknown kind %q", r.ID, r.Kind)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("request %s has unknown status %q", r.ID, r.Status)
	}
	if (r.Status == StatusDraft) != (r.SentAt == nil) {
		return fmt.Errorf("request %s: sent_at must be unset exactly while in draft", r.ID)
	}
	if r.ReminderCount > 0 && r.SentAt == nil {
		return fmt.Errorf("request %s: reminder_count %d without sent_at", r.ID, r.ReminderCount)
	}
	if r.Escalated && r.ReminderCount < 1 {
		return fmt.Errorf("request %s: escalated without a prior reminder", r.ID)
	}
	return nil
}

// Clone returns a deep copy of the request
func (r *Request) Clone() *Request {
	c := *r
	if r.SentAt != nil {
		t := *r.SentAt
		c.SentAt = &t
	}
	if r.LastContactAt != nil {
		t := *r.LastContactAt
		c.LastContactAt = &t
	}
	if r.Annotations != nil {
		c.Annotations = append([]Annotation(nil), r.Annotations...)
	}
	return &c
}
