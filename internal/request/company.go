package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Company is the organization a request is addressed to. Requests reference
// companies but are never deleted with them; the audit trail outlives the
// address book entry.
type Company struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Email                 string    `json:"email"`
	Website               string    `json:"website,omitempty"`
	DataProtectionOfficer string    `json:"data_protection_officer,omitempty"`
	Address               string    `json:"address,omitempty"`
	Notes                 string    `json:"notes,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// NewCompany creates a company record
func NewCompany(name, email string, now time.Time) *Company {
	return &Company{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

// Validate checks the fields required to address mail to the company
func (c *Company) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("company name is required")
	}
	if !strings.Contains(c.Email, "@") {
		return fmt.Errorf("company %q: contact email %q is not an email address", c.Name, c.Email)
	}
	return nil
}
