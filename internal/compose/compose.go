// Package compose renders the outbound messages: the initial request letter,
// the reminder and the escalation, in German and English. Wording follows
// the datenanfragen.de letter patterns.
package compose

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/anhofmann/dsar/internal/request"
)

// Message is a rendered mail ready for the notifier
type Message struct {
	Subject string
	Body    string
}

// Composer renders messages in the request's language, falling back to its
// own default when the request carries none
type Composer struct {
	defaultLanguage string
}

// NewComposer creates a composer with the given fallback language ("de" or "en")
func NewComposer(defaultLanguage string) *Composer {
	if defaultLanguage == "" {
		defaultLanguage = "de"
	}
	return &Composer{defaultLanguage: defaultLanguage}
}

type letterData struct {
	CompanyName    string
	ActionLine     string
	Reason         string
	RequesterName  string
	RequesterEmail string
	OriginalDate   string
	Subject        string
}

// Request renders the initial letter for r addressed to co
func (c *Composer) Request(r *request.Request, co *request.Company) (Message, error) {
	lang := c.language(r)
	subject, action := requestWording(lang, r.Kind)
	body, err := render(requestTemplates[lang], letterData{
		CompanyName:    co.Name,
		ActionLine:     action,
		Reason:         r.Reason,
		RequesterName:  r.RequesterName,
		RequesterEmail: r.RequesterEmail,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{Subject: subject, Body: body}, nil
}

// Reminder renders the follow-up letter referencing the original send date
func (c *Composer) Reminder(r *request.Request, co *request.Company) (Message, error) {
	return c.followUp(r, co, reminderTemplates, reminderSubjects)
}

// Escalation renders the final follow-up announcing a supervisory complaint
func (c *Composer) Escalation(r *request.Request, co *request.Company) (Message, error) {
	return c.followUp(r, co, escalationTemplates, escalationSubjects)
}

func (c *Composer) followUp(r *request.Request, co *request.Company, bodies, subjects map[string]string) (Message, error) {
	lang := c.language(r)
	original := r.CreatedAt
	if r.SentAt != nil {
		original = *r.SentAt
	}
	origSubject, _ := requestWording(lang, r.Kind)
	body, err := render(bodies[lang], letterData{
		CompanyName:   co.Name,
		RequesterName: r.RequesterName,
		OriginalDate:  formatDate(lang, original),
		Subject:       origSubject,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{Subject: fmt.Sprintf(subjects[lang], origSubject), Body: body}, nil
}

func (c *Composer) language(r *request.Request) string {
	lang := strings.ToLower(r.Language)
	if _, ok := requestTemplates[lang]; !ok {
		lang = c.defaultLanguage
	}
	if _, ok := requestTemplates[lang]; !ok {
		lang = "de"
	}
	return lang
}

func formatDate(lang string, t time.Time) string {
	if lang == "de" {
		return t.Format("02.01.2006")
	}
	return t.Format("2 January 2006")
}

func render(text string, data letterData) (string, error) {
	tmpl, err := template.New("letter").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse letter template: %w", err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render letter: %w", err)
	}
	return sb.String(), nil
}
