package compose

import "github.com/anhofmann/dsar/internal/request"

// requestWording returns subject and opening demand per kind and language
func requestWording(lang string, kind request.Kind) (subject, action string) {
	if lang == "de" {
		switch kind {
		case request.KindDeletion:
			return "Löschantrag gemäß Art. 17 DSGVO",
				"ich stelle hiermit Antrag auf unverzügliche Löschung mich betreffender personenbezogener Daten gemäß Art. 17 DSGVO."
		case request.KindAccess:
			return "Auskunftsersuchen gemäß Art. 15 DSGVO",
				"ich verlange hiermit Auskunft über die zu meiner Person gespeicherten personenbezogenen Daten gemäß Art. 15 DSGVO."
		case request.KindRectification:
			return "Berichtigungsantrag gemäß Art. 16 DSGVO",
				"ich verlange hiermit die Berichtigung mich betreffender unrichtiger personenbezogener Daten gemäß Art. 16 DSGVO."
		case request.KindObjection:
			return "Widerspruch gemäß Art. 21 DSGVO",
				"ich widerspreche hiermit der Verarbeitung mich betreffender personenbezogener Daten gemäß Art. 21 DSGVO."
		default:
			return "Datenschutzrechtliche Anfrage gemäß DSGVO",
				"ich wende mich hiermit mit einem datenschutzrechtlichen Anliegen gemäß DSGVO an Sie."
		}
	}
	switch kind {
	case request.KindDeletion:
		return "Erasure request under Art. 17 GDPR",
			"I hereby request the immediate erasure of personal data concerning me, according to Art. 17 GDPR."
	case request.KindAccess:
		return "Access request under Art. 15 GDPR",
			"I hereby request access to the personal data concerning me that you store, according to Art. 15 GDPR."
	case request.KindRectification:
		return "Rectification request under Art. 16 GDPR",
			"I hereby request the rectification of inaccurate personal data concerning me, according to Art. 16 GDPR."
	case request.KindObjection:
		return "Objection under Art. 21 GDPR",
			"I hereby object to the processing of personal data concerning me, according to Art. 21 GDPR."
	default:
		return "Data protection request under the GDPR",
			"I am contacting you with a data protection request under the GDPR."
	}
}

var requestTemplates = map[string]string{
	"de": `Sehr geehrte Damen und Herren{{if .CompanyName}} der {{.CompanyName}}{{end}},

{{.ActionLine}}
{{if .Reason}}
Begründung: {{.Reason}}
{{end}}
Sofern ich eine Einwilligung zur Verarbeitung meiner Daten erteilt habe (z. B. gemäß Art. 6 Abs. 1 lit. a oder Art. 9 Abs. 2 lit. a DSGVO), widerrufe ich diese hiermit.

Bitte bestätigen Sie mir die Bearbeitung schriftlich.

Falls Sie meine personenbezogenen Daten an Dritte offengelegt haben, haben Sie meinen Wunsch nach Art. 17 Abs. 2 DSGVO allen Empfängern mitzuteilen. Bitte informieren Sie mich weiterhin über diese Empfänger.

Sofern Sie meinem Antrag nicht innerhalb der Frist von einem Monat nachkommen, behalte ich mir vor, rechtliche Schritte einzuleiten und Beschwerde bei der zuständigen Datenschutzaufsichtsbehörde einzureichen.

Zur Identifikation meiner Person habe ich folgende Daten beigefügt:
{{if .RequesterName}}Name: {{.RequesterName}}
{{end}}{{if .RequesterEmail}}E-Mail: {{.RequesterEmail}}
{{end}}
Mit freundlichen Grüßen{{if .RequesterName}}
{{.RequesterName}}{{end}}
`,
	"en": `Dear Sir or Madam{{if .CompanyName}} of {{.CompanyName}}{{end}},

{{.ActionLine}}
{{if .Reason}}
Reason: {{.Reason}}
{{end}}
Insofar as I have given consent to the processing of my personal data (e.g. according to Art. 6(1)(a) or Art. 9(2)(a) GDPR), I hereby withdraw that consent.

Please confirm the processing of this request in writing.

If you have disclosed my personal data to third parties, you are obliged under Art. 17(2) GDPR to communicate my request to all recipients. Please also inform me about those recipients.

Should you fail to comply within the statutory period of one month, I reserve the right to take legal action and to lodge a complaint with the competent supervisory authority.

For identification purposes I have included the following details:
{{if .RequesterName}}Name: {{.RequesterName}}
{{end}}{{if .RequesterEmail}}Email: {{.RequesterEmail}}
{{end}}
Kind regards{{if .RequesterName}}
{{.RequesterName}}{{end}}
`,
}

var reminderSubjects = map[string]string{
	"de": "Erinnerung: %s",
	"en": "Reminder: %s",
}

var reminderTemplates = map[string]string{
	"de": `Sehr geehrte Damen und Herren{{if .CompanyName}} der {{.CompanyName}}{{end}},

am {{.OriginalDate}} habe ich Ihnen eine Anfrage mit dem Betreff "{{.Subject}}" zukommen lassen. Eine Antwort habe ich bislang nicht erhalten.

Ich erinnere Sie hiermit an die gesetzliche Frist von einem Monat gemäß Art. 12 Abs. 3 DSGVO und bitte um umgehende Bearbeitung meiner Anfrage.

Mit freundlichen Grüßen{{if .RequesterName}}
{{.RequesterName}}{{end}}
`,
	"en": `Dear Sir or Madam{{if .CompanyName}} of {{.CompanyName}}{{end}},

on {{.OriginalDate}} I sent you a request with the subject "{{.Subject}}". I have not received a reply so far.

I remind you of the statutory period of one month under Art. 12(3) GDPR and ask you to process my request without further delay.

Kind regards{{if .RequesterName}}
{{.RequesterName}}{{end}}
`,
}

var escalationSubjects = map[string]string{
	"de": "Letzte Mahnung: %s",
	"en": "Final notice: %s",
}

var escalationTemplates = map[string]string{
	"de": `Sehr geehrte Damen und Herren{{if .CompanyName}} der {{.CompanyName}}{{end}},

trotz meiner Anfrage vom {{.OriginalDate}} mit dem Betreff "{{.Subject}}" und einer anschließenden Erinnerung habe ich keine Antwort von Ihnen erhalten. Die gesetzliche Frist von einem Monat gemäß Art. 12 Abs. 3 DSGVO ist damit verstrichen.

Ich fordere Sie letztmalig auf, meine Anfrage unverzüglich zu bearbeiten. Andernfalls werde ich Beschwerde bei der zuständigen Datenschutzaufsichtsbehörde gemäß Art. 77 DSGVO einreichen und behalte mir weitere rechtliche Schritte vor.

Mit freundlichen Grüßen{{if .RequesterName}}
{{.RequesterName}}{{end}}
`,
	"en": `Dear Sir or Madam{{if .CompanyName}} of {{.CompanyName}}{{end}},

despite my request of {{.OriginalDate}} with the subject "{{.Subject}}" and a subsequent reminder, I have not received any reply. The statutory period of one month under Art. 12(3) GDPR has therefore expired.

I ask you one final time to process my request without delay. Otherwise I will lodge a complaint with the competent supervisory authority under Art. 77 GDPR and reserve the right to take further legal action.

Kind regards{{if .RequesterName}}
{{.RequesterName}}{{end}}
`,
}
