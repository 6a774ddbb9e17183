package core

import (
	"net/mail"
	"strings"
)

type (
	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		TextContent string
		HTMLContent string
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)

		// SendMessage sends one message synchronously and reports failure,
		// for callers that audit delivery per recipient.
		SendMessage(msg *EmailMessage) error
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }

// ExpandPlaceholders substitutes `{key}` markers in campaign email bodies
// ({first_name}, {last_name}, {survey_link}, {deadline}, {status}).
func ExpandPlaceholders(body string, data map[string]string) string {
	for key, val := range data {
		body = strings.ReplaceAll(body, "{"+key+"}", val)
	}
	return body
}
