// file: internals/services/email/email.go
package emailsvc

import (
	"context"
	"net/mail"
	"strings"
)

type Message struct {
	To          []mail.Address
	Subject     string
	TextContent string
	HTMLContent string
}

func (m Message) HasRecipients() bool { return len(m.To) > 0 }

func (m Message) HasContent() bool {
	return strings.TrimSpace(m.TextContent) != "" || strings.TrimSpace(m.HTMLContent) != ""
}

// Service delivers a single message. Implementations must be safe for
// concurrent use.
type Service interface {
	Send(ctx context.Context, msg Message) error
}

// New picks SendGrid when an API key is configured, the console otherwise.
func New(apiKey, appName, fromEmail string) Service {
	if strings.TrimSpace(apiKey) == "" {
		return NewConsoleService(appName, fromEmail)
	}
	return NewSendgridService(apiKey, appName, fromEmail)
}
