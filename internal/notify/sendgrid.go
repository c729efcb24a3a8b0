package notify

import (
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGridConfig holds SendGrid API settings. When configured it is used
// instead of SMTP.
type SendGridConfig struct {
	APIKey   string
	From     string
	FromName string
}

// IsConfigured returns true if an API key and sender are present.
func (c SendGridConfig) IsConfigured() bool {
	return c.APIKey != "" && c.From != ""
}

// sendGridAPI performs a SendGrid REST call. Replaced in tests.
type sendGridAPI func(req rest.Request) (*rest.Response, error)

// newSendGridMail builds a plain-text v3 mail with all recipients in one
// personalization.
func newSendGridMail(cfg SendGridConfig, to []string, subject, body string) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = subject
	for _, addr := range to {
		p.AddTos(sgmail.NewEmail("", addr))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(cfg.FromName, cfg.From))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", body))
	return m
}

// sendSendGrid delivers a message through the SendGrid v3 API.
func sendSendGrid(api sendGridAPI, cfg SendGridConfig, to []string, subject, body string) error {
	if !cfg.IsConfigured() {
		return fmt.Errorf("SendGrid not configured")
	}

	req := sendgrid.GetRequest(cfg.APIKey, sendGridEndpoint, sendGridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(newSendGridMail(cfg, to, subject, body))

	res, err := api(req)
	if err != nil {
		return fmt.Errorf("sending via SendGrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("SendGrid status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
