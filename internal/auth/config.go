// Package auth gates the HTTP API behind bearer API keys.
package auth

import (
	"os"
	"strings"
)

// Config holds server configuration read from the environment.
type Config struct {
	DevMode    bool
	BaseURL    string // e.g. http://localhost:8080
	AlertEmail []string
	SMTPHost   string
	SMTPPort   string
	SMTPUser   string
	SMTPPass   string
	SMTPFrom   string

	SendGridKey  string // when set, alerts go through SendGrid instead of SMTP
	MailFromName string // display name for the sender
}

// ConfigFromEnv creates a Config from environment variables.
func ConfigFromEnv() Config {
	return Config{
		DevMode:    os.Getenv("FD_DEV_MODE") == "true",
		BaseURL:    envOrDefault("FD_BASE_URL", "http://localhost:8080"),
		AlertEmail: splitList(os.Getenv("FD_ALERT_EMAIL")),
		SMTPHost:   os.Getenv("FD_SMTP_HOST"),
		SMTPPort:   envOrDefault("FD_SMTP_PORT", "587"),
		SMTPUser:   os.Getenv("FD_SMTP_USER"),
		SMTPPass:   os.Getenv("FD_SMTP_PASS"),
		SMTPFrom:   os.Getenv("FD_SMTP_FROM"),

		SendGridKey:  os.Getenv("FD_SENDGRID_API_KEY"),
		MailFromName: envOrDefault("FD_MAIL_FROM_NAME", "Front Desk"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
