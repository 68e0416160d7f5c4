package notifier

import (
	"io"
	"testing"

	"api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPNotifierClient(t *testing.T) {
	t.Run("should build a client for a plain relay", func(t *testing.T) {
		smtp := NewSMTPNotifier(models.SMTPNotifierConfiguration{
			Host: "smtp.example.com",
			Port: 1025,
			From: "noreply@example.com",
		})

		client, err := smtp.newClient()
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("should build a client with auth, TLS and skipped verification", func(t *testing.T) {
		smtp := NewSMTPNotifier(models.SMTPNotifierConfiguration{
			Host:          "smtp.example.com",
			Port:          587,
			Username:      "notifications",
			Password:      "secret",
			From:          "noreply@example.com",
			EnableTLS:     true,
			SkipVerifyTLS: true,
		})

		client, err := smtp.newClient()
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("should render every notification template", func(t *testing.T) {
		smtp := NewSMTPNotifier(models.SMTPNotifierConfiguration{
			Host: "smtp.example.com",
			Port: 1025,
			From: "noreply@example.com",
		})

		data := map[string]string{"Username": "alice", "WebURL": "http://localhost:3000"}
		for _, name := range []string{
			"user_welcome",
			"mfa_enabled",
			"mfa_disabled",
			"recovery_codes_regenerated",
		} {
			tmpl := smtp.templates.Lookup(name + ".html")
			require.NotNil(t, tmpl, name)
			assert.NoError(t, tmpl.Execute(io.Discard, data), name)
		}
	})
}
