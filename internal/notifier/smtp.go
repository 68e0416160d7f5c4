package notifier

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"

	"api/internal/models"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

type SMTPNotifier struct {
	config    models.SMTPNotifierConfiguration
	templates *template.Template
}

func NewSMTPNotifier(config models.SMTPNotifierConfiguration) *SMTPNotifier {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		zap.L().Fatal("Failed to parse notification templates", zap.Error(err))
	}
	return &SMTPNotifier{config: config, templates: templates}
}

func (s *SMTPNotifier) NotifyFromTemplate(
	to string,
	subject string,
	templateName string,
	data any,
) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName+".html", data); err != nil {
		return fmt.Errorf("failed to render template %q: %w", templateName, err)
	}

	msg := mail.NewMsg()
	if err := msg.From(s.config.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body.String())

	client, err := s.newClient()
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err = client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	zap.L().Info("Notification sent",
		zap.String("to", to),
		zap.String("template", templateName),
	)
	return nil
}

func (s *SMTPNotifier) newClient() (*mail.Client, error) {
	options := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}

	if s.config.EnableTLS {
		options = append(options, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if s.config.SkipVerifyTLS {
		tlsConfig := &tls.Config{InsecureSkipVerify: true} //nolint:gosec // self-signed dev relays
		options = append(options, mail.WithTLSConfig(tlsConfig))
	}
	if s.config.Username != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
		)
	}

	return mail.NewClient(s.config.Host, options...)
}
