package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"
	textTemplate "text/template"
	"time"

	"inquiry-backend/config"
	"inquiry-backend/internal/domain"

	"github.com/wneessen/go-mail"
)

// SMTPSender delivers inquiries to the sales mailbox through an SMTP relay
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
	toEmail   string
	timeout   time.Duration
}

// inquiryEmailData holds the data for inquiry emails
type inquiryEmailData struct {
	Inquiry domain.Inquiry
	Date    string
}

// NewSMTPSender creates a new SMTP sender from the SMTP_* settings
func NewSMTPSender(cfg *config.Config) *SMTPSender {
	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil || port == 0 {
		port = 587
	}
	from := cfg.SMTPFromEmail
	if from == "" {
		from = cfg.SMTPUsername
	}
	return &SMTPSender{
		host:      cfg.SMTPHost,
		port:      port,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: from,
		toEmail:   cfg.ContactEmailTo,
		timeout:   cfg.DispatchTimeout,
	}
}

// inquiryEmailTemplate is the HTML template for inquiry emails
const inquiryEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Shipping Inquiry</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0b5a2b; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .field { margin-bottom: 15px; }
        .label { font-weight: bold; color: #555; }
        .message-box { background: white; padding: 15px; border-left: 4px solid #0b5a2b; margin-top: 10px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>New Shipping Inquiry</h1></div>
        <div class="content">
            <div class="field"><div class="label">Name:</div><div>{{.Inquiry.Name}}</div></div>
            <div class="field"><div class="label">Company:</div><div>{{.Inquiry.Company}}</div></div>
            <div class="field"><div class="label">Email:</div><div>{{.Inquiry.Email}}</div></div>
            <div class="field"><div class="label">Phone:</div><div>{{.Inquiry.Phone}}</div></div>
            <div class="field"><div class="label">POL/POD:</div><div>{{.Inquiry.PolPod}}</div></div>
            <div class="field">
                <div class="label">Commodity Description (HS CODE):</div>
                <div class="message-box">{{.Inquiry.Commodity}}</div>
            </div>
        </div>
        <div class="footer">
            <p>Submitted {{.Date}} through the website contact form.</p>
            <p>To reply, send an email to: {{.Inquiry.Email}}</p>
        </div>
    </div>
</body>
</html>`

const inquiryTextTemplate = `New shipping inquiry ({{.Date}})

Name: {{.Inquiry.Name}}
Company: {{.Inquiry.Company}}
Email: {{.Inquiry.Email}}
Phone: {{.Inquiry.Phone}}
POL/POD: {{.Inquiry.PolPod}}

Commodity Description (HS CODE):
{{.Inquiry.Commodity}}
`

var (
	htmlTmpl = template.Must(template.New("inquiry").Parse(inquiryEmailTemplate))
	textTmpl = textTemplate.Must(textTemplate.New("inquiry").Parse(inquiryTextTemplate))
)

// RenderBodies renders the HTML and plain-text bodies for an inquiry
func RenderBodies(params domain.TemplateParams) (htmlBody, textBody string, err error) {
	data := inquiryEmailData{Inquiry: inquiryFromParams(params), Date: params["date"]}

	var h, t bytes.Buffer
	if err := htmlTmpl.Execute(&h, data); err != nil {
		return "", "", fmt.Errorf("failed to execute email template: %w", err)
	}
	if err := textTmpl.Execute(&t, data); err != nil {
		return "", "", fmt.Errorf("failed to execute text template: %w", err)
	}
	return h.String(), t.String(), nil
}

// Dispatch sends the inquiry email to the configured recipient
func (s *SMTPSender) Dispatch(ctx context.Context, params domain.TemplateParams) error {
	if !s.IsConfigured() {
		return &domain.DispatchError{Reason: "SMTP relay is not configured", Err: domain.ErrDispatchUnconfigured}
	}

	htmlBody, textBody, err := RenderBodies(params)
	if err != nil {
		return err
	}

	m := mail.NewMsg()
	if err := m.From(s.fromEmail); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(s.toEmail); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	// Reply goes straight to the inquirer
	if replyTo := params[domain.FieldEmail.Key()]; replyTo != "" {
		if err := m.ReplyTo(replyTo); err != nil {
			return &domain.DispatchError{Reason: "invalid reply-to address", Err: err}
		}
	}
	m.Subject(fmt.Sprintf("Inquiry: %s (%s)", params[domain.FieldCompany.Key()], params[domain.FieldPolPod.Key()]))
	m.SetBodyString(mail.TypeTextPlain, textBody)
	m.AddAlternativeString(mail.TypeTextHTML, htmlBody)

	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTimeout(s.timeout),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.username),
		mail.WithPassword(s.password),
	}
	if s.port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	c, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return &domain.DispatchError{Reason: err.Error(), Err: err}
	}

	return nil
}

// IsConfigured checks if the sender has valid SMTP configuration
func (s *SMTPSender) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != "" && s.toEmail != ""
}

// NewDispatcher returns the dispatcher selected by EMAIL_PROVIDER
func NewDispatcher(cfg *config.Config) domain.Dispatcher {
	switch cfg.EmailProvider {
	case config.ProviderSMTP:
		return NewSMTPSender(cfg)
	default:
		return NewEmailJSClient(cfg, nil)
	}
}
