package channel

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	texttemplate "text/template"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/instrument"
	"github.com/shandysiswandi/herald/internal/pkg/mail"
	"github.com/shandysiswandi/herald/internal/pkg/sms"
)

//go:embed templates/*
var templates embed.FS

// Channel renders notifications and hands them to the email and SMS providers.
type Channel struct {
	mail    mail.Mail
	sms     sms.SMS
	region  string
	webURL  string
	appName string
	ins     instrument.Instrumentation

	emailTpl *template.Template
	smsTpl   *texttemplate.Template
}

type Config struct {
	// DefaultRegion is used to read national phone numbers, e.g. "BR".
	DefaultRegion string
	// WebURL prefixes relative action urls in emails.
	WebURL  string
	AppName string
}

func New(m mail.Mail, s sms.SMS, cfg Config, ins instrument.Instrumentation) (*Channel, error) {
	emailTpl, err := template.ParseFS(templates, "templates/email.html")
	if err != nil {
		return nil, err
	}
	smsTpl, err := texttemplate.ParseFS(templates, "templates/sms.txt")
	if err != nil {
		return nil, err
	}

	return &Channel{
		mail:     m,
		sms:      s,
		region:   cfg.DefaultRegion,
		webURL:   cfg.WebURL,
		appName:  cfg.AppName,
		ins:      ins,
		emailTpl: emailTpl,
		smsTpl:   smsTpl,
	}, nil
}

type view struct {
	AppName   string
	Name      string
	Title     string
	Body      string
	ActionURL string
	Urgent    bool
}

func (c *Channel) view(to entity.UserContact, n entity.Notification) view {
	action := n.ActionURL
	if action != "" && action[0] == '/' {
		action = c.webURL + action
	}

	return view{
		AppName:   c.appName,
		Name:      to.Name,
		Title:     n.Title,
		Body:      n.Body,
		ActionURL: action,
		Urgent:    n.Priority == entity.PriorityUrgent,
	}
}

func (c *Channel) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("notification.outbound.channel").Start(ctx, name)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (c *Channel) SendEmail(ctx context.Context, to entity.UserContact, n entity.Notification) error {
	ctx, span := c.startSpan(ctx, "SendEmail")
	defer span.End()

	var body bytes.Buffer
	if err := c.emailTpl.Execute(&body, c.view(to, n)); err != nil {
		return fail(span, err)
	}

	subject := n.Title
	if n.Priority == entity.PriorityUrgent {
		subject = "[URGENT] " + subject
	}

	if err := c.mail.Send(ctx, mail.Message{
		To:       []string{to.Email},
		Subject:  subject,
		TextBody: n.Body,
		HTMLBody: body.String(),
	}); err != nil {
		return fail(span, err)
	}

	return nil
}

func (c *Channel) SendSMS(ctx context.Context, to entity.UserContact, n entity.Notification) error {
	ctx, span := c.startSpan(ctx, "SendSMS")
	defer span.End()

	number, err := sms.Normalize(to.Phone, c.region)
	if err != nil {
		return fail(span, err)
	}

	var body bytes.Buffer
	if err := c.smsTpl.Execute(&body, c.view(to, n)); err != nil {
		return fail(span, err)
	}

	if err := c.sms.Send(ctx, sms.Message{To: number, Body: body.String()}); err != nil {
		return fail(span, err)
	}

	return nil
}

func (c *Channel) SMSEnabled() bool {
	return c.sms != nil && c.sms.Enabled()
}
