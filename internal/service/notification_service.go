package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"dental-booking/internal/domain/entity"
	"dental-booking/internal/infrastructure/mailer"
	"dental-booking/internal/infrastructure/metrics"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// NotificationKind selects the email a patient receives
type NotificationKind string

const (
	NotificationApproval        NotificationKind = "approval"
	NotificationCancellation    NotificationKind = "cancellation"
	NotificationPendingReminder NotificationKind = "pending-reminder"
)

// ErrNoRecipient means the appointment has no contact with an email address
var ErrNoRecipient = errors.New("notify: no email address for appointment contact")

// NotificationData is what every template may reference.
type NotificationData struct {
	PatientName string
	ServiceName string
	Date        time.Time
	Time        string
	Price       decimal.Decimal
}

// NotificationDataFor fills the template fields from a loaded appointment,
// falling back to "Patient", the free-text service type and a zero price.
func NotificationDataFor(a *entity.Appointment) NotificationData {
	data := NotificationData{
		PatientName: entity.DefaultPatientName,
		ServiceName: a.ServiceLabel(),
		Date:        a.Date,
		Time:        a.Time,
		Price:       decimal.Zero,
	}
	if contact := a.Contact(); contact != nil {
		data.PatientName = contact.DisplayName()
	}
	if a.Service != nil {
		data.Price = a.Service.Price
	}
	return data
}

// Notifier delivers lifecycle emails to a patient or guest.
type Notifier interface {
	Send(ctx context.Context, kind NotificationKind, recipient entity.Contact, data NotificationData) error
}

type notificationTemplate struct {
	subject string
	heading string
	intro   string
	html    *template.Template
}

type NotificationService struct {
	sender     mailer.Sender
	clinicName string
	log        *logrus.Logger
	metrics    *metrics.SchedulingMetrics
	templates  map[NotificationKind]notificationTemplate
}

func NewNotificationService(sender mailer.Sender, clinicName string, log *logrus.Logger, m *metrics.SchedulingMetrics) (*NotificationService, error) {
	base, err := template.New("email").Parse(emailLayout)
	if err != nil {
		return nil, fmt.Errorf("parse email layout: %w", err)
	}

	templates := make(map[NotificationKind]notificationTemplate, len(notificationCopy))
	for kind, c := range notificationCopy {
		tmpl, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone email layout: %w", err)
		}
		if _, err := tmpl.New("details").Parse(c.details); err != nil {
			return nil, fmt.Errorf("parse %s template: %w", kind, err)
		}
		templates[kind] = notificationTemplate{
			subject: c.subject,
			heading: c.heading,
			intro:   c.intro,
			html:    tmpl,
		}
	}

	return &NotificationService{
		sender:     sender,
		clinicName: clinicName,
		log:        log,
		metrics:    m,
		templates:  templates,
	}, nil
}

func (s *NotificationService) Send(ctx context.Context, kind NotificationKind, recipient entity.Contact, data NotificationData) error {
	tmpl, ok := s.templates[kind]
	if !ok {
		return fmt.Errorf("notify: unknown notification kind %q", kind)
	}
	if recipient == nil || recipient.Email() == "" {
		return ErrNoRecipient
	}

	msg, err := s.render(tmpl, recipient, data)
	if err != nil {
		return fmt.Errorf("notify: render %s: %w", kind, err)
	}

	err = s.sender.Send(ctx, msg)
	s.metrics.ObserveNotification(string(kind), err)
	if err != nil {
		return fmt.Errorf("notify: send %s to %s: %w", kind, msg.To, err)
	}

	s.log.Infof("%s email sent to %s", kind, msg.To)
	return nil
}

type emailView struct {
	ClinicName  string
	Heading     string
	Intro       string
	PatientName string
	ServiceName string
	Date        string
	Time        string
	Price       string
}

func (s *NotificationService) render(tmpl notificationTemplate, recipient entity.Contact, data NotificationData) (mailer.Message, error) {
	view := emailView{
		ClinicName:  s.clinicName,
		Heading:     tmpl.heading,
		Intro:       tmpl.intro,
		PatientName: data.PatientName,
		ServiceName: data.ServiceName,
		Date:        data.Date.Format("Monday, January 2, 2006"),
		Time:        data.Time,
		Price:       data.Price.StringFixed(2),
	}
	if view.PatientName == "" {
		view.PatientName = recipient.DisplayName()
	}

	var html bytes.Buffer
	if err := tmpl.html.ExecuteTemplate(&html, "email", view); err != nil {
		return mailer.Message{}, err
	}

	text := fmt.Sprintf("Dear %s,\n\n%s\n\nService: %s\nDate: %s\nTime: %s\n\n%s Team",
		view.PatientName, view.Intro, view.ServiceName, view.Date, view.Time, s.clinicName)

	return mailer.Message{
		To:      recipient.Email(),
		ToName:  view.PatientName,
		Subject: fmt.Sprintf("%s - %s", tmpl.subject, s.clinicName),
		Body:    text,
		HTML:    html.String(),
	}, nil
}

const emailLayout = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h1 style="color: #0077b6;">{{.ClinicName}}</h1>
<h2>{{.Heading}}</h2>
<p>Dear <strong>{{.PatientName}}</strong>,</p>
<p>{{.Intro}}</p>
<table>
<tr><td><strong>Service:</strong></td><td>{{.ServiceName}}</td></tr>
<tr><td><strong>Date:</strong></td><td>{{.Date}}</td></tr>
<tr><td><strong>Time:</strong></td><td>{{.Time}}</td></tr>
{{template "details" .}}
</table>
<p>Best regards,<br><strong>{{.ClinicName}} Team</strong></p>
<p style="color: #999; font-size: 12px;">This is an automated email. Please do not reply to this message.</p>
</div>`

var notificationCopy = map[NotificationKind]struct {
	subject string
	heading string
	intro   string
	details string
}{
	NotificationApproval: {
		subject: "Appointment Approved",
		heading: "Appointment Approved!",
		intro:   "Great news! Your appointment has been approved. Please arrive 10-15 minutes early.",
		details: `<tr><td><strong>Fee:</strong></td><td>Rs. {{.Price}}</td></tr>`,
	},
	NotificationCancellation: {
		subject: "Appointment Cancelled",
		heading: "Appointment Cancelled",
		intro:   "We regret to inform you that your appointment has been cancelled. Please contact us to book a new appointment.",
		details: `<tr><td><strong>Status:</strong></td><td>Cancelled</td></tr>`,
	},
	NotificationPendingReminder: {
		subject: "Appointment Status Update",
		heading: "Appointment Still Pending",
		intro:   "Your appointment is still pending. The doctor has not accepted your appointment yet. Please contact us directly if you have any questions.",
		details: `<tr><td><strong>Status:</strong></td><td>Pending</td></tr>`,
	},
}
