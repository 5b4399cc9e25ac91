// Package notify sends best-effort new-lead alerts over email and SMS.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	awsclient "loandesk/internal/common/aws"
	"loandesk/internal/common/config"
	"loandesk/internal/common/logger"
	"loandesk/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Notifier fans a new lead out to the configured channels. A nil sender
// disables its channel.
type Notifier struct {
	email  EmailSender
	sms    SMSSender
	cfg    config.NotificationConfig
	logger logger.Logger
}

func NewNotifier(email EmailSender, sms SMSSender, cfg config.NotificationConfig, log logger.Logger) *Notifier {
	return &Notifier{email: email, sms: sms, cfg: cfg, logger: log}
}

// NewLead alerts every enabled channel. Failures are logged and reported in
// the returned records, never returned as an error.
func (n *Notifier) NewLead(ctx context.Context, lead *models.Lead) []models.Notification {
	return []models.Notification{
		n.sendEmail(ctx, lead),
		n.sendSMS(ctx, lead),
	}
}

func (n *Notifier) sendEmail(ctx context.Context, lead *models.Lead) models.Notification {
	record := models.Notification{
		LeadID:     lead.ID,
		Channel:    models.ChannelEmail,
		Recipients: n.cfg.Email.To,
		SentAt:     time.Now().UTC(),
	}
	if !n.cfg.Email.Enabled || n.email == nil || len(n.cfg.Email.To) == 0 {
		record.Status = models.NotificationDisabled
		return record
	}

	input := awsclient.NewTextEmail(n.cfg.Email.FromEmail, n.cfg.Email.To, emailSubject(lead), messageBody(lead))
	out, err := n.email.SendEmail(ctx, input)
	if err != nil {
		return n.failed(record, err)
	}
	record.Status = models.NotificationSent
	record.MessageID = aws.ToString(out.MessageId)
	return record
}

func (n *Notifier) sendSMS(ctx context.Context, lead *models.Lead) models.Notification {
	record := models.Notification{
		LeadID:     lead.ID,
		Channel:    models.ChannelSMS,
		Recipients: n.cfg.SMS.PhoneNumbers,
		SentAt:     time.Now().UTC(),
	}
	if !n.cfg.SMS.Enabled || n.sms == nil || len(n.cfg.SMS.PhoneNumbers) == 0 {
		record.Status = models.NotificationDisabled
		return record
	}

	text := smsText(lead)
	var failures []string
	for _, phone := range n.cfg.SMS.PhoneNumbers {
		out, err := n.sms.Publish(ctx, awsclient.NewTransactionalSMS(phone, text))
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", phone, err))
			continue
		}
		record.MessageID = aws.ToString(out.MessageId)
	}
	if len(failures) > 0 {
		return n.failed(record, fmt.Errorf("%s", strings.Join(failures, "; ")))
	}
	record.Status = models.NotificationSent
	return record
}

func (n *Notifier) failed(record models.Notification, err error) models.Notification {
	record.Status = models.NotificationFailed
	record.Error = err.Error()
	n.logger.Warn("new lead alert failed", map[string]interface{}{
		"leadId":  record.LeadID,
		"channel": string(record.Channel),
		"error":   err.Error(),
	})
	return record
}

func emailSubject(lead *models.Lead) string {
	return fmt.Sprintf("New %s lead: %s", lead.LeadSource, lead.ClientName)
}

func messageBody(lead *models.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A new lead has been received.\n\n")
	fmt.Fprintf(&b, "Lead:     %s\n", lead.LeadName)
	fmt.Fprintf(&b, "Client:   %s\n", lead.ClientName)
	fmt.Fprintf(&b, "Phone:    %s\n", lead.ContactNumber)
	fmt.Fprintf(&b, "Email:    %s\n", lead.Email)
	fmt.Fprintf(&b, "Loan:     %s\n", lead.LoanType)
	fmt.Fprintf(&b, "Branch:   %s\n", models.Deref(lead.BranchID))
	fmt.Fprintf(&b, "Lead ID:  %s\n", lead.ID)
	if lead.AdditionalInfo != "" {
		fmt.Fprintf(&b, "\n%s\n", lead.AdditionalInfo)
	}
	return b.String()
}

func smsText(lead *models.Lead) string {
	return fmt.Sprintf("New %s lead: %s, %s (%s)", lead.LeadSource, lead.ClientName, lead.ContactNumber, lead.LoanType)
}
