package notify

import (
	"context"
	"errors"
	"testing"

	"loandesk/internal/common/config"
	"loandesk/internal/common/logger"
	"loandesk/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks
// ==========================

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, input)
	if out := args.Get(0); out != nil {
		return out.(*ses.SendEmailOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	args := m.Called(ctx, input)
	if out := args.Get(0); out != nil {
		return out.(*sns.PublishOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

func createTestLead() *models.Lead {
	return &models.Lead{
		ID:            "L1",
		LeadName:      "FB Lead - 123",
		ClientName:    "Asha Rao",
		ContactNumber: "9876543210",
		LoanType:      "Personal Loan",
		LeadSource:    "Facebook",
		BranchID:      models.StringPtr("main"),
	}
}

func createTestConfig(email, sms bool) config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.Email.Enabled = email
	cfg.Email.FromEmail = "alerts@loandesk.example"
	cfg.Email.To = []string{"ops@loandesk.example"}
	cfg.SMS.Enabled = sms
	cfg.SMS.PhoneNumbers = []string{"+911111111111", "+912222222222"}
	return cfg
}

// ==========================
// Tests
// ==========================

func TestNotifier_DisabledChannelsSendNothing(t *testing.T) {
	email := new(MockEmailSender)
	sms := new(MockSMSSender)
	n := NewNotifier(email, sms, createTestConfig(false, false), logger.NewTestLogger(t))

	records := n.NewLead(context.Background(), createTestLead())

	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, models.NotificationDisabled, r.Status)
	}
	email.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	sms.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestNotifier_SendsOnEveryChannel(t *testing.T) {
	email := new(MockEmailSender)
	sms := new(MockSMSSender)

	email.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.ToString(in.Source) == "alerts@loandesk.example" &&
			aws.ToString(in.Message.Subject.Data) == "New Facebook lead: Asha Rao"
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("email-1")}, nil)
	sms.On("Publish", mock.Anything, mock.Anything).Return(&sns.PublishOutput{MessageId: aws.String("sms-1")}, nil).Twice()

	n := NewNotifier(email, sms, createTestConfig(true, true), logger.NewTestLogger(t))
	records := n.NewLead(context.Background(), createTestLead())

	assert.Equal(t, models.NotificationSent, records[0].Status)
	assert.Equal(t, "email-1", records[0].MessageID)
	assert.Equal(t, models.NotificationSent, records[1].Status)
	email.AssertExpectations(t)
	sms.AssertExpectations(t)
}

func TestNotifier_FailuresAreReportedNotReturned(t *testing.T) {
	email := new(MockEmailSender)
	sms := new(MockSMSSender)

	email.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("MessageRejected"))
	sms.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return aws.ToString(in.PhoneNumber) == "+911111111111"
	})).Return(nil, errors.New("throttled"))
	sms.On("Publish", mock.Anything, mock.Anything).Return(&sns.PublishOutput{MessageId: aws.String("sms-2")}, nil)

	n := NewNotifier(email, sms, createTestConfig(true, true), logger.NewTestLogger(t))
	records := n.NewLead(context.Background(), createTestLead())

	assert.Equal(t, models.NotificationFailed, records[0].Status)
	assert.Contains(t, records[0].Error, "MessageRejected")
	assert.Equal(t, models.NotificationFailed, records[1].Status)
	assert.Contains(t, records[1].Error, "+911111111111: throttled")
	assert.NotContains(t, records[1].Error, "+912222222222")
}

func TestMessageBody(t *testing.T) {
	lead := createTestLead()
	lead.AdditionalInfo = "Facebook Lead - Ad ID: A1, Form ID: F1"

	body := messageBody(lead)
	assert.Contains(t, body, "Client:   Asha Rao")
	assert.Contains(t, body, "Branch:   main")
	assert.Contains(t, body, "Ad ID: A1")
	assert.Equal(t, "New Facebook lead: Asha Rao, 9876543210 (Personal Loan)", smsText(lead))
}
