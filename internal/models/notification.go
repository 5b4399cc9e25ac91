// internal/models/notification.go
package models

import "time"

type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
)

type NotificationStatus string

const (
	NotificationSent     NotificationStatus = "sent"
	NotificationFailed   NotificationStatus = "failed"
	NotificationDisabled NotificationStatus = "disabled"
)

// Notification records the outcome of one new-lead alert on one channel.
type Notification struct {
	LeadID     string              `json:"leadId"`
	Channel    NotificationChannel `json:"channel"`
	Status     NotificationStatus  `json:"status"`
	Recipients []string            `json:"recipients,omitempty"`
	MessageID  string              `json:"messageId,omitempty"`
	Error      string              `json:"error,omitempty"`
	SentAt     time.Time           `json:"sentAt"`
}
