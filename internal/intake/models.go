package intake

import (
	"context"

	"loandesk/internal/common/errors"
	"loandesk/internal/common/facebook"
	"loandesk/internal/common/logger"
	"loandesk/internal/common/observability"
	"loandesk/internal/models"
)

// LeadgenEvent is one accepted "a lead was generated" change.
type LeadgenEvent struct {
	LeadgenID string `json:"leadgen_id"`
	AdID      string `json:"ad_id,omitempty"`
	FormID    string `json:"form_id,omitempty"`
	PageID    string `json:"page_id,omitempty"`

	Entry  int `json:"-"`
	Change int `json:"-"`
}

// Rejection records a change (or whole entry, Change == -1) that failed
// validation. Entry is -1 when the batch itself was not addressed to a page.
type Rejection struct {
	Entry  int    `json:"entry"`
	Change int    `json:"change"`
	Reason string `json:"reason"`
}

// Batch is the parsed form of one webhook delivery.
type Batch struct {
	Object   string         `json:"object"`
	Events   []LeadgenEvent `json:"events"`
	Rejected []Rejection    `json:"rejected,omitempty"`
}

type Outcome string

const (
	OutcomePersisted Outcome = "persisted"
	OutcomeRejected  Outcome = "rejected"
	OutcomeSkipped   Outcome = "skipped"
)

// EntryResult is the terminal state of one change.
type EntryResult struct {
	LeadgenID     string                `json:"leadgenId,omitempty"`
	Outcome       Outcome               `json:"outcome"`
	Reason        errors.ErrorCode      `json:"reason,omitempty"`
	Detail        string                `json:"detail,omitempty"`
	LeadID        string                `json:"leadId,omitempty"`
	Notifications []models.Notification `json:"notifications,omitempty"`
}

// Result summarizes a processed batch.
type Result struct {
	Persisted int           `json:"persisted"`
	Skipped   int           `json:"skipped"`
	Rejected  int           `json:"rejected"`
	Entries   []EntryResult `json:"entries"`
}

func (r *Result) add(e EntryResult) {
	switch e.Outcome {
	case OutcomePersisted:
		r.Persisted++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeRejected:
		r.Rejected++
	}
	r.Entries = append(r.Entries, e)
}

// LeadCreator persists a transformed lead and returns it with its id.
type LeadCreator interface {
	Create(ctx context.Context, lead *models.Lead) (*models.Lead, error)
}

// LeadFetcher retrieves the full lead record from the provider.
type LeadFetcher interface {
	Configured() bool
	GetLead(ctx context.Context, leadgenID string) (*facebook.LeadRecord, error)
}

// Notifier announces a persisted lead. Optional.
type Notifier interface {
	NewLead(ctx context.Context, lead *models.Lead) []models.Notification
}

type ServiceDependencies struct {
	Logger        logger.Logger
	Fetcher       LeadFetcher
	Creator       LeadCreator
	Notifier      Notifier
	Observability *observability.Observability
}
