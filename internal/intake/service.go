package intake

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"loandesk/internal/common/errors"
	"loandesk/internal/common/facebook"
	"loandesk/internal/common/logger"
	"loandesk/internal/common/metrics"
	"loandesk/internal/common/observability"
	"loandesk/internal/models"
)

// Fixed values for fields lead-ads forms never carry.
const (
	fallbackClientName = "Facebook Lead"
	fallbackPhone      = "0000000000"
	fallbackEmail      = "noemail@facebook.com"
	fallbackAddress    = "Not provided"
	leadNamePrefix     = "FB Lead - "
	leadType           = "Facebook Lead"
	leadSource         = "Facebook"
	notAvailable       = "N/A"
)

type Service struct {
	config        *Config
	logger        logger.Logger
	fetcher       LeadFetcher
	creator       LeadCreator
	notifier      Notifier
	observability *observability.Observability
	now           func() time.Time
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:        config,
		logger:        deps.Logger,
		fetcher:       deps.Fetcher,
		creator:       deps.Creator,
		notifier:      deps.Notifier,
		observability: deps.Observability,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Process walks a batch sequentially. Every failure is confined to its own
// change; the returned Result is informational and never an error.
func (s *Service) Process(ctx context.Context, batch *Batch) *Result {
	start := time.Now()
	result := &Result{Entries: []EntryResult{}}

	for _, r := range batch.Rejected {
		s.logger.Debug("leadgen change rejected", map[string]interface{}{
			"object": batch.Object,
			"entry":  r.Entry,
			"change": r.Change,
			"reason": r.Reason,
		})
		result.add(s.record(EntryResult{
			Outcome: OutcomeRejected,
			Reason:  errors.ErrCodeEntryMalformed,
			Detail:  r.Reason,
		}))
	}

	for _, event := range batch.Events {
		result.add(s.record(s.processEvent(ctx, event)))
	}

	s.observability.RecordBatch(ctx, Provider, len(batch.Events)+len(batch.Rejected), time.Since(start))
	s.logger.Info("leadgen batch processed", map[string]interface{}{
		"object":    batch.Object,
		"persisted": result.Persisted,
		"skipped":   result.Skipped,
		"rejected":  result.Rejected,
		"duration":  time.Since(start).String(),
	})
	return result
}

func (s *Service) processEvent(ctx context.Context, event LeadgenEvent) EntryResult {
	entry := EntryResult{LeadgenID: event.LeadgenID}
	fields := map[string]interface{}{
		"leadgenId": event.LeadgenID,
		"adId":      event.AdID,
		"formId":    event.FormID,
		"pageId":    event.PageID,
	}

	record, err := s.fetch(ctx, event.LeadgenID)
	if err != nil {
		stdErr := errors.AsStandard(err)
		fields["errorCode"] = string(stdErr.Code)
		fields["error"] = stdErr.Details
		s.logger.Error("leadgen fetch failed", fields)
		entry.Outcome = OutcomeSkipped
		entry.Reason = stdErr.Code
		entry.Detail = stdErr.Details
		return entry
	}

	lead := s.Transform(event, record)

	created, err := s.creator.Create(ctx, lead)
	if err == nil && created == nil {
		err = fmt.Errorf("lead store returned no lead")
	}
	if err != nil {
		stdErr := errors.AsStandard(err)
		if stdErr.Code == errors.ErrCodeInternal {
			stdErr = errors.NewDatabaseInsertFailedError(err)
		}
		fields["errorCode"] = string(stdErr.Code)
		fields["error"] = err.Error()
		s.logger.Error("leadgen lead persist failed", fields)
		entry.Outcome = OutcomeSkipped
		entry.Reason = stdErr.Code
		entry.Detail = err.Error()
		return entry
	}

	entry.Outcome = OutcomePersisted
	entry.LeadID = created.ID
	fields["leadId"] = created.ID
	s.logger.Info("leadgen lead persisted", fields)

	if s.notifier != nil {
		entry.Notifications = s.notifier.NewLead(ctx, created)
		for _, n := range entry.Notifications {
			metrics.NotificationsTotal.WithLabelValues(string(n.Channel), string(n.Status)).Inc()
		}
	}
	return entry
}

// fetch retrieves the provider record and classifies failures.
func (s *Service) fetch(ctx context.Context, leadgenID string) (*facebook.LeadRecord, error) {
	if s.fetcher == nil || !s.fetcher.Configured() {
		return nil, errors.NewProviderNotConfiguredError("FACEBOOK_ACCESS_TOKEN is not set")
	}

	start := time.Now()
	record, err := s.fetcher.GetLead(ctx, leadgenID)
	metrics.IntakeFetchDuration.WithLabelValues(Provider).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		return record, nil
	case stderrors.Is(err, facebook.ErrAccessTokenMissing):
		return nil, errors.NewProviderNotConfiguredError(err.Error())
	case stderrors.Is(err, facebook.ErrInvalidResponse):
		return nil, errors.NewProviderResponseInvalidError(err.Error())
	default:
		stdErr := errors.NewProviderFetchFailedError(err)
		var apiErr *facebook.APIError
		if stderrors.As(err, &apiErr) {
			stdErr.WithMetadata("status", apiErr.StatusCode)
		}
		return nil, stdErr
	}
}

// Transform maps a provider record onto a new internal lead.
func (s *Service) Transform(event LeadgenEvent, record *facebook.LeadRecord) *models.Lead {
	fields := record.Fields()

	createdAt, ok := record.CreatedAt()
	if !ok {
		createdAt = s.now()
	}

	adID := firstNonEmpty(record.AdID, event.AdID, notAvailable)
	formID := firstNonEmpty(record.FormID, event.FormID, notAvailable)

	return &models.Lead{
		LeadName:          leadNamePrefix + event.LeadgenID,
		ClientName:        firstNonEmpty(fields["full_name"], fields["name"], fallbackClientName),
		ContactNumber:     firstNonEmpty(fields["phone_number"], fallbackPhone),
		Email:             firstNonEmpty(fields["email"], fallbackEmail),
		Address:           firstNonEmpty(fields["address"], fallbackAddress),
		LoanType:          s.config.DefaultLoanType,
		LeadType:          leadType,
		LeadSource:        leadSource,
		ApplicationStatus: models.LeadStatusLogin,
		BranchID:          models.StringPtr(s.config.DefaultBranchID),
		AdditionalInfo:    fmt.Sprintf("Facebook Lead - Ad ID: %s, Form ID: %s", adID, formID),
		ProviderLeadID:    models.StringPtr(event.LeadgenID),
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}
}

func (s *Service) record(e EntryResult) EntryResult {
	metrics.IntakeEntriesTotal.WithLabelValues(Provider, string(e.Outcome), string(e.Reason)).Inc()
	return e
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
