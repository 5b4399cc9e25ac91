// Package facebook is a minimal Graph API client for lead-ads retrieval.
package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	httpclient "loandesk/internal/common/http"
)

// leadFields is the projection requested for every lead.
const leadFields = "field_data,created_time,ad_id,form_id"

// createdTimeLayout is the Graph API timestamp format, e.g. 2024-03-01T10:15:00+0000.
const createdTimeLayout = "2006-01-02T15:04:05-0700"

var (
	// ErrAccessTokenMissing is returned when no page access token is configured.
	ErrAccessTokenMissing = errors.New("facebook access token not configured")
	// ErrInvalidResponse is returned for 2xx bodies that are not a lead record.
	ErrInvalidResponse = errors.New("invalid lead response")
)

type FieldData struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// LeadRecord is the provider's view of a single lead submission.
type LeadRecord struct {
	ID          string      `json:"id"`
	FieldData   []FieldData `json:"field_data"`
	CreatedTime string      `json:"created_time"`
	AdID        string      `json:"ad_id"`
	FormID      string      `json:"form_id"`
}

// Fields flattens field_data to name → value. An entry is used only when its
// name and its first value are both non-empty; the first occurrence of a name
// wins.
func (r *LeadRecord) Fields() map[string]string {
	out := make(map[string]string, len(r.FieldData))
	for _, f := range r.FieldData {
		if f.Name == "" || len(f.Values) == 0 || f.Values[0] == "" {
			continue
		}
		if _, seen := out[f.Name]; seen {
			continue
		}
		out[f.Name] = f.Values[0]
	}
	return out
}

// CreatedAt parses created_time. ok is false when absent or unparseable.
func (r *LeadRecord) CreatedAt() (time.Time, bool) {
	if r.CreatedTime == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(createdTimeLayout, r.CreatedTime); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, r.CreatedTime); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// APIError carries the HTTP status and Graph error text of a failed call.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Code       int
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("graph api error (status %d): %s (%s, code %d)", e.StatusCode, e.Message, e.Type, e.Code)
	}
	return fmt.Sprintf("graph api error (status %d): %s", e.StatusCode, e.Message)
}

type graphErrorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// GraphClient fetches lead details from the Graph API.
type GraphClient struct {
	baseURL     string
	version     string
	accessToken string
	httpClient  *httpclient.Client
}

func NewGraphClient(baseURL, version, accessToken string, timeout time.Duration) *GraphClient {
	return &GraphClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		version:     version,
		accessToken: accessToken,
		httpClient:  httpclient.NewClient(timeout),
	}
}

// Configured reports whether an access token is present.
func (c *GraphClient) Configured() bool {
	return c.accessToken != ""
}

// GetLead retrieves one lead by its leadgen id.
func (c *GraphClient) GetLead(ctx context.Context, leadgenID string) (*LeadRecord, error) {
	if !c.Configured() {
		return nil, ErrAccessTokenMissing
	}

	q := url.Values{}
	q.Set("fields", leadFields)
	q.Set("access_token", c.accessToken)
	endpoint := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.version, url.PathEscape(leadgenID), q.Encode())

	resp, err := c.httpClient.Get(ctx, endpoint, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lead %s: %w", leadgenID, err)
	}

	if !resp.OK() {
		return nil, parseAPIError(resp.StatusCode, resp.Body)
	}

	var record LeadRecord
	if err := json.Unmarshal(resp.Body, &record); err != nil {
		return nil, fmt.Errorf("%w: failed to decode lead %s: %v", ErrInvalidResponse, leadgenID, err)
	}
	if record.FieldData == nil {
		return nil, fmt.Errorf("%w: lead %s response has no field_data", ErrInvalidResponse, leadgenID)
	}
	if record.ID == "" {
		record.ID = leadgenID
	}

	return &record, nil
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	var env graphErrorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		apiErr.Message = env.Error.Message
		apiErr.Type = env.Error.Type
		apiErr.Code = env.Error.Code
	}
	return apiErr
}
