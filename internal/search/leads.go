// Package search keeps a full-text Elasticsearch index of leads.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"loandesk/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

const defaultSearchSize = 20

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":                {"type": "keyword"},
      "leadName":          {"type": "text"},
      "clientName":        {"type": "text"},
      "contactNumber":     {"type": "keyword"},
      "email":             {"type": "keyword"},
      "loanType":          {"type": "keyword"},
      "leadSource":        {"type": "keyword"},
      "applicationStatus": {"type": "keyword"},
      "branchId":          {"type": "keyword"},
      "createdAt":         {"type": "date"}
    }
  }
}`

// LeadIndex indexes and queries lead documents.
type LeadIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewLeadIndex(client *elasticsearch.Client, index string) *LeadIndex {
	return &LeadIndex{client: client, index: index}
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (x *LeadIndex) EnsureIndex(ctx context.Context) error {
	res, err := x.client.Indices.Exists([]string{x.index}, x.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", x.index, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = x.client.Indices.Create(x.index,
		x.client.Indices.Create.WithContext(ctx),
		x.client.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", x.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res.StatusCode, res.Body)
	}
	return nil
}

// Index upserts the lead document.
func (x *LeadIndex) Index(ctx context.Context, lead *models.Lead) error {
	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("encode lead %s: %w", lead.ID, err)
	}

	res, err := x.client.Index(x.index, bytes.NewReader(body),
		x.client.Index.WithContext(ctx),
		x.client.Index.WithDocumentID(lead.ID),
	)
	if err != nil {
		return fmt.Errorf("index lead %s: %w", lead.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index lead", res.StatusCode, res.Body)
	}
	return nil
}

// Delete removes the lead document. A missing document is not an error.
func (x *LeadIndex) Delete(ctx context.Context, id string) error {
	res, err := x.client.Delete(x.index, id, x.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete lead %s from index: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete lead", res.StatusCode, res.Body)
	}
	return nil
}

// Query is a lead search request. BranchID restricts hits when set.
type Query struct {
	Text     string
	BranchID string
	Size     int
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string      `json:"_id"`
			Source models.Lead `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search matches text against name, phone and email fields.
func (x *LeadIndex) Search(ctx context.Context, q Query) ([]models.Lead, error) {
	size := q.Size
	if size <= 0 {
		size = defaultSearchSize
	}

	body, err := json.Marshal(buildQuery(q, size))
	if err != nil {
		return nil, fmt.Errorf("encode search query: %w", err)
	}

	res, err := x.client.Search(
		x.client.Search.WithContext(ctx),
		x.client.Search.WithIndex(x.index),
		x.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search leads: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search leads", res.StatusCode, res.Body)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	leads := make([]models.Lead, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		lead := hit.Source
		if lead.ID == "" {
			lead.ID = hit.ID
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

func buildQuery(q Query, size int) map[string]interface{} {
	boolQuery := map[string]interface{}{
		"must": []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  q.Text,
					"fields": []string{"clientName^2", "leadName", "contactNumber", "email"},
					"type":   "best_fields",
				},
			},
		},
	}
	if q.BranchID != "" {
		boolQuery["filter"] = []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"branchId": q.BranchID}},
		}
	}
	return map[string]interface{}{
		"size":  size,
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  []interface{}{"_score", map[string]interface{}{"createdAt": "desc"}},
	}
}

func responseError(op string, status int, body io.Reader) error {
	raw, _ := io.ReadAll(io.LimitReader(body, 4096))
	return fmt.Errorf("failed to %s (status %d): %s", op, status, string(raw))
}
