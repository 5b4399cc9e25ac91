// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"fmt"
	"net/http"

	"loandesk/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchClient backs lead search. It is only built when search is
// enabled.
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

// searchRetryStatuses are the responses the transport retries on its own.
var searchRetryStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("elasticsearch: no addresses configured")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: searchRetryStatuses,
		MaxRetries:    3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &ElasticsearchClient{Client: es}, nil
}

func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}
	return nil
}
