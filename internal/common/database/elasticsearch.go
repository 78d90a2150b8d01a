// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"onboarding-workers/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchClient wraps the Elasticsearch client
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

// NewElasticsearch creates a new Elasticsearch client
func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.GetAddresses(),
	}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &ElasticsearchClient{Client: es}, nil
}

// Ping tests the Elasticsearch connection
func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}

// ProgressIndexMapping is the mapping of the onboarding progress index.
const ProgressIndexMapping = `{
  "mappings": {
    "properties": {
      "applicationId":      {"type": "keyword"},
      "employeeName":       {"type": "text"},
      "employmentType":     {"type": "keyword"},
      "positionType":       {"type": "keyword"},
      "applicationStatus":  {"type": "keyword"},
      "completedCount":     {"type": "integer"},
      "totalCount":         {"type": "integer"},
      "percentage":         {"type": "integer"},
      "weightedPercentage": {"type": "integer"},
      "pendingReview":      {"type": "integer"},
      "needsRevision":      {"type": "integer"},
      "createdAt":          {"type": "date", "ignore_malformed": true},
      "indexedAt":          {"type": "date"}
    }
  }
}`

// EnsureIndex creates index with mapping unless it already exists.
func (c *ElasticsearchClient) EnsureIndex(ctx context.Context, index, mapping string) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, c.Client)
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{
		Index: index,
		Body:  strings.NewReader(mapping),
	}.Do(ctx, c.Client)
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()

	if !res.IsError() {
		return nil
	}
	var failure struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	_ = json.NewDecoder(res.Body).Decode(&failure)
	// a concurrent creator won the race
	if failure.Error.Type == "resource_already_exists_exception" {
		return nil
	}
	if failure.Error.Type != "" {
		return fmt.Errorf("create index %s: %s: %s: %s", index, res.Status(), failure.Error.Type, failure.Error.Reason)
	}
	return fmt.Errorf("create index %s: %s", index, res.Status())
}
