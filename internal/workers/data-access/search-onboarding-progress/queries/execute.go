// internal/workers/data-access/search-onboarding-progress/queries/execute.go
package queries

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"onboarding-workers/internal/models"
)

type QueryResult struct {
	Documents []models.ProgressDocument
	TotalHits int64
	Took      int64
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source models.ProgressDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// NotFoundError is returned when the index does not exist yet.
type NotFoundError struct {
	Index string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("index %s not found", e.Index)
}

func Execute(ctx context.Context, esClient *elasticsearch.Client, q ProgressQuery) (*QueryResult, error) {
	req, err := BuildQuery(q)
	if err != nil {
		return nil, err
	}

	res, err := req.Do(ctx, esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, &NotFoundError{Index: q.Index}
	}
	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]models.ProgressDocument, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		docs = append(docs, hit.Source)
	}

	return &QueryResult{
		Documents: docs,
		TotalHits: r.Hits.Total.Value,
		Took:      r.Took,
	}, nil
}
