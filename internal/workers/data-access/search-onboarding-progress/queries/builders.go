// internal/workers/data-access/search-onboarding-progress/queries/builders.go
package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"onboarding-workers/internal/onboarding"
)

var (
	ErrMissingIndex     = errors.New("index name is required")
	ErrInvalidRange     = errors.New("invalid percentage range")
	ErrUnknownSortField = errors.New("unknown sort field")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Filters narrows the HR dashboard view. Zero values do not filter.
type Filters struct {
	Keywords          string `json:"keywords,omitempty"`
	EmploymentType    string `json:"employmentType,omitempty"`
	PositionType      string `json:"positionType,omitempty"`
	ApplicationStatus string `json:"applicationStatus,omitempty"`
	MinPercentage     *int   `json:"minPercentage,omitempty"`
	MaxPercentage     *int   `json:"maxPercentage,omitempty"`
	PendingReviewOnly bool   `json:"pendingReviewOnly,omitempty"`
	NeedsRevisionOnly bool   `json:"needsRevisionOnly,omitempty"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

// ProgressQuery is one dashboard search.
type ProgressQuery struct {
	Index      string
	Filters    Filters
	SortBy     string
	Pagination Pagination
}

var sortFields = map[string][]map[string]interface{}{
	"":              {{"pendingReview": "desc"}, {"indexedAt": "desc"}},
	"pendingReview": {{"pendingReview": "desc"}, {"indexedAt": "desc"}},
	"percentage":    {{"percentage": "asc"}, {"indexedAt": "desc"}},
	"indexedAt":     {{"indexedAt": "desc"}},
	"createdAt":     {{"createdAt": "asc"}},
}

// BuildQuery builds the search request for a dashboard query.
func BuildQuery(q ProgressQuery) (*esapi.SearchRequest, error) {
	if q.Index == "" {
		return nil, ErrMissingIndex
	}

	sort, ok := sortFields[q.SortBy]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSortField, q.SortBy)
	}

	query, err := buildBoolQuery(q.Filters)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]interface{}{
		"query":            query,
		"sort":             sort,
		"track_total_hits": true,
	})
	if err != nil {
		return nil, err
	}

	from, size := normalizePagination(q.Pagination)
	return &esapi.SearchRequest{
		Index: []string{q.Index},
		Body:  bytes.NewReader(body),
		From:  &from,
		Size:  &size,
	}, nil
}

func buildBoolQuery(f Filters) (map[string]interface{}, error) {
	must := []interface{}{}
	filter := []interface{}{}

	if kw := strings.TrimSpace(f.Keywords); kw != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  kw,
				"fields": []string{"employeeName^2", "applicationId"},
				"type":   "best_fields",
			},
		})
	}

	if et := onboarding.NormalizeEmploymentType(f.EmploymentType); et != "" {
		filter = append(filter, term("employmentType", et))
	}
	if pt := strings.TrimSpace(f.PositionType); pt != "" {
		filter = append(filter, term("positionType", strings.ToUpper(pt)))
	}
	if st := strings.TrimSpace(f.ApplicationStatus); st != "" {
		filter = append(filter, term("applicationStatus", strings.ToLower(st)))
	}

	if f.MinPercentage != nil || f.MaxPercentage != nil {
		bounds := map[string]interface{}{}
		if f.MinPercentage != nil {
			if *f.MinPercentage < 0 || *f.MinPercentage > 100 {
				return nil, fmt.Errorf("%w: minPercentage %d", ErrInvalidRange, *f.MinPercentage)
			}
			bounds["gte"] = *f.MinPercentage
		}
		if f.MaxPercentage != nil {
			if *f.MaxPercentage < 0 || *f.MaxPercentage > 100 {
				return nil, fmt.Errorf("%w: maxPercentage %d", ErrInvalidRange, *f.MaxPercentage)
			}
			bounds["lte"] = *f.MaxPercentage
		}
		if f.MinPercentage != nil && f.MaxPercentage != nil && *f.MinPercentage > *f.MaxPercentage {
			return nil, fmt.Errorf("%w: %d > %d", ErrInvalidRange, *f.MinPercentage, *f.MaxPercentage)
		}
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"percentage": bounds},
		})
	}

	if f.PendingReviewOnly {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"pendingReview": map[string]interface{}{"gt": 0}},
		})
	}
	if f.NeedsRevisionOnly {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"needsRevision": map[string]interface{}{"gt": 0}},
		})
	}

	if len(must) == 0 {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery := map[string]interface{}{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	return map[string]interface{}{"bool": boolQuery}, nil
}

func term(field, value string) map[string]interface{} {
	return map[string]interface{}{
		"term": map[string]interface{}{field: value},
	}
}

func normalizePagination(p Pagination) (int, int) {
	from := p.From
	if from < 0 {
		from = 0
	}
	size := p.Size
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return from, size
}
