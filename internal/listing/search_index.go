// File: internal/listing/search_index.go
package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"estate_backend/internal/config"
	es "estate_backend/internal/platform/elasticsearch"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Indexer mirrors listing writes into a secondary search index.
type Indexer interface {
	Index(ctx context.Context, l *Listing) error
	Remove(ctx context.Context, id uuid.UUID) error
}

// Searcher answers normalized search queries.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Listing, error)
}

type noopIndexer struct{}

func (noopIndexer) Index(context.Context, *Listing) error  { return nil }
func (noopIndexer) Remove(context.Context, uuid.UUID) error { return nil }

// NewIndexer returns an Elasticsearch indexer, or a no-op one when no client
// is configured.
func NewIndexer(client *es.ESClientWrapper, logger *zap.Logger) Indexer {
	if client == nil {
		return noopIndexer{}
	}
	return &esIndexer{client: client, logger: logger.Named("listing_indexer")}
}

// NewSearcher picks the search backend. The primary store is used unless
// SEARCH_BACKEND=elasticsearch and a client is available.
func NewSearcher(cfg *config.Config, repo Repository, client *es.ESClientWrapper, logger *zap.Logger) Searcher {
	if cfg.SearchBackend == config.SearchBackendElasticsearch && client != nil {
		return &esSearcher{client: client, logger: logger.Named("listing_searcher")}
	}
	return repo
}

// esDoc is the indexed shape of a Listing. "_id" is a reserved field in
// Elasticsearch so the id is stored as "id".
type esDoc struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Address       string    `json:"address"`
	RegularPrice  float64   `json:"regularPrice"`
	DiscountPrice float64   `json:"discountPrice"`
	Bathrooms     int       `json:"bathrooms"`
	Bedrooms      int       `json:"bedrooms"`
	Furnished     bool      `json:"furnished"`
	Parking       bool      `json:"parking"`
	Type          string    `json:"type"`
	Offer         bool      `json:"offer"`
	ImageURLs     []string  `json:"imageUrls"`
	UserRef       string    `json:"userRef"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ToSearchDocument converts a listing to its Elasticsearch document.
func ToSearchDocument(l *Listing) ([]byte, error) {
	if l == nil {
		return nil, errors.New("listing cannot be nil")
	}
	doc := esDoc{
		ID:            l.ID.String(),
		Name:          l.Name,
		Description:   l.Description,
		Address:       l.Address,
		RegularPrice:  l.RegularPrice,
		DiscountPrice: l.DiscountPrice,
		Bathrooms:     l.Bathrooms,
		Bedrooms:      l.Bedrooms,
		Furnished:     l.Furnished,
		Parking:       l.Parking,
		Type:          string(l.Type),
		Offer:         l.Offer,
		ImageURLs:     l.ImageURLs,
		UserRef:       l.UserRef.String(),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("error marshalling listing to JSON for ES: %w", err)
	}
	return b, nil
}

func (d esDoc) toListing() (Listing, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Listing{}, fmt.Errorf("indexed listing has bad id %q: %w", d.ID, err)
	}
	owner, err := uuid.Parse(d.UserRef)
	if err != nil {
		return Listing{}, fmt.Errorf("indexed listing %s has bad userRef: %w", d.ID, err)
	}
	l := Listing{
		Name:          d.Name,
		Description:   d.Description,
		Address:       d.Address,
		RegularPrice:  d.RegularPrice,
		DiscountPrice: d.DiscountPrice,
		Bathrooms:     d.Bathrooms,
		Bedrooms:      d.Bedrooms,
		Furnished:     d.Furnished,
		Parking:       d.Parking,
		Type:          ListingType(d.Type),
		Offer:         d.Offer,
		ImageURLs:     d.ImageURLs,
		UserRef:       owner,
	}
	l.ID = id
	l.CreatedAt = d.CreatedAt
	l.UpdatedAt = d.UpdatedAt
	return l, nil
}

type esIndexer struct {
	client *es.ESClientWrapper
	logger *zap.Logger
}

func (i *esIndexer) Index(ctx context.Context, l *Listing) error {
	body, err := ToSearchDocument(l)
	if err != nil {
		return err
	}
	res, err := esapi.IndexRequest{
		Index:      es.ListingsIndexName,
		DocumentID: l.ID.String(),
		Body:       bytes.NewReader(body),
	}.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("error indexing listing %s: %w", l.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("error indexing listing %s: %s", l.ID, readError(res.Body, res.Status()))
	}
	i.logger.Debug("Listing indexed", zap.String("listing_id", l.ID.String()))
	return nil
}

func (i *esIndexer) Remove(ctx context.Context, id uuid.UUID) error {
	res, err := esapi.DeleteRequest{
		Index:      es.ListingsIndexName,
		DocumentID: id.String(),
	}.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("error removing listing %s from index: %w", id, err)
	}
	defer res.Body.Close()
	// A document that was never indexed is already gone.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("error removing listing %s from index: %s", id, readError(res.Body, res.Status()))
	}
	return nil
}

type esSearcher struct {
	client *es.ESClientWrapper
	logger *zap.Logger
}

func (s *esSearcher) Search(ctx context.Context, q Query) ([]Listing, error) {
	body, err := json.Marshal(SearchRequestBody(q))
	if err != nil {
		return nil, fmt.Errorf("error encoding search body: %w", err)
	}
	res, err := esapi.SearchRequest{
		Index: []string{es.ListingsIndexName},
		Body:  bytes.NewReader(body),
	}.Do(ctx, s.client.Client)
	if err != nil {
		return nil, fmt.Errorf("error searching listings: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("error searching listings: %s", readError(res.Body, res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source esDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("error decoding search response: %w", err)
	}

	listings := make([]Listing, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		l, err := h.Source.toListing()
		if err != nil {
			s.logger.Warn("Skipping malformed search hit", zap.Error(err))
			continue
		}
		listings = append(listings, l)
	}
	return listings, nil
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// SearchRequestBody builds the Elasticsearch query for q. Filters are exact
// matches in filter context; the name match is a case-insensitive wildcard on
// the keyword subfield so it behaves like a substring match.
func SearchRequestBody(q Query) map[string]interface{} {
	filters := []interface{}{}
	if q.SearchTerm != "" {
		filters = append(filters, map[string]interface{}{
			"wildcard": map[string]interface{}{
				"name.keyword": map[string]interface{}{
					"value":            "*" + wildcardEscaper.Replace(q.SearchTerm) + "*",
					"case_insensitive": true,
				},
			},
		})
	}
	for field, f := range map[string]BoolFilter{"offer": q.Offer, "furnished": q.Furnished, "parking": q.Parking} {
		if v, ok := f.Only(); ok {
			filters = append(filters, map[string]interface{}{"term": map[string]interface{}{field: v}})
		}
	}
	if t, ok := q.OnlyType(); ok {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"type": string(t)}})
	}

	order := "asc"
	if q.Sort.Descending {
		order = "desc"
	}
	sortField := q.Sort.Field
	if _, ok := sortable[sortField]; !ok {
		sortField = DefaultSort
	}
	if sortField == "name" {
		sortField = "name.keyword"
	}

	return map[string]interface{}{
		"from": q.Offset,
		"size": q.Limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		},
		"sort": []interface{}{
			map[string]interface{}{sortField: map[string]interface{}{"order": order}},
			map[string]interface{}{"id": map[string]interface{}{"order": order}},
		},
	}
}

func readError(body io.Reader, status string) string {
	var e map[string]interface{}
	if err := json.NewDecoder(body).Decode(&e); err != nil {
		return status
	}
	if reason, ok := e["error"]; ok {
		return fmt.Sprintf("%s: %v", status, reason)
	}
	return status
}
