package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const ListingsIndexName = "listings"

// ListingsMapping returns the JSON mapping of the listings index.
// Field names match the listing JSON representation, except the listing id
// lives in "id" because "_id" is reserved.
func ListingsMapping() (string, error) {
	keyword := map[string]interface{}{"type": "keyword"}
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id": keyword,
				"name": map[string]interface{}{
					"type":   "text",
					"fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}},
				},
				"description":   map[string]interface{}{"type": "text"},
				"address":       map[string]interface{}{"type": "text"},
				"regularPrice":  map[string]interface{}{"type": "double"},
				"discountPrice": map[string]interface{}{"type": "double"},
				"bedrooms":      map[string]interface{}{"type": "integer"},
				"bathrooms":     map[string]interface{}{"type": "integer"},
				"furnished":     map[string]interface{}{"type": "boolean"},
				"parking":       map[string]interface{}{"type": "boolean"},
				"offer":         map[string]interface{}{"type": "boolean"},
				"type":          keyword,
				"imageUrls":     map[string]interface{}{"type": "keyword", "index": false},
				"userRef":       keyword,
				"createdAt":     map[string]interface{}{"type": "date"},
				"updatedAt":     map[string]interface{}{"type": "date"},
			},
		},
	}
	b, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling listings mapping to JSON: %w", err)
	}
	return string(b), nil
}

// CreateListingsIndexIfNotExists creates the listings index with its mapping
// if it does not already exist.
func CreateListingsIndexIfNotExists(ctx context.Context, client *ESClientWrapper, logger *zap.Logger) error {
	log := logger.Named("elasticsearch_index_setup")

	res, err := esapi.IndicesExistsRequest{Index: []string{ListingsIndexName}}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error checking if listings index exists: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Debug("Listings index already exists", zap.String("index_name", ListingsIndexName))
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("error checking if listings index exists: status %s", res.Status())
	}

	mappingJSON, err := ListingsMapping()
	if err != nil {
		return err
	}

	createRes, err := esapi.IndicesCreateRequest{
		Index: ListingsIndexName,
		Body:  strings.NewReader(mappingJSON),
	}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error creating listings index %s: %w", ListingsIndexName, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		var errorBody map[string]interface{}
		_ = json.NewDecoder(createRes.Body).Decode(&errorBody)
		log.Error("Failed to create listings index",
			zap.String("status", createRes.Status()),
			zap.Any("error_details", errorBody),
		)
		return fmt.Errorf("failed to create listings index %s: status %s", ListingsIndexName, createRes.Status())
	}

	log.Info("Listings index created", zap.String("index_name", ListingsIndexName))
	return nil
}
