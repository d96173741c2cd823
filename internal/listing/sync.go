// File: internal/listing/sync.go
package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	es "estate_backend/internal/platform/elasticsearch"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// SyncReport summarizes a full reindex.
type SyncReport struct {
	Synced  int
	Failed  int
	Batches int
}

// SyncToIndex copies every stored listing into the search index in batches
// using the bulk API. It is the repair path when the index drifted from the
// primary store.
func SyncToIndex(ctx context.Context, repo Repository, client *es.ESClientWrapper, logger *zap.Logger, batchSize int, refresh string) (SyncReport, error) {
	var report SyncReport
	if client == nil {
		return report, fmt.Errorf("elasticsearch client is not configured")
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	log := logger.Named("listing_sync")

	for offset := 0; ; {
		listings, err := repo.FindBatch(ctx, offset, batchSize)
		if err != nil {
			return report, fmt.Errorf("fetch batch %d: %w", report.Batches+1, err)
		}
		if len(listings) == 0 {
			break
		}
		report.Batches++
		offset += len(listings)

		body, encoded, skipped := BulkIndexBody(listings)
		report.Failed += skipped
		if encoded == 0 {
			continue
		}

		synced, failed, err := sendBulk(ctx, client, body, refresh)
		if err != nil {
			log.Error("Bulk request failed", zap.Int("batch", report.Batches), zap.Error(err))
			report.Failed += encoded
			continue
		}
		report.Synced += synced
		report.Failed += failed
		log.Info("Batch processed", zap.Int("batch", report.Batches), zap.Int("synced", synced), zap.Int("failed", failed))
	}

	log.Info("Listing synchronization finished", zap.Int("synced", report.Synced), zap.Int("failed", report.Failed))
	if report.Failed > 0 {
		return report, fmt.Errorf("%d listings failed to sync", report.Failed)
	}
	return report, nil
}

// BulkIndexBody renders listings as an NDJSON bulk index payload. It returns
// the number of documents written and the number that could not be encoded.
func BulkIndexBody(listings []Listing) (string, int, int) {
	var b strings.Builder
	encoded, skipped := 0, 0
	for i := range listings {
		doc, err := ToSearchDocument(&listings[i])
		if err != nil {
			skipped++
			continue
		}
		fmt.Fprintf(&b, `{"index":{"_index":%q,"_id":%q}}`+"\n", es.ListingsIndexName, listings[i].ID.String())
		b.Write(doc)
		b.WriteByte('\n')
		encoded++
	}
	return b.String(), encoded, skipped
}

func sendBulk(ctx context.Context, client *es.ESClientWrapper, body, refresh string) (int, int, error) {
	res, err := esapi.BulkRequest{
		Body:    strings.NewReader(body),
		Refresh: refresh,
	}.Do(ctx, client.Client)
	if err != nil {
		return 0, 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, 0, fmt.Errorf("bulk request: %s", readError(res.Body, res.Status()))
	}
	return countBulkItems(res.Body)
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string                 `json:"_id"`
		Status int                    `json:"status"`
		Error  map[string]interface{} `json:"error,omitempty"`
	} `json:"items"`
}

// countBulkItems tallies per-item outcomes; a bulk call can succeed overall
// while individual documents fail.
func countBulkItems(r io.Reader) (int, int, error) {
	var resp bulkResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return 0, 0, fmt.Errorf("decode bulk response: %w", err)
	}
	synced, failed := 0, 0
	for _, item := range resp.Items {
		for _, result := range item {
			if result.Error != nil {
				failed++
			} else {
				synced++
			}
		}
	}
	return synced, failed, nil
}
