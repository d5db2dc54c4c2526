// Package search keeps an elasticsearch index of the catalog in sync with
// the store and serves fuzzy product search. When ES is not configured the
// catalog search endpoint falls back to an in-memory scan instead.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/zerone-labs/storefront/internal/models"
	"github.com/zerone-labs/storefront/internal/store"
)

type Index struct {
	es    *elasticsearch.Client
	index string
	log   *slog.Logger
}

func NewIndex(url, user, password, index string, log *slog.Logger) (*Index, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("search: create client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("search: connect: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search: elasticsearch error: %s: %s", res.Status(), body)
	}

	return &Index{es: client, index: index, log: log}, nil
}

// Publish mirrors product mutations into the index. Order events are not
// indexed; only the catalog is searchable.
func (ix *Index) Publish(ctx context.Context, ev store.Event) {
	switch ev.Type {
	case store.EventProductCreated, store.EventProductUpdated:
		if ev.Product != nil {
			ix.upsert(ctx, *ev.Product)
		}
	case store.EventProductDeleted:
		ix.remove(ctx, ev.ID)
	}
}

func (ix *Index) upsert(ctx context.Context, p models.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		ix.log.Error("index marshal failed", "product_id", p.ID, "error", err)
		return
	}
	res, err := ix.es.Index(
		ix.index,
		bytes.NewReader(data),
		ix.es.Index.WithDocumentID(p.ID),
		ix.es.Index.WithContext(ctx),
	)
	if err != nil {
		ix.log.Error("index upsert failed", "product_id", p.ID, "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		ix.log.Error("index upsert rejected", "product_id", p.ID, "status", res.Status())
	}
}

func (ix *Index) remove(ctx context.Context, id string) {
	res, err := ix.es.Delete(ix.index, id, ix.es.Delete.WithContext(ctx))
	if err != nil {
		ix.log.Error("index delete failed", "product_id", id, "error", err)
		return
	}
	res.Body.Close()
}

// Search runs a fuzzy multi_match over name and description.
func (ix *Index) Search(ctx context.Context, query string, size int) ([]models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := ix.es.Search(
		ix.es.Search.WithContext(ctx),
		ix.es.Search.WithIndex(ix.index),
		ix.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: elasticsearch error: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}

	products := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		products[i] = hit.Source
	}
	return products, nil
}

// Scan is the fallback used when no index is configured: a case-blind
// substring match over name and description.
func Scan(products []models.Product, query string) []models.Product {
	q := strings.ToLower(query)
	var out []models.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out
}
