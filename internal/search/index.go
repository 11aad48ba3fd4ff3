package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/service"
)

const (
	// maxResultWindow is Elasticsearch's default index.max_result_window.
	maxResultWindow = 10000
	syncBatchSize   = 500
	mirrorTimeout   = 5 * time.Second
)

// Index wraps a primary product store. Writes go to the store first and are
// then mirrored into Elasticsearch. Term queries are answered by the index
// while it is in sync; everything else, and every query after a failed
// mirror until the next Sync, is answered by the store.
type Index struct {
	Store service.ProductStore
	es    *elasticsearch.Client
	name  string

	// failures counts failed index writes; synced is the failure count
	// observed when the last successful Sync started.
	failures atomic.Uint64
	synced   atomic.Uint64
}

var _ service.ProductStore = (*Index)(nil)

func NewIndex(store service.ProductStore, client *elasticsearch.Client, name string) *Index {
	return &Index{Store: store, es: client, name: name}
}

// EnsureIndex creates the index with its mapping when it does not exist and
// then loads every stored product into it.
func (ix *Index) EnsureIndex(ctx context.Context) error {
	res, err := ix.es.Indices.Exists([]string{ix.name}, ix.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: index exists: %w", err)
	}
	res.Body.Close()

	if res.StatusCode != 200 {
		body, err := encode(indexMapping)
		if err != nil {
			return err
		}
		res, err = ix.es.Indices.Create(ix.name,
			ix.es.Indices.Create.WithContext(ctx),
			ix.es.Indices.Create.WithBody(body),
		)
		if err != nil {
			return fmt.Errorf("search: create index: %w", err)
		}
		defer res.Body.Close()
		if res.IsError() {
			return responseError("create index", res)
		}
	}

	return ix.Sync(ctx)
}

// Sync re-indexes all products, active or not, from the store and marks the
// index as in sync on success.
func (ix *Index) Sync(ctx context.Context) error {
	seen := ix.failures.Load()
	page := models.PageRequest{Limit: syncBatchSize, SortBy: models.SortCreatedAt}
	for {
		batch, err := ix.Store.Find(ctx, models.ProductCriteria{}, page)
		if err != nil {
			return fmt.Errorf("search: load products: %w", err)
		}
		if len(batch) > 0 {
			if err := ix.bulkIndex(ctx, batch); err != nil {
				ix.failures.Add(1)
				return err
			}
		}
		if len(batch) < page.Limit {
			break
		}
		page.Offset += page.Limit
	}

	ix.synced.Store(seen)
	return nil
}

// Stale reports whether an index write failed since the last Sync started.
func (ix *Index) Stale() bool {
	return ix.failures.Load() != ix.synced.Load()
}

// Run re-syncs a stale index every interval until ctx is done.
func (ix *Index) Run(ctx context.Context, interval time.Duration) {
	l := logging.FromContext(ctx).With("component", "search")
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !ix.Stale() {
				continue
			}
			if err := ix.Sync(ctx); err != nil {
				l.Error("es_sync_error", "error", err)
				continue
			}
			l.Info("es_sync_success")
		}
	}
}

func (ix *Index) Create(ctx context.Context, p *models.Product) error {
	if err := ix.Store.Create(ctx, p); err != nil {
		return err
	}
	ix.mirror(ctx, p)
	return nil
}

func (ix *Index) Update(ctx context.Context, id string, patch models.ProductPatch, now time.Time) (*models.Product, error) {
	p, err := ix.Store.Update(ctx, id, patch, now)
	if err != nil {
		return nil, err
	}
	ix.mirror(ctx, p)
	return p, nil
}

func (ix *Index) Count(ctx context.Context, c models.ProductCriteria) (int64, error) {
	if c.Term == "" || ix.Stale() {
		return ix.Store.Count(ctx, c)
	}

	body, err := encode(map[string]any{"query": buildQuery(c)})
	if err != nil {
		return 0, err
	}
	res, err := ix.es.Count(
		ix.es.Count.WithContext(ctx),
		ix.es.Count.WithIndex(ix.name),
		ix.es.Count.WithBody(body),
	)
	if err != nil {
		return 0, fmt.Errorf("search: count: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, responseError("count", res)
	}

	var r struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, fmt.Errorf("search: decode count: %w", err)
	}
	return r.Count, nil
}

// Find serves pages beyond the index's result window from the store, which
// has no such limit.
func (ix *Index) Find(ctx context.Context, c models.ProductCriteria, page models.PageRequest) ([]models.Product, error) {
	if c.Term == "" || ix.Stale() || page.Offset+page.Limit > maxResultWindow {
		return ix.Store.Find(ctx, c, page)
	}

	req, err := buildSearch(c, page)
	if err != nil {
		return nil, err
	}
	body, err := encode(req)
	if err != nil {
		return nil, err
	}
	res, err := ix.es.Search(
		ix.es.Search.WithContext(ctx),
		ix.es.Search.WithIndex(ix.name),
		ix.es.Search.WithBody(body),
	)
	if err != nil {
		return nil, fmt.Errorf("search: query: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("query", res)
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("search: decode hits: %w", err)
	}

	out := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		out[i] = hit.Source
	}
	return out, nil
}

// mirror indexes p after the store write has committed, so it must outlive
// the request. A failure marks the index stale; the write itself stands.
func (ix *Index) mirror(ctx context.Context, p *models.Product) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
	defer cancel()
	l := logging.FromContext(ctx).With("component", "search", "product_id", p.ID)

	if err := ix.indexDoc(ctx, p); err != nil {
		ix.failures.Add(1)
		l.Error("es_index_error", "error", err)
	}
}

func (ix *Index) indexDoc(ctx context.Context, p *models.Product) error {
	body, err := encode(p)
	if err != nil {
		return err
	}
	res, err := ix.es.Index(ix.name, body,
		ix.es.Index.WithContext(ctx),
		ix.es.Index.WithDocumentID(p.ID),
		ix.es.Index.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("search: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

func (ix *Index) bulkIndex(ctx context.Context, products []models.Product) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range products {
		action := map[string]any{"index": map[string]any{"_id": products[i].ID}}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("search: encode bulk action: %w", err)
		}
		if err := enc.Encode(&products[i]); err != nil {
			return fmt.Errorf("search: encode bulk doc: %w", err)
		}
	}

	res, err := ix.es.Bulk(&buf,
		ix.es.Bulk.WithContext(ctx),
		ix.es.Bulk.WithIndex(ix.name),
		ix.es.Bulk.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("search: bulk: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("bulk", res)
	}

	var r struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return fmt.Errorf("search: decode bulk: %w", err)
	}
	if r.Errors {
		return fmt.Errorf("search: bulk: some documents were rejected")
	}
	return nil
}

func encode(v any) (io.Reader, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("search: encode: %w", err)
	}
	return &buf, nil
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("search: %s: %s: %s", op, res.Status(), bytes.TrimSpace(body))
}
