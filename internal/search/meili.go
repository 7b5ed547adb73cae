package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"

	"docpress/internal/model"
)

// meiliDoc is the indexed shape of a public document.
type meiliDoc struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	IsPublic  bool   `json:"is_public"`
	CreatedAt int64  `json:"created_at"`
}

// Meili implements Index. Health is polled in the background and the index is
// reconfigured after the server comes back.
type Meili struct {
	client  meili.ServiceManager
	uid     string
	log     *slog.Logger
	healthy atomic.Bool
	done    chan struct{}
}

func NewMeili(url, apiKey, uid string, log *slog.Logger) *Meili {
	m := &Meili{
		client: meili.New(url, meili.WithAPIKey(apiKey)),
		uid:    uid,
		log:    log,
		done:   make(chan struct{}),
	}

	if _, err := m.client.Health(); err != nil {
		log.Warn("meilisearch unavailable", "url", url, "error", err)
	} else {
		m.healthy.Store(true)
		m.configure()
	}

	go m.healthLoop(10 * time.Second)
	return m
}

func (m *Meili) configure() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{Uid: m.uid, PrimaryKey: "id"}); err != nil {
		m.log.Debug("meilisearch create index (may already exist)", "index", m.uid, "error", err)
	}
	index := m.client.Index(m.uid)
	filterable := []interface{}{"is_public", "category"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		m.log.Warn("meilisearch filterable attributes", "index", m.uid, "error", err)
	}
	searchable := []string{"title", "slug"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		m.log.Warn("meilisearch searchable attributes", "index", m.uid, "error", err)
	}
}

func (m *Meili) healthLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			was := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !was {
				m.log.Info("meilisearch recovered, reconfiguring index", "index", m.uid)
				m.configure()
			}
		}
	}
}

func (m *Meili) Close() { close(m.done) }

func (m *Meili) Healthy() bool { return m.healthy.Load() }

func (m *Meili) SearchPublic(_ context.Context, q string) ([]model.DocumentSummary, error) {
	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{
		Queries: []*meili.SearchRequest{{
			IndexUID: m.uid,
			Query:    q,
			Limit:    200,
			Filter:   "is_public = true",
		}},
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch search: %w", err)
	}

	items := make([]model.DocumentSummary, 0)
	for _, sr := range resp.Results {
		for _, hit := range sr.Hits {
			items = append(items, hitToSummary(hit))
		}
	}
	return items, nil
}

func (m *Meili) Upsert(_ context.Context, doc model.DocumentSummary) error {
	_, err := m.client.Index(m.uid).AddDocuments([]meiliDoc{{
		ID:        doc.ID,
		Slug:      doc.Slug,
		Title:     doc.Title,
		Category:  string(doc.Category),
		IsPublic:  doc.IsPublic,
		CreatedAt: doc.CreatedAt.Unix(),
	}}, nil)
	return err
}

func (m *Meili) Delete(_ context.Context, id string) error {
	_, err := m.client.Index(m.uid).DeleteDocument(id, nil)
	return err
}

func hitToSummary(hit meili.Hit) model.DocumentSummary {
	var created int64
	if raw, ok := hit["created_at"]; ok {
		_ = json.Unmarshal(raw, &created)
	}
	var public bool
	if raw, ok := hit["is_public"]; ok {
		_ = json.Unmarshal(raw, &public)
	}
	return model.DocumentSummary{
		ID:        decodeString(hit, "id"),
		Slug:      decodeString(hit, "slug"),
		Title:     decodeString(hit, "title"),
		Category:  model.Category(decodeString(hit, "category")),
		IsPublic:  public,
		CreatedAt: time.Unix(created, 0).UTC(),
	}
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}
