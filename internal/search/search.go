// Package search mirrors product names into Elasticsearch and resolves name queries there.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/Skotchmaster/storefront/internal/models"
)

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

type Index struct {
	ES   *elasticsearch.Client
	Name string
}

func NewClient(cfg Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return client, nil
}

func NewIndex(client *elasticsearch.Client, name string) *Index {
	return &Index{ES: client, Name: name}
}

type document struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// IndexProducts upserts one document per product, keyed by product id.
func (i *Index) IndexProducts(ctx context.Context, products []models.Product) error {
	for _, p := range products {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(document{ID: p.ID, Name: p.Name, Category: p.Category}); err != nil {
			return fmt.Errorf("encode product %d: %w", p.ID, err)
		}

		res, err := i.ES.Index(
			i.Name,
			&buf,
			i.ES.Index.WithContext(ctx),
			i.ES.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
			i.ES.Index.WithRefresh("true"),
		)
		if err != nil {
			return fmt.Errorf("index product %d: %w", p.ID, err)
		}
		if err := checkResponse(res.Body, res.IsError(), res.Status()); err != nil {
			return fmt.Errorf("index product %d: %w", p.ID, err)
		}
	}
	return nil
}

// MatchName returns ids of products whose name contains q, ignoring case.
func (i *Index) MatchName(ctx context.Context, q string) ([]uint, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(nameQuery(q)); err != nil {
		return nil, fmt.Errorf("search error: %w", err)
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Name),
		i.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search error: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search error: %s: %s", res.Status(), body)
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		ids = append(ids, hit.Source.ID)
	}
	return ids, nil
}

const maxHits = 1000

func nameQuery(q string) map[string]any {
	return map[string]any{
		"size":    maxHits,
		"_source": []string{"id"},
		"query": map[string]any{
			"wildcard": map[string]any{
				"name.keyword": map[string]any{
					"value":            "*" + escapeWildcard(q) + "*",
					"case_insensitive": true,
				},
			},
		},
	}
}

func escapeWildcard(s string) string {
	return strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`).Replace(s)
}

func checkResponse(body io.ReadCloser, isError bool, status string) error {
	defer body.Close()
	if isError {
		b, _ := io.ReadAll(body)
		return fmt.Errorf("elasticsearch: %s: %s", status, b)
	}
	_, _ = io.Copy(io.Discard, body)
	return nil
}
