// Package search keeps candidates in an Elasticsearch index for free-text lookup.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/interview-tracker/internal/domain/entity"
)

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":               {"type": "keyword"},
      "interviewer":      {"type": "keyword"},
      "fullName":         {"type": "text"},
      "email":            {"type": "text"},
      "position":         {"type": "text"},
      "interviewField":   {"type": "text"},
      "interviewRound":   {"type": "keyword"},
      "status":           {"type": "keyword"},
      "interviewDate":    {"type": "date"},
      "interviewerName":  {"type": "text"},
      "interviewerEmail": {"type": "keyword"}
    }
  }
}`

type CandidateIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewCandidateIndex(es *elasticsearch.Client, index string) *CandidateIndex {
	return &CandidateIndex{es: es, index: index}
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *CandidateIndex) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{x.index}}.Do(ctx, x.es)
	if err != nil {
		return fmt.Errorf("search: index exists: %w", err)
	}
	drain(res)
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{Index: x.index, Body: strings.NewReader(indexMapping)}.Do(ctx, x.es)
	if err != nil {
		return fmt.Errorf("search: create index: %w", err)
	}
	defer drain(res)
	if res.IsError() && res.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("search: create index: %s", res.Status())
	}
	return nil
}

func (x *CandidateIndex) Index(ctx context.Context, c *entity.CandidateView) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: c.ID, Body: bytes.NewReader(b), Refresh: "false"}
	res, err := req.Do(ctx, x.es)
	if err != nil {
		return fmt.Errorf("search: index %s: %w", c.ID, err)
	}
	defer drain(res)
	if res.IsError() {
		return fmt.Errorf("search: index %s: %s", c.ID, res.Status())
	}
	return nil
}

func (x *CandidateIndex) Delete(ctx context.Context, id string) error {
	res, err := esapi.DeleteRequest{Index: x.index, DocumentID: id}.Do(ctx, x.es)
	if err != nil {
		return fmt.Errorf("search: delete %s: %w", id, err)
	}
	defer drain(res)
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("search: delete %s: %s", id, res.Status())
	}
	return nil
}

// Search runs a multi_match restricted to one interviewer's documents.
func (x *CandidateIndex) Search(ctx context.Context, ownerID, q string, size int) ([]entity.CandidateView, error) {
	body, err := json.Marshal(searchQuery(ownerID, q, size))
	if err != nil {
		return nil, err
	}

	res, err := x.es.Search(
		x.es.Search.WithContext(ctx),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: query: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.IsError() {
		return nil, fmt.Errorf("search: query: %s", res.Status())
	}
	return decodeHits(res.Body)
}

func searchQuery(ownerID, q string, size int) map[string]any {
	return map[string]any{
		"size": size,
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     q,
						"fields":    []string{"fullName^3", "position^2", "email", "interviewField"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"interviewer": ownerID},
				},
			},
		},
	}
}

func decodeHits(r io.Reader) ([]entity.CandidateView, error) {
	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string               `json:"_id"`
				Source entity.CandidateView `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("search: decode: %w", err)
	}

	out := make([]entity.CandidateView, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		v := h.Source
		if v.ID == "" {
			v.ID = h.ID
		}
		out = append(out, v)
	}
	return out, nil
}

func drain(res *esapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}
