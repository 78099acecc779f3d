package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/lostudea/lostudea-api/internal/domain/entity"
)

// ReportIndex mirrors lost and found reports into Elasticsearch so the
// search page can query free text over descriptions, types, and locations.
// Indexing is best-effort: a nil index or an ES failure never fails the
// write that triggered it.
type ReportIndex struct {
	ES         *elasticsearch.Client
	LostIndex  string
	FoundIndex string
	Logger     *logrus.Logger
}

func NewReportIndex(es *elasticsearch.Client, lostIndex, foundIndex string, logger *logrus.Logger) *ReportIndex {
	return &ReportIndex{ES: es, LostIndex: lostIndex, FoundIndex: foundIndex, Logger: logger}
}

func (ix *ReportIndex) enabled() bool {
	return ix != nil && ix.ES != nil
}

func (ix *ReportIndex) IndexLost(ctx context.Context, item *entity.LostItem) error {
	if !ix.enabled() || ix.LostIndex == "" {
		return nil
	}
	locations := make([]string, len(item.Locations))
	for i, l := range item.Locations {
		locations[i] = string(l)
	}
	doc := map[string]any{
		"id":          item.ID,
		"type":        item.Type.Value,
		"type_label":  item.Type.Label,
		"locations":   locations,
		"description": item.Description,
		"status":      string(item.Status),
		"lost_date":   item.LostDate.Format(time.RFC3339Nano),
	}
	return ix.index(ctx, ix.LostIndex, item.ID, doc)
}

func (ix *ReportIndex) IndexFound(ctx context.Context, item *entity.FoundItem) error {
	if !ix.enabled() || ix.FoundIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         item.ID,
		"type":       item.Type.Value,
		"type_label": item.Type.Label,
		"locations":  []string{string(item.Location)},
		"status":     string(item.Status),
		"found_date": item.FoundDate.Format(time.RFC3339Nano),
	}
	return ix.index(ctx, ix.FoundIndex, item.ID, doc)
}

func (ix *ReportIndex) RemoveLost(ctx context.Context, id string) error {
	return ix.remove(ctx, ix.LostIndex, id)
}

func (ix *ReportIndex) RemoveFound(ctx context.Context, id string) error {
	return ix.remove(ctx, ix.FoundIndex, id)
}

func (ix *ReportIndex) index(ctx context.Context, index, id string, doc map[string]any) error {
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: index, DocumentID: id, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, ix.ES)
	if err != nil {
		if ix.Logger != nil {
			ix.Logger.WithError(err).WithField("doc_id", id).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && ix.Logger != nil {
		ix.Logger.WithField("status", res.Status()).WithField("doc_id", id).Warn("es index response error")
	}
	return nil
}

func (ix *ReportIndex) remove(ctx context.Context, index, id string) error {
	if !ix.enabled() || index == "" {
		return nil
	}
	req := esapi.DeleteRequest{Index: index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, ix.ES)
	if err != nil {
		if ix.Logger != nil {
			ix.Logger.WithError(err).WithField("doc_id", id).Warn("es delete failed")
		}
		return err
	}
	_ = res.Body.Close()
	return nil
}

// Search runs a multi_match over both report indexes.
func (ix *ReportIndex) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if !ix.enabled() {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"description^2", "type_label", "locations"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := ix.ES.Search(
		ix.ES.Search.WithContext(c),
		ix.ES.Search.WithIndex(ix.LostIndex, ix.FoundIndex),
		ix.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				Index  string         `json:"_index"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		src := h.Source
		src["collection"] = h.Index
		out = append(out, src)
	}
	return out, nil
}
