package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/mkrasilnikov/minusflow/internal/model"
)

// JSONLoader reads a query corpus from a JSON file: either a bare array of
// records or an object with a "queries" array. It implements
// service.QuerySource.
type JSONLoader struct {
	logger *slog.Logger
	path   string
}

// NewJSONLoader creates a loader for the corpus at path.
func NewJSONLoader(path string, logger *slog.Logger) *JSONLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONLoader{path: path, logger: logger}
}

// Queries loads and parses the corpus.
func (l *JSONLoader) Queries(_ context.Context) ([]model.QueryMetricRecord, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	records, err := ParseJSONCorpus(data)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", l.path, err)
	}

	l.logger.Info("loaded query corpus", "path", l.path, "records", len(records))
	return records, nil
}

// ParseJSONCorpus accepts both a bare array and a {"queries": [...]}
// wrapper, so API payloads and saved files share one format.
func ParseJSONCorpus(data []byte) ([]model.QueryMetricRecord, error) {
	var records []model.QueryMetricRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var wrapped struct {
		Queries []model.QueryMetricRecord `json:"queries"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse JSON corpus: %w", err)
	}
	return wrapped.Queries, nil
}
