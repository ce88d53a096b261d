package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mkrasilnikov/minusflow/internal/engine"
	"github.com/mkrasilnikov/minusflow/internal/heuristic"
	"github.com/mkrasilnikov/minusflow/internal/llm"
	"github.com/mkrasilnikov/minusflow/internal/model"
	"github.com/mkrasilnikov/minusflow/internal/service"
	"github.com/mkrasilnikov/minusflow/internal/source"
	"github.com/mkrasilnikov/minusflow/internal/storage"
)

// loggerFromViper returns the process logger configured in initConfig.
func loggerFromViper() *slog.Logger {
	return slog.Default()
}

// expandPath expands a leading tilde and environment variables.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// initStorage opens the history database and runs migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/minusflow/minusflow.db"
	}
	dbPath = expandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// buildAIClients constructs the LLM-backed classifier and word filter from
// configuration. Returns nils when no AI provider is configured.
func buildAIClients(logger *slog.Logger) (service.QueryClassifier, service.WordFilter, error) {
	provider := viper.GetString("ai.provider")
	if provider == "" {
		return nil, nil, nil
	}

	client, err := llm.NewClient(llm.Config{
		Provider:    provider,
		APIKey:      viper.GetString("ai.api_key"),
		Model:       viper.GetString("ai.model"),
		Temperature: viper.GetFloat64("ai.temperature"),
		MaxTokens:   viper.GetInt("ai.max_tokens"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	rps := viper.GetFloat64("ai.rate_limit")
	return llm.NewQueryClassifier(client, rps, logger),
		llm.NewWordLevelFilter(client, rps, logger),
		nil
}

// buildEngine assembles the triage engine with configured collaborators.
func buildEngine(logger *slog.Logger) (*engine.Engine, error) {
	classifier, wordFilter, err := buildAIClients(logger)
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{}
	if classifier != nil {
		opts = append(opts, engine.WithClassifier(classifier))
	}
	if wordFilter != nil {
		opts = append(opts, engine.WithWordFilter(wordFilter))
	}
	if limit := viper.GetInt("analysis.query_limit"); limit > 0 {
		opts = append(opts, engine.WithQueryLimit(limit))
	}
	if limit := viper.GetInt("analysis.word_limit"); limit > 0 {
		opts = append(opts, engine.WithWordLimit(limit))
	}
	opts = append(opts, engine.WithHeuristicConfig(heuristicConfigFromViper()))
	return engine.New(logger, opts...), nil
}

// heuristicConfigFromViper overlays configured thresholds and stop words on
// the defaults.
func heuristicConfigFromViper() heuristic.Config {
	cfg := heuristic.DefaultConfig()
	if viper.IsSet("analysis.max_cpl") {
		cfg.MaxCpl = viper.GetFloat64("analysis.max_cpl")
	}
	if viper.IsSet("analysis.min_impressions") {
		cfg.MinImpressions = viper.GetInt("analysis.min_impressions")
	}
	if viper.IsSet("analysis.min_clicks") {
		cfg.MinClicks = viper.GetInt("analysis.min_clicks")
	}
	if stopWords := viper.GetStringSlice("analysis.stop_words"); len(stopWords) > 0 {
		cfg.StopWords = stopWords
	}
	return cfg
}

// loadCorpus reads a query corpus from path, picking the parser by
// extension. CSV ingest shows a progress bar on stderr.
func loadCorpus(ctx context.Context, path string, logger *slog.Logger) ([]model.QueryMetricRecord, error) {
	var src service.QuerySource
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		src = source.NewJSONLoader(path, logger)
	default:
		src = source.NewCSVLoader(path, logger, source.WithProgress(os.Stderr))
	}
	return src.Queries(ctx)
}
