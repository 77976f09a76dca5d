// Command semrank runs one search against a JSON document file. It is the
// composition root for the library: config, logger, provider backend, rate
// limiter, cache, ranker, service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semrank/internal/cache"
	"github.com/kailas-cloud/semrank/internal/config"
	"github.com/kailas-cloud/semrank/internal/domain/document"
	logpkg "github.com/kailas-cloud/semrank/internal/logger"
	"github.com/kailas-cloud/semrank/internal/metrics"
	openaiprov "github.com/kailas-cloud/semrank/internal/provider/openai"
	restprov "github.com/kailas-cloud/semrank/internal/provider/rest"
	"github.com/kailas-cloud/semrank/internal/ranker"
	"github.com/kailas-cloud/semrank/internal/ratelimit"
	"github.com/kailas-cloud/semrank/internal/search"
	"github.com/kailas-cloud/semrank/internal/version"
)

type documentFile struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type resultOutput struct {
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
	Source     string  `json:"source"`
}

func main() {
	var (
		queryText  = flag.String("query", "", "search query text")
		docsPath   = flag.String("docs", "", "path to a JSON array of documents")
		limit      = flag.Int("limit", 0, "maximum results (0 = default)")
		filterSpec = flag.String("filters", "", "metadata filters as k=v,k=v")
		timeout    = flag.Duration("timeout", 30*time.Second, "overall search deadline")
	)
	flag.Parse()

	if *queryText == "" || *docsPath == "" {
		fmt.Fprintln(os.Stderr, "usage: semrank -query <text> -docs <file.json> [-limit n] [-filters k=v,...]")
		os.Exit(2)
	}

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting semrank",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("provider", cfg.Provider.Kind),
	)

	metrics.RegisterMetrics()

	// Select the provider backend by config driver.
	var provider search.Provider
	switch cfg.Provider.Kind {
	case "rest":
		provider = restprov.NewClient(&restprov.Config{
			BaseURL:    cfg.Provider.BaseURL,
			APIKey:     cfg.Provider.APIKey,
			Timeout:    cfg.Provider.Timeout(),
			MaxRetries: cfg.Provider.MaxRetries,
			Logger:     logger,
		})
	case "openai":
		provider = openaiprov.NewClient(&openaiprov.Config{
			APIKey:     cfg.Provider.APIKey,
			BaseURL:    cfg.Provider.BaseURL,
			Model:      cfg.Provider.Model,
			Timeout:    cfg.Provider.Timeout(),
			MaxRetries: cfg.Provider.MaxRetries,
			Logger:     logger,
		})
	default:
		logger.Fatal("Unknown provider kind", zap.String("kind", cfg.Provider.Kind))
	}

	svc := search.New(
		provider,
		ratelimit.New(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst, logger),
		cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL(), logger),
		ranker.New(cfg.Ranker.ProviderWeight, cfg.Ranker.LocalWeight),
		logger,
	)

	documents, err := loadDocuments(*docsPath)
	if err != nil {
		logger.Fatal("Failed to load documents", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = logpkg.ContextWithLogger(ctx, logger)

	results, err := svc.Search(ctx, *queryText, parseFilters(*filterSpec), *limit, documents)
	if err != nil {
		logger.Fatal("Search failed", zap.Error(err))
	}

	out := make([]resultOutput, 0, len(results))
	for i := range results {
		out = append(out, resultOutput{
			DocumentID: results[i].DocumentID(),
			Score:      results[i].Score(),
			Source:     string(results[i].Source()),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatal("Failed to encode results", zap.Error(err))
	}
}

func loadDocuments(path string) ([]document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}

	var raw []documentFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse documents: %w", err)
	}

	documents := make([]document.Document, 0, len(raw))
	for _, d := range raw {
		doc, err := document.New(d.ID, d.Content, d.Metadata)
		if err != nil {
			return nil, fmt.Errorf("document %q: %w", d.ID, err)
		}
		documents = append(documents, doc)
	}
	return documents, nil
}

func parseFilters(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	filters := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		if k, v, ok := strings.Cut(pair, "="); ok {
			filters[k] = v
		}
	}
	return filters
}
