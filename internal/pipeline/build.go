package pipeline

import (
	"errors"
	"time"

	"github.com/ppiankov/credence/internal/cache"
	"github.com/ppiankov/credence/internal/extract"
	"github.com/ppiankov/credence/internal/llm"
	"github.com/ppiankov/credence/internal/logger"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/score"
	"github.com/ppiankov/credence/internal/store"
	"github.com/ppiankov/credence/internal/telemetry"
)

// Build wires an Analyzer from configuration. A missing API key or an
// unreachable cache disables that feature with a warning; an unknown
// provider name is an error.
func Build(cfg *model.Config, log logger.Logger, metrics *telemetry.Metrics, st store.HistoryStore) (*Analyzer, error) {
	opts := []Option{
		WithLogger(log),
		WithMetrics(metrics),
		WithStore(st),
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		log.Warn("AI analysis disabled: no API key", logger.String("provider", cfg.LLM.Provider))
	case err != nil:
		return nil, err
	case provider != nil:
		timeout := time.Duration(cfg.LLM.Timeout) * time.Second
		opts = append(opts, WithAnalyst(llm.NewAnalyst(provider, timeout)))
		log.Info("AI analysis enabled", logger.String("provider", provider.Name()))
	}

	c, err := cache.New(cfg.Cache)
	if err != nil {
		log.Warn("result cache disabled", logger.Err(err))
	} else if c != nil {
		opts = append(opts, WithCache(c, cfg.Cache.TTL))
	}

	return NewAnalyzer(
		extract.NewExtractor(cfg.HTTP, cfg.Extract),
		score.NewScorer(cfg.Scoring),
		opts...,
	), nil
}
