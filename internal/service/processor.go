package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/leshachaplin/dudkstats/internal/accesslog"
	"github.com/leshachaplin/dudkstats/internal/domain"
	"github.com/leshachaplin/dudkstats/internal/filter"
)

// Fetcher returns the complete raw contents of the access log.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

type Service struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

func New(fetcher Fetcher, logger zerolog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Collect fetches the log, keeps the lines that parse as usage events and
// applies criteria when any are set. The result is safe to iterate repeatedly.
func (s *Service) Collect(ctx context.Context, criteria filter.Criteria) ([]domain.UsageEvent, error) {
	raw, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch log: %w", err)
	}
	s.logger.Debug().Int("bytes", len(raw)).Msg("log fetched")

	events, stats := accesslog.ParseLines(raw)
	s.logger.Debug().
		Int("lines", stats.Lines).
		Int("parsed", stats.Parsed).
		Int("dropped", stats.Dropped).
		Msg("log parsed")

	if criteria.IsZero() {
		return events, nil
	}

	filtered := criteria.Apply(events)
	s.logger.Debug().Int("matched", len(filtered)).Int("parsed", len(events)).Msg("filters applied")

	return filtered, nil
}
