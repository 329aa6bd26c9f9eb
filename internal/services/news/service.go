package news

import (
	"context"

	"Monexa/internal/domain/models"
	domrepo "Monexa/internal/domain/repository"
	applogger "Monexa/pkg/logger"
)

// Service turns a news source into the advisor's news context. It never fails.
type Service struct {
	source domrepo.NewsSource
	log    *applogger.Logger
}

// NewService creates a Service. A nil source means news is not configured.
func NewService(source domrepo.NewsSource, log *applogger.Logger) *Service {
	if log == nil {
		log = applogger.NewNop()
	}
	return &Service{source: source, log: log}
}

// Digest returns the fetched articles and their summary.
func (s *Service) Digest(ctx context.Context) models.NewsDigest {
	if s.source == nil {
		return models.NewsDigest{Articles: []models.Article{}, Context: NoRecentNews}
	}
	articles, err := s.source.Articles(ctx)
	if err != nil {
		s.log.Warn("news unavailable", applogger.Error(err))
		return models.NewsDigest{Articles: []models.Article{}, Context: NoRecentNews}
	}
	return models.NewsDigest{Articles: articles, Context: Summarize(articles)}
}

// Context returns the prepared news text.
func (s *Service) Context(ctx context.Context) string {
	return s.Digest(ctx).Context
}
