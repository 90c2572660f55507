package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"auroma-service/internal/models"
	"auroma-service/internal/redisclient"
	"auroma-service/internal/store"
	"auroma-service/internal/util"

	"go.uber.org/zap"
)

// CreatorCodeService validates creator discount codes, with Redis in front
// of the database. Only active codes are ever cached.
type CreatorCodeService struct {
	store    *store.Store
	redis    *redisclient.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCreatorCodeService creates a new creator code service
func NewCreatorCodeService(st *store.Store, redis *redisclient.Client, cacheTTL time.Duration) *CreatorCodeService {
	return &CreatorCodeService{
		store:    st,
		redis:    redis,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// Validate resolves a submitted code string to an active creator code.
// Matching is case-insensitive: input is normalized to uppercase before
// lookup. Unknown and inactive codes both come back as
// ErrInvalidCreatorCode.
func (s *CreatorCodeService) Validate(ctx context.Context, raw string) (*models.CreatorCode, error) {
	ctx, span := util.StartSpan(ctx, "CreatorCodeService.Validate")
	defer span.End()

	code := NormalizeCode(raw)
	if code == "" {
		util.CreatorCodeLookupsTotal.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCreatorCode
	}

	if s.redis != nil {
		cached, ok, err := s.redis.GetCreatorCode(ctx, code)
		if err != nil {
			s.logger.Warn("Creator code cache read failed, falling back to DB",
				zap.String("code", code),
				zap.Error(err))
		} else if ok {
			util.CreatorCodeLookupsTotal.WithLabelValues("cache_hit").Inc()
			return cached, nil
		}
	}

	cc, err := s.store.GetActiveCreatorCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		util.CreatorCodeLookupsTotal.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCreatorCode
	}
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.redis.SetCreatorCode(ctx, cc, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache creator code",
				zap.String("code", code),
				zap.Error(err))
		}
	}

	util.CreatorCodeLookupsTotal.WithLabelValues("valid").Inc()
	return cc, nil
}

// NormalizeCode returns the canonical form of a submitted code string.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
