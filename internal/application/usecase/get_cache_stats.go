package usecase

import (
	"context"

	"github.com/project2052/calculation-service/internal/application/dto"
	"github.com/project2052/calculation-service/internal/domain/port"
)

// GetCacheStatsUseCase reports result cache usage counters.
type GetCacheStatsUseCase struct {
	cache port.CalculationCache
}

// NewGetCacheStatsUseCase creates a new GetCacheStatsUseCase.
func NewGetCacheStatsUseCase(cache port.CalculationCache) *GetCacheStatsUseCase {
	return &GetCacheStatsUseCase{cache: cache}
}

// Execute snapshots the cache counters.
func (uc *GetCacheStatsUseCase) Execute(_ context.Context) (dto.CacheStatsResponse, error) {
	return dto.FromCacheStats(uc.cache.Stats()), nil
}
