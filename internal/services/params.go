package services

import (
	"context"
	"fmt"
	"sync"

	"mango-roulette-backend/internal/config"
	"mango-roulette-backend/internal/models"
)

// ParamsService owns the operator-tunable GameParams: persisted in
// Redis, cached in memory for the hot read path, refreshed only by
// explicit Update or Reload. Readers never mutate it.
type ParamsService struct {
	redis    *RedisService
	defaults models.GameParams

	mu      sync.RWMutex
	current models.GameParams
}

func NewParamsService(redisService *RedisService, cfg *config.Config) *ParamsService {
	defaults := models.GameParams{
		BettingDuration:     cfg.BettingDuration,
		LockedDuration:      cfg.LockedDuration,
		SpinDuration:        cfg.SpinDuration,
		ResultDuration:      cfg.ResultDuration,
		MaxBetReal:          cfg.MaxBetReal,
		MaxBetTrial:         cfg.MaxBetTrial,
		ProtectionThreshold: cfg.ProtectionThreshold,
	}.Clamp()

	return &ParamsService{
		redis:    redisService,
		defaults: defaults,
		current:  defaults,
	}
}

// Load initializes the cache from storage, seeding storage with the
// configured defaults on first run.
func (p *ParamsService) Load(ctx context.Context) error {
	stored, err := p.redis.GetStoredParams(ctx)
	if err != nil {
		return err
	}

	if stored == nil {
		if err := p.redis.SaveParams(ctx, p.defaults); err != nil {
			return fmt.Errorf("failed to seed game params: %w", err)
		}
		stored = &p.defaults
	}

	p.mu.Lock()
	p.current = stored.Clamp()
	p.mu.Unlock()

	return nil
}

// Get returns a copy of the current params.
func (p *ParamsService) Get() models.GameParams {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Update clamps each field into its validation range, persists the
// result, and refreshes the cache. Running rounds keep their snapshot;
// the new values apply from the next round.
func (p *ParamsService) Update(ctx context.Context, params models.GameParams) (models.GameParams, error) {
	clamped := params.Clamp()

	if err := p.redis.SaveParams(ctx, clamped); err != nil {
		return models.GameParams{}, err
	}

	p.mu.Lock()
	p.current = clamped
	p.mu.Unlock()

	return clamped, nil
}

// Reload re-reads storage, for operators editing params out of band.
func (p *ParamsService) Reload(ctx context.Context) (models.GameParams, error) {
	if err := p.Load(ctx); err != nil {
		return models.GameParams{}, err
	}
	return p.Get(), nil
}
