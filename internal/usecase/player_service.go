package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/market-value-crawler/internal/domain/player"
	"github.com/riskibarqy/market-value-crawler/internal/domain/valuation"
)

const (
	DefaultSearchLimit = 50
	DefaultTopLimit    = 10
	MaxPageLimit       = 500
)

type PlayerService struct {
	playerRepo    player.Repository
	valuationRepo valuation.Repository
}

func NewPlayerService(playerRepo player.Repository, valuationRepo valuation.Repository) *PlayerService {
	return &PlayerService{
		playerRepo:    playerRepo,
		valuationRepo: valuationRepo,
	}
}

// Search applies defaults before querying: limit 0 becomes DefaultSearchLimit.
func (s *PlayerService) Search(ctx context.Context, filter player.SearchFilter) ([]player.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Search")
	defer span.End()

	filter.LeagueID = strings.ToUpper(strings.TrimSpace(filter.LeagueID))
	filter.Name = strings.TrimSpace(filter.Name)
	if filter.Limit == 0 {
		filter.Limit = DefaultSearchLimit
	}
	if err := validateLimit(filter.Limit); err != nil {
		return nil, err
	}
	if filter.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must be >= 0", ErrInvalidInput)
	}

	items, err := s.playerRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search players: %w", err)
	}
	return items, nil
}

func (s *PlayerService) Top(ctx context.Context, limit int) ([]player.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Top")
	defer span.End()

	if limit == 0 {
		limit = DefaultTopLimit
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	items, err := s.playerRepo.TopByMarketValue(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list top players: %w", err)
	}
	return items, nil
}

func (s *PlayerService) Get(ctx context.Context, playerID int64) (player.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Get")
	defer span.End()

	if playerID <= 0 {
		return player.Summary{}, fmt.Errorf("%w: player id must be positive", ErrInvalidInput)
	}

	item, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return player.Summary{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return player.Summary{}, fmt.Errorf("%w: player=%d", ErrNotFound, playerID)
	}
	return item, nil
}

// Valuations returns the history for a player; unknown players get an empty
// slice rather than ErrNotFound.
func (s *PlayerService) Valuations(ctx context.Context, playerID int64) ([]valuation.Point, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Valuations")
	defer span.End()

	if playerID <= 0 {
		return nil, fmt.Errorf("%w: player id must be positive", ErrInvalidInput)
	}

	points, err := s.valuationRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list valuations: %w", err)
	}
	if points == nil {
		points = []valuation.Point{}
	}
	return points, nil
}

func validateLimit(limit int) error {
	if limit < 1 || limit > MaxPageLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxPageLimit)
	}
	return nil
}
