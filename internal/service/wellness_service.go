package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"courtside/team-ops/internal/cache"
	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/metrics"
	"courtside/team-ops/internal/repository"
	"courtside/team-ops/internal/report"
)

var ErrWellnessContention = errors.New("wellness day is being updated concurrently, try again")

// WellnessResult is returned to the submitting player.
type WellnessResult struct {
	Success       bool                    `json:"success"`
	Date          string                  `json:"date"`
	Averages      domain.WellnessAverages `json:"averages"`
	ResponseCount int                     `json:"responseCount"`
}

type WellnessService interface {
	Submit(ctx context.Context, date, playerID string, resp domain.WellnessResponse) (*WellnessResult, error)
	Day(ctx context.Context, date string) (*domain.WellnessDay, error)
	Range(ctx context.Context, from, to string) ([]domain.WellnessDay, error)
}

type wellnessService struct {
	wellnessRepo repository.WellnessRepository
	roster       RosterService
	cache        cache.Store
	maxAttempts  int
}

func NewWellnessService(wellnessRepo repository.WellnessRepository, roster RosterService, store cache.Store, maxAttempts int) WellnessService {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &wellnessService{wellnessRepo: wellnessRepo, roster: roster, cache: store, maxAttempts: maxAttempts}
}

// Submit merges the response into the day document with a version-guarded write, re-reading
// and retrying on conflict so concurrent submissions are never lost.
func (s *wellnessService) Submit(ctx context.Context, date, playerID string, resp domain.WellnessResponse) (*WellnessResult, error) {
	if !domain.ValidDate(date) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalid)
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.roster.Get(ctx, playerID); err != nil {
		return nil, err
	}
	resp.Timestamp = storeStamp()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		day, err := s.wellnessRepo.GetDay(ctx, date)
		var expected int64
		switch {
		case errors.Is(err, repository.ErrNotFound):
			day = domain.NewWellnessDay(date)
		case err != nil:
			metrics.RecordWellnessSubmission(false)
			return nil, err
		default:
			expected = day.Version
		}

		day.Merge(playerID, resp)
		err = s.wellnessRepo.SaveDay(ctx, day, expected)
		if errors.Is(err, repository.ErrVersionConflict) {
			metrics.RecordWellnessConflict()
			log.Printf("WARN: [Wellness] version conflict on %s (attempt %d)", date, attempt)
			continue
		}
		if err != nil {
			metrics.RecordWellnessSubmission(false)
			return nil, err
		}

		cache.SetJSON(ctx, s.cache, cache.WellnessKey(date), day)
		metrics.RecordWellnessSubmission(true)
		return &WellnessResult{Success: true, Date: date, Averages: day.Averages, ResponseCount: day.ResponseCount}, nil
	}
	metrics.RecordWellnessSubmission(false)
	return nil, ErrWellnessContention
}

// Day returns the day's aggregate; days without responses read as empty.
func (s *wellnessService) Day(ctx context.Context, date string) (*domain.WellnessDay, error) {
	if !domain.ValidDate(date) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalid)
	}
	day, err := s.wellnessRepo.GetDay(ctx, date)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return domain.NewWellnessDay(date), nil
	case err != nil:
		cached, ok := cache.GetJSON(ctx, s.cache, cache.WellnessKey(date), domain.WellnessDay{})
		if !ok {
			return nil, err
		}
		log.Printf("WARN: [Wellness] store read failed, serving cached day %s: %v", date, err)
		return &cached, nil
	}
	cache.SetJSON(ctx, s.cache, cache.WellnessKey(date), day)
	return day, nil
}

func (s *wellnessService) Range(ctx context.Context, from, to string) ([]domain.WellnessDay, error) {
	if _, err := report.DaysBetween(from, to); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	return s.wellnessRepo.ListRange(ctx, from, to)
}
