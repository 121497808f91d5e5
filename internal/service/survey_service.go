package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"courtside/team-ops/internal/cache"
	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/metrics"
	"courtside/team-ops/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrSurveyNotOpen = errors.New("survey has not been opened for this session")
	ErrNotEligible   = errors.New("player was not present when the survey opened")
	ErrUnknownSurvey = errors.New("unknown survey kind")
)

// SurveyAverages are the means over all responses, rounded to one decimal.
type SurveyAverages struct {
	RPE  float64 `json:"rpe"`
	Legs float64 `json:"legs,omitempty"`
}

// SurveyResults is the coach's view of one survey.
type SurveyResults struct {
	SessionID     primitive.ObjectID                  `json:"sessionId"`
	Kind          domain.SurveyKind                   `json:"kind"`
	Open          bool                                `json:"open"`
	OpenedAt      *time.Time                          `json:"openedAt,omitempty"`
	Eligible      []string                            `json:"eligible"`
	Pending       []string                            `json:"pending"`
	Court         map[string]domain.SurveyResponse    `json:"court,omitempty"`
	Gym           map[string]domain.GymSurveyResponse `json:"gym,omitempty"`
	ResponseCount int                                 `json:"responseCount"`
	Averages      SurveyAverages                      `json:"averages"`
}

type SurveyService interface {
	// Open snapshots the players present right now as the only ones allowed to respond.
	Open(ctx context.Context, sessionID primitive.ObjectID, kind domain.SurveyKind) ([]string, error)
	Submit(ctx context.Context, sessionID primitive.ObjectID, playerID string, resp domain.SurveyResponse) error
	SubmitGym(ctx context.Context, sessionID primitive.ObjectID, playerID string, resp domain.GymSurveyResponse) error
	Results(ctx context.Context, sessionID primitive.ObjectID, kind domain.SurveyKind) (*SurveyResults, error)
}

type surveyService struct {
	sessions     SessionService
	practice     PracticeService
	practiceRepo repository.PracticeRepository
	cache        cache.Store
}

func NewSurveyService(sessions SessionService, practice PracticeService, practiceRepo repository.PracticeRepository, store cache.Store) SurveyService {
	return &surveyService{sessions: sessions, practice: practice, practiceRepo: practiceRepo, cache: store}
}

func (s *surveyService) Open(ctx context.Context, sessionID primitive.ObjectID, kind domain.SurveyKind) ([]string, error) {
	if !kind.Valid() {
		return nil, ErrUnknownSurvey
	}
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := s.practice.Flush(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("flushing attendance: %w", err)
	}
	attendance, err := s.practice.Attendance(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	players := domain.PresentPlayers(attendance)

	if err := s.practiceRepo.OpenSurvey(ctx, sessionID, kind, players, storeStamp()); err != nil {
		return nil, err
	}
	cache.SetJSON(ctx, s.cache, cache.SurveyPlayersKey(kind, sessionID.Hex()), players)
	log.Printf("INFO: [Survey] opened %s survey for %s with %d players", kind, sessionID.Hex(), len(players))
	return players, nil
}

// gate loads the practice document and checks that playerID may answer survey kind.
func (s *surveyService) gate(ctx context.Context, sessionID primitive.ObjectID, kind domain.SurveyKind, playerID string) error {
	data, err := s.practiceRepo.Get(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSurveyNotOpen
	}
	if err != nil {
		return err
	}
	if !data.SurveyOpen(kind) {
		return ErrSurveyNotOpen
	}
	if !data.Eligible(kind, playerID) {
		return ErrNotEligible
	}
	return nil
}

// Submit stores the player's court survey, replacing any earlier answer.
func (s *surveyService) Submit(ctx context.Context, sessionID primitive.ObjectID, playerID string, resp domain.SurveyResponse) error {
	if err := resp.Validate(); err != nil {
		return err
	}
	if err := s.gate(ctx, sessionID, domain.SurveyCourt, playerID); err != nil {
		return err
	}
	resp.SavedAt = storeStamp()
	if err := s.practiceRepo.SetSurveyResponse(ctx, sessionID, playerID, resp); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSurveyNotOpen
		}
		return err
	}
	metrics.RecordSurveySubmission(string(domain.SurveyCourt))
	return nil
}

func (s *surveyService) SubmitGym(ctx context.Context, sessionID primitive.ObjectID, playerID string, resp domain.GymSurveyResponse) error {
	if err := resp.Validate(); err != nil {
		return err
	}
	if err := s.gate(ctx, sessionID, domain.SurveyGym, playerID); err != nil {
		return err
	}
	resp.SavedAt = storeStamp()
	if err := s.practiceRepo.SetGymSurveyResponse(ctx, sessionID, playerID, resp); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSurveyNotOpen
		}
		return err
	}
	metrics.RecordSurveySubmission(string(domain.SurveyGym))
	return nil
}

func (s *surveyService) Results(ctx context.Context, sessionID primitive.ObjectID, kind domain.SurveyKind) (*SurveyResults, error) {
	if !kind.Valid() {
		return nil, ErrUnknownSurvey
	}
	data, err := s.practice.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	eligible := data.SurveyPlayersFor(kind)
	if len(eligible) == 0 {
		eligible, _ = cache.GetJSON(ctx, s.cache, cache.SurveyPlayersKey(kind, sessionID.Hex()), []string{})
	}

	res := &SurveyResults{
		SessionID: sessionID,
		Kind:      kind,
		Open:      data.SurveyOpen(kind),
		Eligible:  append([]string{}, eligible...),
		Pending:   []string{},
	}
	if kind == domain.SurveyGym {
		res.OpenedAt = data.GymSurveyOpenedAt
	} else {
		res.OpenedAt = data.SurveyOpenedAt
	}
	for _, id := range eligible {
		if !data.Responded(kind, id) {
			res.Pending = append(res.Pending, id)
		}
	}

	switch kind {
	case domain.SurveyCourt:
		res.Court = data.SurveyData
		var rpe, legs int
		for _, r := range data.SurveyData {
			rpe += r.RPE
			legs += r.Legs
		}
		if n := len(data.SurveyData); n > 0 {
			res.ResponseCount = n
			res.Averages = SurveyAverages{RPE: domain.Round1(float64(rpe) / float64(n)), Legs: domain.Round1(float64(legs) / float64(n))}
		}
	case domain.SurveyGym:
		res.Gym = data.GymSurveyData
		var rpe int
		for _, r := range data.GymSurveyData {
			rpe += r.RPE
		}
		if n := len(data.GymSurveyData); n > 0 {
			res.ResponseCount = n
			res.Averages = SurveyAverages{RPE: domain.Round1(float64(rpe) / float64(n))}
		}
	}
	return res, nil
}
