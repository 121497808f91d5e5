package service

import (
	"context"
	"errors"
	"log"

	"courtside/team-ops/internal/cache"
	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrPlayerNotFound = errors.New("player not found")

// PlayerPatch is a partial roster update. Nil fields are left untouched.
type PlayerPatch struct {
	Name     *string `json:"name"`
	Number   *int    `json:"number"`
	Position *string `json:"position"`
	Active   *bool   `json:"active"`
}

type RosterService interface {
	List(ctx context.Context, activeOnly bool) ([]domain.Player, error)
	Get(ctx context.Context, playerID string) (*domain.Player, error)
	Create(ctx context.Context, player *domain.Player) (*domain.Player, error)
	Update(ctx context.Context, playerID string, patch PlayerPatch) (*domain.Player, error)
	Delete(ctx context.Context, playerID string) error
	// Names resolves every player ever rostered, active or not.
	Names(ctx context.Context) (domain.PlayerNames, error)
}

type rosterService struct {
	rosterRepo repository.RosterRepository
	cache      cache.Store
}

func NewRosterService(rosterRepo repository.RosterRepository, store cache.Store) RosterService {
	return &rosterService{rosterRepo: rosterRepo, cache: store}
}

// parsePlayerID maps malformed ids to ErrPlayerNotFound; records use the hex form as key.
func parsePlayerID(playerID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(playerID)
	if err != nil {
		return primitive.NilObjectID, ErrPlayerNotFound
	}
	return id, nil
}

// List serves the cached roster when the store cannot be read.
func (s *rosterService) List(ctx context.Context, activeOnly bool) ([]domain.Player, error) {
	all, err := s.rosterRepo.List(ctx, false)
	if err != nil {
		cached, ok := cache.GetJSON(ctx, s.cache, cache.RosterKey(), []domain.Player(nil))
		if !ok {
			return nil, err
		}
		log.Printf("WARN: [Roster] store read failed, serving cached roster: %v", err)
		all = cached
	} else {
		cache.SetJSON(ctx, s.cache, cache.RosterKey(), all)
	}
	if !activeOnly {
		return all, nil
	}
	active := make([]domain.Player, 0, len(all))
	for _, p := range all {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

func (s *rosterService) Get(ctx context.Context, playerID string) (*domain.Player, error) {
	id, err := parsePlayerID(playerID)
	if err != nil {
		return nil, err
	}
	p, err := s.rosterRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *rosterService) Create(ctx context.Context, player *domain.Player) (*domain.Player, error) {
	if err := player.Validate(); err != nil {
		return nil, err
	}
	id, err := s.rosterRepo.Create(ctx, player)
	if err != nil {
		return nil, err
	}
	player.ID = id
	s.refresh(ctx)
	return player, nil
}

func (s *rosterService) Update(ctx context.Context, playerID string, patch PlayerPatch) (*domain.Player, error) {
	p, err := s.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Number != nil {
		p.Number = *patch.Number
	}
	if patch.Position != nil {
		p.Position = *patch.Position
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.rosterRepo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	s.refresh(ctx)
	return p, nil
}

// Delete removes the roster entry. Historical records keep the id and render it verbatim.
func (s *rosterService) Delete(ctx context.Context, playerID string) error {
	id, err := parsePlayerID(playerID)
	if err != nil {
		return err
	}
	if err := s.rosterRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlayerNotFound
		}
		return err
	}
	s.refresh(ctx)
	return nil
}

func (s *rosterService) Names(ctx context.Context) (domain.PlayerNames, error) {
	all, err := s.List(ctx, false)
	if err != nil {
		return nil, err
	}
	return domain.NewPlayerNames(all), nil
}

// refresh rewrites the cached roster after a change so the fallback copy stays current.
func (s *rosterService) refresh(ctx context.Context) {
	all, err := s.rosterRepo.List(ctx, false)
	if err != nil {
		if err := s.cache.Delete(ctx, cache.RosterKey()); err != nil {
			log.Printf("WARN: [Roster] cache invalidation failed: %v", err)
		}
		return
	}
	cache.SetJSON(ctx, s.cache, cache.RosterKey(), all)
}
