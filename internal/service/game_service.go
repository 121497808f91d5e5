package service

import (
	"context"
	"errors"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/gameclock"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotAGame = errors.New("session is not a game")

type GameService interface {
	Snapshot(ctx context.Context, sessionID primitive.ObjectID) (gameclock.Snapshot, error)
	Toggle(ctx context.Context, sessionID primitive.ObjectID) (gameclock.Snapshot, error)
	PutIn(ctx context.Context, sessionID primitive.ObjectID, playerID string) (gameclock.Snapshot, error)
	TakeOut(ctx context.Context, sessionID primitive.ObjectID, playerID string) (gameclock.Snapshot, error)
	HalfTime(ctx context.Context, sessionID primitive.ObjectID) (gameclock.Snapshot, error)
	Reset(ctx context.Context, sessionID primitive.ObjectID, confirm bool) (gameclock.Snapshot, error)
}

type gameService struct {
	sessions SessionService
	roster   RosterService
	clocks   *gameclock.Manager
}

func NewGameService(sessions SessionService, roster RosterService, clocks *gameclock.Manager) GameService {
	s := &gameService{sessions: sessions, roster: roster, clocks: clocks}
	sessions.OnDelete(func(id primitive.ObjectID) { clocks.Remove(id.Hex()) })
	return s
}

// clock returns the game's clock, seeding its bench with the active roster on first use.
func (s *gameService) clock(ctx context.Context, sessionID primitive.ObjectID) (*gameclock.Clock, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Type != domain.SessionGame {
		return nil, ErrNotAGame
	}
	if c, ok := s.clocks.Lookup(sessionID.Hex()); ok {
		return c, nil
	}
	players, err := s.roster.List(ctx, true)
	if err != nil {
		return nil, err
	}
	c := s.clocks.Clock(sessionID.Hex())
	for _, p := range players {
		c.AddPlayers(p.ID.Hex())
	}
	return c, nil
}

func (s *gameService) Snapshot(ctx context.Context, sessionID primitive.ObjectID) (gameclock.Snapshot, error) {
	c, err := s.clock(ctx, sessionID)
	if err != nil {
		return gameclock.Snapshot{}, err
	}
	return c.Snapshot(), nil
}

func (s *gameService) Toggle(ctx context.Context, sessionID primitive.ObjectID) (gameclock.Snapshot, error) {
	if _, err := s.clock(ctx, sessionID); err != nil {
		return gameclock.Snapshot{}, err
	}
	return s.clocks.Toggle(sessionID.Hex()), nil
}

func (s *gameService) PutIn(ctx context.Context, sessionID primitive.ObjectID, playerID string) (gameclock.Snapshot, error) {
	c, err := s.clock(ctx, sessionID)
	if err != nil {
		return gameclock.Snapshot{}, err
	}
	if _, err := s.roster.Get(ctx, playerID); err != nil {
		return gameclock.Snapshot{}, err
	}
	if err := c.PutIn(playerID); err != nil {
		return c.Snapshot(), err
	}
	return c.Snapshot(), nil
}

func (s *gameService) TakeOut(ctx context.Context, sessionID primitive.ObjectID, playerID string) (gameclock.Snapshot, error) {
	c, err := s.clock(ctx, sessionID)
	if err != nil {
		return gameclock.Snapshot{}, err
	}
	if err := c.TakeOut(playerID); err != nil {
		return c.Snapshot(), err
	}
	return c.Snapshot(), nil
}

func (s *gameService) HalfTime(ctx context.Context, sessionID primitive.ObjectID) (gameclock.Snapshot, error) {
	c, err := s.clock(ctx, sessionID)
	if err != nil {
		return gameclock.Snapshot{}, err
	}
	c.HalfTimeReset()
	return c.Snapshot(), nil
}

func (s *gameService) Reset(ctx context.Context, sessionID primitive.ObjectID, confirm bool) (gameclock.Snapshot, error) {
	if _, err := s.clock(ctx, sessionID); err != nil {
		return gameclock.Snapshot{}, err
	}
	return s.clocks.Reset(sessionID.Hex(), confirm)
}
