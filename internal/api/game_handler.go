package api

import (
	"net/http"

	"courtside/team-ops/internal/gameclock"
	"courtside/team-ops/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GameHandler drives the bench-side game clock.
type GameHandler struct {
	games service.GameService
}

func NewGameHandler(games service.GameService) *GameHandler {
	return &GameHandler{games: games}
}

type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

// gameAction runs op against the session's clock and returns the resulting snapshot.
func gameAction(op func(*gin.Context, primitive.ObjectID) (gameclock.Snapshot, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "sessionId")
		if !ok {
			return
		}
		snap, err := op(c, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

func (h *GameHandler) Snapshot() gin.HandlerFunc {
	return gameAction(func(c *gin.Context, id primitive.ObjectID) (gameclock.Snapshot, error) {
		return h.games.Snapshot(c.Request.Context(), id)
	})
}

func (h *GameHandler) Toggle() gin.HandlerFunc {
	return gameAction(func(c *gin.Context, id primitive.ObjectID) (gameclock.Snapshot, error) {
		return h.games.Toggle(c.Request.Context(), id)
	})
}

func (h *GameHandler) PutIn() gin.HandlerFunc {
	return gameAction(func(c *gin.Context, id primitive.ObjectID) (gameclock.Snapshot, error) {
		return h.games.PutIn(c.Request.Context(), id, c.Param("playerId"))
	})
}

func (h *GameHandler) TakeOut() gin.HandlerFunc {
	return gameAction(func(c *gin.Context, id primitive.ObjectID) (gameclock.Snapshot, error) {
		return h.games.TakeOut(c.Request.Context(), id, c.Param("playerId"))
	})
}

func (h *GameHandler) HalfTime() gin.HandlerFunc {
	return gameAction(func(c *gin.Context, id primitive.ObjectID) (gameclock.Snapshot, error) {
		return h.games.HalfTime(c.Request.Context(), id)
	})
}

// Reset wipes the game back to 10:00. The body must carry {"confirm": true}.
func (h *GameHandler) Reset() gin.HandlerFunc {
	return gameAction(func(c *gin.Context, id primitive.ObjectID) (gameclock.Snapshot, error) {
		var req ResetRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				return gameclock.Snapshot{}, gameclock.ErrResetNotConfirmed
			}
		}
		return h.games.Reset(c.Request.Context(), id, req.Confirm || c.Query("confirm") == "true")
	})
}
