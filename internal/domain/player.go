package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Player is a roster entry. Other records reference players by ID, never by name.
type Player struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name" validate:"required,max=80"`
	Number    int                `bson:"number" json:"number" validate:"gte=0,lte=99"`
	Position  string             `bson:"position,omitempty" json:"position,omitempty" validate:"max=20"`
	Active    bool               `bson:"active" json:"active"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks the roster fields.
func (p *Player) Validate() error {
	return check(p)
}

// PlayerNames resolves stable player ids to display names.
type PlayerNames map[string]string

// NewPlayerNames builds the lookup table from a roster listing.
func NewPlayerNames(players []Player) PlayerNames {
	names := make(PlayerNames, len(players))
	for _, p := range players {
		names[p.ID.Hex()] = p.Name
	}
	return names
}

// Name returns the display name for id, or the id itself for players no longer on the roster.
func (n PlayerNames) Name(id string) string {
	if name, ok := n[id]; ok && name != "" {
		return name
	}
	return id
}
