package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleCoach  Role = "coach"
	RolePlayer Role = "player"
)

// User is an account that can sign in. Player accounts are linked to a roster entry.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	Email        string              `bson:"email" json:"email"`    // unique
	PasswordHash string              `bson:"passwordHash" json:"-"` // never exposed
	Role         Role                `bson:"role" json:"role"`
	PlayerID     *primitive.ObjectID `bson:"playerId,omitempty" json:"playerId,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

func (u *User) IsPlayer() bool {
	return u.Role == RolePlayer
}
