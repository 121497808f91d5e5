package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanType separates team plans from per-player individual plans.
type PlanType string

const (
	PlanTeam       PlanType = "plan"
	PlanIndividual PlanType = "individual"
)

// PlanExercise is one line of a gym plan.
type PlanExercise struct {
	ID          string `bson:"id" json:"id"`
	Name        string `bson:"name" json:"name" validate:"required,max=120"`
	Sets        int    `bson:"sets" json:"sets" validate:"gte=0,lte=50"`
	Reps        string `bson:"reps,omitempty" json:"reps,omitempty" validate:"max=40"`
	Weight      string `bson:"weight,omitempty" json:"weight,omitempty" validate:"max=40"`
	RestSeconds int    `bson:"restSeconds,omitempty" json:"restSeconds,omitempty" validate:"gte=0"`
	Notes       string `bson:"notes,omitempty" json:"notes,omitempty"`
	Order       int    `bson:"order" json:"order"`
}

// PlanPlayer holds the exercises of one player inside an individual plan.
type PlanPlayer struct {
	PlayerID  string         `bson:"playerId" json:"playerId" validate:"required"`
	Exercises []PlanExercise `bson:"exercises" json:"exercises" validate:"dive"`
}

// Plan is a gym workout plan built in the plan builder.
type Plan struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name       string              `bson:"name" json:"name" validate:"required,max=120"`
	Type       PlanType            `bson:"type" json:"type" validate:"required,oneof=plan individual"`
	Exercises  []PlanExercise      `bson:"exercises,omitempty" json:"exercises,omitempty" validate:"dive"`
	Players    []PlanPlayer        `bson:"players,omitempty" json:"players,omitempty" validate:"dive"`
	GroupID    *primitive.ObjectID `bson:"groupId,omitempty" json:"groupId,omitempty"`
	IsArchived bool                `bson:"isArchived" json:"isArchived"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks the plan fields and that the payload matches the plan type.
func (p *Plan) Validate() error {
	if err := check(p); err != nil {
		return err
	}
	switch p.Type {
	case PlanTeam:
		if len(p.Players) > 0 {
			return fmt.Errorf("%w: team plans carry exercises, not players", ErrInvalid)
		}
	case PlanIndividual:
		if len(p.Exercises) > 0 {
			return fmt.Errorf("%w: individual plans carry per-player exercises", ErrInvalid)
		}
	}
	return nil
}

// Normalize assigns exercise ids and sequential order values.
func (p *Plan) Normalize() {
	normalizeExercises(p.Exercises)
	for i := range p.Players {
		normalizeExercises(p.Players[i].Exercises)
	}
}

func normalizeExercises(list []PlanExercise) {
	for i := range list {
		if list[i].ID == "" {
			list[i].ID = uuid.NewString()
		}
		list[i].Order = i + 1
	}
}

// Clone returns a deep copy with fresh exercise ids, unsaved and unarchived.
func (p *Plan) Clone(name string) *Plan {
	cp := &Plan{
		Name:    name,
		Type:    p.Type,
		GroupID: p.GroupID,
	}
	for _, ex := range p.Exercises {
		ex.ID = ""
		cp.Exercises = append(cp.Exercises, ex)
	}
	for _, pl := range p.Players {
		np := PlanPlayer{PlayerID: pl.PlayerID}
		for _, ex := range pl.Exercises {
			ex.ID = ""
			np.Exercises = append(np.Exercises, ex)
		}
		cp.Players = append(cp.Players, np)
	}
	cp.Normalize()
	return cp
}

// Folder groups plans in the plan builder sidebar.
type Folder struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// ErrFolderNameRequired is returned when a folder is created without a name.
var ErrFolderNameRequired = errors.New("folder name is required")
