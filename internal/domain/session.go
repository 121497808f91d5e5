package domain

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Slot is the half of the day a session occupies.
type Slot string

const (
	SlotAM Slot = "AM"
	SlotPM Slot = "PM"
)

// SessionType classifies what happens in a scheduled slot.
type SessionType string

const (
	SessionPractice      SessionType = "Practice"
	SessionGame          SessionType = "Game"
	SessionDayOff        SessionType = "DayOff"
	SessionSplitPractice SessionType = "SplitPractice"
	SessionMeeting       SessionType = "Meeting"
	SessionRecovery      SessionType = "Recovery"
	SessionTravel        SessionType = "Travel"
)

// SessionPart is one block of a session plan (warm-up, shooting, scrimmage...).
type SessionPart struct {
	ID            string `bson:"id" json:"id"`
	Label         string `bson:"label" json:"label" validate:"required,max=120"`
	Minutes       int    `bson:"minutes" json:"minutes" validate:"gte=0,lte=600"`
	HighIntensity bool   `bson:"highIntensity" json:"highIntensity"`
	Notes         string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Session is a scheduled team event. At most one exists per (Date, Slot).
type Session struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Date                 string             `bson:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Slot                 Slot               `bson:"slot" json:"slot" validate:"required,oneof=AM PM"`
	StartTime            string             `bson:"startTime,omitempty" json:"startTime,omitempty" validate:"omitempty,datetime=15:04"`
	Type                 SessionType        `bson:"type" json:"type" validate:"required,oneof=Practice Game DayOff SplitPractice Meeting Recovery Travel"`
	Title                string             `bson:"title,omitempty" json:"title,omitempty" validate:"max=200"`
	Location             string             `bson:"location,omitempty" json:"location,omitempty" validate:"max=200"`
	Notes                string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Courts               int                `bson:"courts" json:"courts" validate:"gte=0,lte=20"`
	TotalMinutes         int                `bson:"totalMinutes" json:"totalMinutes" validate:"gte=0"`
	HighIntensityMinutes int                `bson:"highIntensityMinutes" json:"highIntensityMinutes" validate:"gte=0,ltefield=TotalMinutes"`
	Parts                []SessionPart      `bson:"parts,omitempty" json:"parts,omitempty" validate:"dive"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks required fields, enum values and minute totals.
func (s *Session) Validate() error {
	return check(s)
}

// Normalize assigns ids to new parts and derives totals from the parts when any exist.
func (s *Session) Normalize() {
	for i := range s.Parts {
		if s.Parts[i].ID == "" {
			s.Parts[i].ID = uuid.NewString()
		}
	}
	if len(s.Parts) == 0 {
		return
	}
	total, high := 0, 0
	for _, p := range s.Parts {
		total += p.Minutes
		if p.HighIntensity {
			high += p.Minutes
		}
	}
	s.TotalMinutes = total
	s.HighIntensityMinutes = high
}

// SessionPatch carries the editor drawer's partial update. Nil fields are left untouched.
type SessionPatch struct {
	Date                 *string        `json:"date"`
	Slot                 *Slot          `json:"slot"`
	StartTime            *string        `json:"startTime"`
	Type                 *SessionType   `json:"type"`
	Title                *string        `json:"title"`
	Location             *string        `json:"location"`
	Notes                *string        `json:"notes"`
	Courts               *int           `json:"courts"`
	TotalMinutes         *int           `json:"totalMinutes"`
	HighIntensityMinutes *int           `json:"highIntensityMinutes"`
	Parts                *[]SessionPart `json:"parts"`
}

// MovesSlot reports whether applying the patch changes the session's (date, slot) key.
func (p SessionPatch) MovesSlot(s *Session) bool {
	return (p.Date != nil && *p.Date != s.Date) || (p.Slot != nil && *p.Slot != s.Slot)
}

// Apply copies the set fields onto s and re-normalizes it.
func (p SessionPatch) Apply(s *Session) {
	if p.Date != nil {
		s.Date = *p.Date
	}
	if p.Slot != nil {
		s.Slot = *p.Slot
	}
	if p.StartTime != nil {
		s.StartTime = *p.StartTime
	}
	if p.Type != nil {
		s.Type = *p.Type
	}
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Location != nil {
		s.Location = *p.Location
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
	if p.Courts != nil {
		s.Courts = *p.Courts
	}
	if p.TotalMinutes != nil {
		s.TotalMinutes = *p.TotalMinutes
	}
	if p.HighIntensityMinutes != nil {
		s.HighIntensityMinutes = *p.HighIntensityMinutes
	}
	if p.Parts != nil {
		s.Parts = append([]SessionPart(nil), (*p.Parts)...)
	}
	s.Normalize()
}
