package domain

import (
	"math"
	"time"
)

// WellnessResponse is a player's morning questionnaire.
type WellnessResponse struct {
	Sleep       int       `bson:"sleep" json:"sleep" validate:"required,min=1,max=10"`
	Fatigue     int       `bson:"fatigue" json:"fatigue" validate:"required,min=1,max=10"`
	Soreness    int       `bson:"soreness" json:"soreness" validate:"required,min=1,max=10"`
	PhysioNotes string    `bson:"physioNotes,omitempty" json:"physioNotes,omitempty" validate:"max=1000"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
}

// Validate checks the 1-10 scales.
func (w WellnessResponse) Validate() error {
	return check(w)
}

// WellnessAverages are the day's arithmetic means, rounded to one decimal.
type WellnessAverages struct {
	Sleep    float64 `bson:"sleep" json:"sleep"`
	Fatigue  float64 `bson:"fatigue" json:"fatigue"`
	Soreness float64 `bson:"soreness" json:"soreness"`
}

// WellnessDay aggregates every response submitted for one calendar date.
// Version guards the read-modify-write cycle.
type WellnessDay struct {
	Date          string                      `bson:"_id" json:"date"`
	Responses     map[string]WellnessResponse `bson:"responses" json:"responses"`
	Averages      WellnessAverages            `bson:"averages" json:"averages"`
	ResponseCount int                         `bson:"responseCount" json:"responseCount"`
	Version       int64                       `bson:"version" json:"version"`
	UpdatedAt     time.Time                   `bson:"updatedAt" json:"updatedAt"`
}

// NewWellnessDay returns an empty day document.
func NewWellnessDay(date string) *WellnessDay {
	return &WellnessDay{Date: date, Responses: map[string]WellnessResponse{}}
}

// Merge sets playerID's response, replacing any earlier one, and recomputes the averages.
func (d *WellnessDay) Merge(playerID string, resp WellnessResponse) {
	if d.Responses == nil {
		d.Responses = map[string]WellnessResponse{}
	}
	d.Responses[playerID] = resp
	d.Recompute()
}

// Recompute derives ResponseCount and Averages from Responses.
func (d *WellnessDay) Recompute() {
	d.ResponseCount = len(d.Responses)
	if d.ResponseCount == 0 {
		d.Averages = WellnessAverages{}
		return
	}
	var sleep, fatigue, soreness int
	for _, r := range d.Responses {
		sleep += r.Sleep
		fatigue += r.Fatigue
		soreness += r.Soreness
	}
	n := float64(d.ResponseCount)
	d.Averages = WellnessAverages{
		Sleep:    Round1(float64(sleep) / n),
		Fatigue:  Round1(float64(fatigue) / n),
		Soreness: Round1(float64(soreness) / n),
	}
}

// Round1 rounds x to one decimal place.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}
