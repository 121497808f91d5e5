package domain

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SurveyKind distinguishes the on-court RPE survey from the gym survey.
type SurveyKind string

const (
	SurveyCourt SurveyKind = "court"
	SurveyGym   SurveyKind = "gym"
)

// Valid reports whether k is a known survey kind.
func (k SurveyKind) Valid() bool {
	return k == SurveyCourt || k == SurveyGym
}

// AttendanceRecord is one player's presence for a session.
type AttendanceRecord struct {
	Present       bool   `bson:"present" json:"present"`
	Reason        string `bson:"reason,omitempty" json:"reason,omitempty" validate:"max=80"`
	ReasonDetails string `bson:"reasonDetails,omitempty" json:"reasonDetails,omitempty" validate:"max=500"`
}

// Validate checks the reason fields' lengths.
func (a AttendanceRecord) Validate() error {
	return check(a)
}

// SurveyResponse is a player's post-practice court survey.
type SurveyResponse struct {
	RPE     int       `bson:"rpe" json:"rpe" validate:"required,min=1,max=10"`
	Legs    int       `bson:"legs" json:"legs" validate:"required,min=1,max=10"`
	Notes   string    `bson:"notes,omitempty" json:"notes,omitempty" validate:"max=1000"`
	SavedAt time.Time `bson:"savedAt" json:"savedAt"`
}

// Validate checks the 1-10 scales.
func (r SurveyResponse) Validate() error {
	return check(r)
}

// GymSurveyResponse is a player's post-gym survey.
type GymSurveyResponse struct {
	RPE     int       `bson:"rpe" json:"rpe" validate:"required,min=1,max=10"`
	Notes   string    `bson:"notes,omitempty" json:"notes,omitempty" validate:"max=1000"`
	SavedAt time.Time `bson:"savedAt" json:"savedAt"`
}

// Validate checks the 1-10 scale.
func (r GymSurveyResponse) Validate() error {
	return check(r)
}

// DrillRow is a line of the practice plan sheet.
type DrillRow struct {
	ID            string `bson:"id" json:"id"`
	Name          string `bson:"name" json:"name" validate:"required,max=120"`
	Minutes       int    `bson:"minutes" json:"minutes" validate:"gte=0,lte=600"`
	HighIntensity bool   `bson:"highIntensity" json:"highIntensity"`
	Notes         string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Validate checks the row's name and minutes.
func (r DrillRow) Validate() error {
	return check(r)
}

// PracticeMetrics are the headline numbers shown on the practice page.
type PracticeMetrics struct {
	TotalMinutes         int `bson:"totalMinutes" json:"totalMinutes" validate:"gte=0"`
	HighIntensityMinutes int `bson:"highIntensityMinutes" json:"highIntensityMinutes" validate:"gte=0"`
	Courts               int `bson:"courts" json:"courts" validate:"gte=0"`
}

// MetricsFromDrills sums drill minutes into practice metrics.
func MetricsFromDrills(rows []DrillRow, courts int) PracticeMetrics {
	m := PracticeMetrics{Courts: courts}
	for _, r := range rows {
		m.TotalMinutes += r.Minutes
		if r.HighIntensity {
			m.HighIntensityMinutes += r.Minutes
		}
	}
	return m
}

// PracticeData is the per-session blob stored in the practices collection.
// Maps are keyed by stable player id (hex).
type PracticeData struct {
	SessionID         primitive.ObjectID           `bson:"_id" json:"sessionId"`
	Metrics           PracticeMetrics              `bson:"metrics" json:"metrics"`
	DrillRows         []DrillRow                   `bson:"drillRows" json:"drillRows"`
	Attendance        map[string]AttendanceRecord  `bson:"attendance" json:"attendance"`
	SurveyData        map[string]SurveyResponse    `bson:"surveyData" json:"surveyData"`
	GymSurveyData     map[string]GymSurveyResponse `bson:"gymSurveyData" json:"gymSurveyData"`
	SurveyPlayers     []string                     `bson:"surveyPlayers,omitempty" json:"surveyPlayers,omitempty"`
	GymSurveyPlayers  []string                     `bson:"gymSurveyPlayers,omitempty" json:"gymSurveyPlayers,omitempty"`
	SurveyOpenedAt    *time.Time                   `bson:"surveyOpenedAt,omitempty" json:"surveyOpenedAt,omitempty"`
	GymSurveyOpenedAt *time.Time                   `bson:"gymSurveyOpenedAt,omitempty" json:"gymSurveyOpenedAt,omitempty"`
	UpdatedAt         time.Time                    `bson:"updatedAt" json:"updatedAt"`
	UpdatedBy         string                       `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
}

// NewPracticeData returns the empty default for a session that has no stored blob.
func NewPracticeData(sessionID primitive.ObjectID) *PracticeData {
	p := &PracticeData{SessionID: sessionID}
	p.EnsureMaps()
	return p
}

// EnsureMaps replaces nil maps and slices with empty ones after decoding.
func (p *PracticeData) EnsureMaps() {
	if p.Attendance == nil {
		p.Attendance = map[string]AttendanceRecord{}
	}
	if p.SurveyData == nil {
		p.SurveyData = map[string]SurveyResponse{}
	}
	if p.GymSurveyData == nil {
		p.GymSurveyData = map[string]GymSurveyResponse{}
	}
	if p.DrillRows == nil {
		p.DrillRows = []DrillRow{}
	}
}

// PresentPlayers returns the ids marked present, sorted.
func (p *PracticeData) PresentPlayers() []string {
	return PresentPlayers(p.Attendance)
}

// PresentPlayers returns the ids marked present in an attendance map, sorted.
func PresentPlayers(attendance map[string]AttendanceRecord) []string {
	ids := make([]string, 0, len(attendance))
	for id, rec := range attendance {
		if rec.Present {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// SurveyOpen reports whether a survey of kind k has been launched for this session.
func (p *PracticeData) SurveyOpen(k SurveyKind) bool {
	if k == SurveyGym {
		return p.GymSurveyOpenedAt != nil
	}
	return p.SurveyOpenedAt != nil
}

// SurveyPlayersFor returns the eligibility snapshot taken when survey k was opened.
func (p *PracticeData) SurveyPlayersFor(k SurveyKind) []string {
	if k == SurveyGym {
		return p.GymSurveyPlayers
	}
	return p.SurveyPlayers
}

// Eligible reports whether playerID is in the snapshot of survey k.
func (p *PracticeData) Eligible(k SurveyKind, playerID string) bool {
	for _, id := range p.SurveyPlayersFor(k) {
		if id == playerID {
			return true
		}
	}
	return false
}

// Responded reports whether playerID already has a response for survey k.
func (p *PracticeData) Responded(k SurveyKind, playerID string) bool {
	if k == SurveyGym {
		_, ok := p.GymSurveyData[playerID]
		return ok
	}
	_, ok := p.SurveyData[playerID]
	return ok
}
