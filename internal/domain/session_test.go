package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Validate(t *testing.T) {
	valid := func() Session {
		return Session{Date: "2026-10-18", Slot: SlotAM, Type: SessionPractice, StartTime: "09:30"}
	}
	tests := []struct {
		name    string
		mutate  func(s *Session)
		wantErr bool
	}{
		{"valid practice", func(s *Session) {}, false},
		{"valid without start time", func(s *Session) { s.StartTime = "" }, false},
		{"missing date", func(s *Session) { s.Date = "" }, true},
		{"bad date", func(s *Session) { s.Date = "18/10/2026" }, true},
		{"bad slot", func(s *Session) { s.Slot = "NOON" }, true},
		{"bad type", func(s *Session) { s.Type = "Scrimmage" }, true},
		{"bad start time", func(s *Session) { s.StartTime = "25:99" }, true},
		{"negative courts", func(s *Session) { s.Courts = -1 }, true},
		{"high intensity above total", func(s *Session) { s.TotalMinutes = 30; s.HighIntensityMinutes = 45 }, true},
		{"part without label", func(s *Session) { s.Parts = []SessionPart{{Minutes: 10}} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalid))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSession_NormalizeDerivesTotals(t *testing.T) {
	s := Session{
		TotalMinutes: 999,
		Parts: []SessionPart{
			{Label: "Warm-up", Minutes: 15},
			{Label: "5v5", Minutes: 30, HighIntensity: true},
			{ID: "keep", Label: "Free throws", Minutes: 10},
		},
	}
	s.Normalize()

	assert.Equal(t, 55, s.TotalMinutes)
	assert.Equal(t, 30, s.HighIntensityMinutes)
	assert.NotEmpty(t, s.Parts[0].ID)
	assert.NotEqual(t, s.Parts[0].ID, s.Parts[1].ID)
	assert.Equal(t, "keep", s.Parts[2].ID)
}

func TestSession_NormalizeKeepsManualTotalsWithoutParts(t *testing.T) {
	s := Session{TotalMinutes: 90, HighIntensityMinutes: 20}
	s.Normalize()
	assert.Equal(t, 90, s.TotalMinutes)
	assert.Equal(t, 20, s.HighIntensityMinutes)
}

func TestSessionPatch_Apply(t *testing.T) {
	s := Session{Date: "2026-10-18", Slot: SlotAM, Type: SessionPractice, Title: "Shootaround"}
	title := "Film + walk-through"
	pm := SlotPM
	p := SessionPatch{Title: &title, Slot: &pm}

	assert.True(t, p.MovesSlot(&s))
	p.Apply(&s)

	assert.Equal(t, "Film + walk-through", s.Title)
	assert.Equal(t, SlotPM, s.Slot)
	assert.Equal(t, "2026-10-18", s.Date)
	assert.Equal(t, SessionPractice, s.Type)
}

func TestSessionPatch_MovesSlotSameValues(t *testing.T) {
	s := Session{Date: "2026-10-18", Slot: SlotAM}
	date := "2026-10-18"
	am := SlotAM
	assert.False(t, SessionPatch{Date: &date, Slot: &am}.MovesSlot(&s))
}
