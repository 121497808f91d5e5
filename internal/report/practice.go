package report

import (
	"fmt"
	"sort"
	"strconv"

	"courtside/team-ops/internal/domain"
)

const notesWidth = 60

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func oneDecimal(x float64) string {
	return strconv.FormatFloat(domain.Round1(x), 'f', 1, 64)
}

// sortedByName orders player ids by resolved display name, then id.
func sortedByName(ids []string, names domain.PlayerNames) []string {
	out := append([]string(nil), ids...)
	sort.Slice(out, func(i, j int) bool {
		ni, nj := names.Name(out[i]), names.Name(out[j])
		if ni != nj {
			return ni < nj
		}
		return out[i] < out[j]
	})
	return out
}

func sessionTitle(s domain.Session) string {
	title := fmt.Sprintf("%s %s %s", s.Date, s.Slot, s.Type)
	if s.Title != "" {
		title += " - " + s.Title
	}
	return title
}

// SessionOverview is the key/value header table shared by the session reports.
func SessionOverview(s domain.Session, m domain.PracticeMetrics) Table {
	total, high, courts := s.TotalMinutes, s.HighIntensityMinutes, s.Courts
	if m.TotalMinutes > 0 {
		total, high = m.TotalMinutes, m.HighIntensityMinutes
	}
	if m.Courts > 0 {
		courts = m.Courts
	}
	t := Table{Title: "Session", Headers: []string{"Field", "Value"}}
	t.AddRow("Date", s.Date)
	t.AddRow("Slot", string(s.Slot))
	t.AddRow("Start", s.StartTime)
	t.AddRow("Type", string(s.Type))
	t.AddRow("Location", s.Location)
	t.AddRow("Total minutes", strconv.Itoa(total))
	t.AddRow("High intensity minutes", strconv.Itoa(high))
	t.AddRow("Courts", strconv.Itoa(courts))
	return t
}

// SessionMinutes is the load basis for a session: planned drill minutes when recorded,
// otherwise the session's own total.
func SessionMinutes(s domain.Session, p *domain.PracticeData) int {
	if p != nil && p.Metrics.TotalMinutes > 0 {
		return p.Metrics.TotalMinutes
	}
	return s.TotalMinutes
}

// PracticeSummary is the post-practice report: plan, attendance and both surveys.
func PracticeSummary(s domain.Session, p domain.PracticeData, names domain.PlayerNames) Document {
	p.EnsureMaps()
	doc := Document{Title: "Practice summary: " + sessionTitle(s)}
	doc.Tables = append(doc.Tables, SessionOverview(s, p.Metrics))

	drills := Table{Title: "Drills", Headers: []string{"#", "Drill", "Minutes", "High intensity", "Notes"}}
	for i, d := range p.DrillRows {
		drills.AddRow(strconv.Itoa(i+1), d.Name, strconv.Itoa(d.Minutes), yesNo(d.HighIntensity), Truncate(d.Notes, notesWidth))
	}
	doc.Tables = append(doc.Tables, drills)
	doc.Tables = append(doc.Tables, attendanceTable(p.Attendance, names))

	minutes := SessionMinutes(s, &p)
	court := Table{Title: "Court survey", Headers: []string{"Player", "RPE", "Legs", "Load", "Notes"}}
	courtIDs := make([]string, 0, len(p.SurveyData))
	for id := range p.SurveyData {
		courtIDs = append(courtIDs, id)
	}
	var rpeSum, legsSum int
	for _, id := range sortedByName(courtIDs, names) {
		r := p.SurveyData[id]
		rpeSum += r.RPE
		legsSum += r.Legs
		court.AddRow(names.Name(id), strconv.Itoa(r.RPE), strconv.Itoa(r.Legs),
			strconv.Itoa(r.RPE*minutes), Truncate(r.Notes, notesWidth))
	}
	if n := len(courtIDs); n > 0 {
		court.AddRow("Average", oneDecimal(float64(rpeSum)/float64(n)), oneDecimal(float64(legsSum)/float64(n)), "", "")
	}
	doc.Tables = append(doc.Tables, court)

	gym := Table{Title: "Gym survey", Headers: []string{"Player", "RPE", "Notes"}}
	gymIDs := make([]string, 0, len(p.GymSurveyData))
	for id := range p.GymSurveyData {
		gymIDs = append(gymIDs, id)
	}
	for _, id := range sortedByName(gymIDs, names) {
		r := p.GymSurveyData[id]
		gym.AddRow(names.Name(id), strconv.Itoa(r.RPE), Truncate(r.Notes, notesWidth))
	}
	doc.Tables = append(doc.Tables, gym)
	return doc
}

func attendanceTable(att map[string]domain.AttendanceRecord, names domain.PlayerNames) Table {
	t := Table{Title: "Attendance", Headers: []string{"Player", "Status", "Reason", "Details"}}
	ids := make([]string, 0, len(att))
	for id := range att {
		ids = append(ids, id)
	}
	present := 0
	for _, id := range sortedByName(ids, names) {
		rec := att[id]
		status := "Absent"
		if rec.Present {
			status = "Present"
			present++
		}
		t.AddRow(names.Name(id), status, rec.Reason, Truncate(rec.ReasonDetails, notesWidth))
	}
	t.AddRow("Total present", fmt.Sprintf("%d/%d", present, len(ids)), "", "")
	return t
}

// PrePractice is the coach's sheet before a session: plan, who is in, and today's wellness.
func PrePractice(s domain.Session, attendance map[string]domain.AttendanceRecord, day *domain.WellnessDay, names domain.PlayerNames) Document {
	doc := Document{Title: "Pre-practice: " + sessionTitle(s)}
	doc.Tables = append(doc.Tables, SessionOverview(s, domain.PracticeMetrics{}))

	parts := Table{Title: "Plan", Headers: []string{"#", "Part", "Minutes", "High intensity", "Notes"}}
	for i, part := range s.Parts {
		parts.AddRow(strconv.Itoa(i+1), part.Label, strconv.Itoa(part.Minutes), yesNo(part.HighIntensity), Truncate(part.Notes, notesWidth))
	}
	doc.Tables = append(doc.Tables, parts)
	doc.Tables = append(doc.Tables, attendanceTable(attendance, names))

	well := Table{Title: "Wellness", Headers: []string{"Player", "Sleep", "Fatigue", "Soreness", "Physio notes"}}
	if day != nil && len(day.Responses) > 0 {
		ids := make([]string, 0, len(day.Responses))
		for id := range day.Responses {
			ids = append(ids, id)
		}
		for _, id := range sortedByName(ids, names) {
			r := day.Responses[id]
			well.AddRow(names.Name(id), strconv.Itoa(r.Sleep), strconv.Itoa(r.Fatigue), strconv.Itoa(r.Soreness), Truncate(r.PhysioNotes, notesWidth))
		}
		well.AddRow("Team average", oneDecimal(day.Averages.Sleep), oneDecimal(day.Averages.Fatigue), oneDecimal(day.Averages.Soreness), "")
	}
	doc.Tables = append(doc.Tables, well)
	return doc
}
