package report

import (
	"sort"
	"strconv"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/gameclock"
)

var exerciseHeaders = []string{"#", "Exercise", "Sets", "Reps", "Weight", "Rest", "Notes"}

func exerciseTable(title string, list []domain.PlanExercise) Table {
	t := Table{Title: title, Headers: exerciseHeaders}
	sorted := append([]domain.PlanExercise(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	for i, e := range sorted {
		rest := ""
		if e.RestSeconds > 0 {
			rest = FormatClock(e.RestSeconds)
		}
		t.AddRow(strconv.Itoa(i+1), e.Name, strconv.Itoa(e.Sets), e.Reps, e.Weight, rest, Truncate(e.Notes, notesWidth))
	}
	return t
}

// GymPlan renders a team plan as one table, an individual plan as one table per player.
func GymPlan(p domain.Plan, names domain.PlayerNames) Document {
	doc := Document{Title: "Gym plan: " + p.Name}
	if p.Type == domain.PlanIndividual {
		players := append([]domain.PlanPlayer(nil), p.Players...)
		sort.SliceStable(players, func(i, j int) bool {
			return names.Name(players[i].PlayerID) < names.Name(players[j].PlayerID)
		})
		for _, pl := range players {
			doc.Tables = append(doc.Tables, exerciseTable(names.Name(pl.PlayerID), pl.Exercises))
		}
		return doc
	}
	doc.Tables = append(doc.Tables, exerciseTable("Exercises", p.Exercises))
	return doc
}

// GameMinutes is the minutes sheet of a live game.
func GameMinutes(title string, s gameclock.Snapshot, names domain.PlayerNames) Document {
	t := Table{Title: "Minutes", Headers: []string{"Player", "Minutes", "Stints"}}
	players := append([]gameclock.PlayerSnapshot(nil), s.Players...)
	sort.SliceStable(players, func(i, j int) bool {
		return names.Name(players[i].PlayerID) < names.Name(players[j].PlayerID)
	})
	for _, p := range players {
		stints := ""
		for i, st := range p.Stints {
			if i > 0 {
				stints += ", "
			}
			end := "on court"
			if st.End != nil {
				end = FormatClock(*st.End)
			}
			stints += "Q" + strconv.Itoa(st.Quarter) + " " + FormatClock(st.Start) + "-" + end
		}
		t.AddRow(names.Name(p.PlayerID), oneDecimal(p.Minutes()), stints)
	}
	return Document{Title: title, Tables: []Table{t}}
}
