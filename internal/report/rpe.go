package report

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"courtside/team-ops/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxRangeDays bounds an RPE report's date range.
const MaxRangeDays = 31

var ErrInvalidRange = errors.New("invalid date range")

// RPECell is one player's court-survey RPE values for one day and their summed session load.
type RPECell struct {
	RPE  []int `json:"rpe"`
	Load int   `json:"load"`
}

type RPEPlayerRow struct {
	PlayerID  string             `json:"playerId"`
	Name      string             `json:"name"`
	Days      map[string]RPECell `json:"days"`
	TotalLoad int                `json:"totalLoad"`
	AvgRPE    float64            `json:"avgRpe"`
}

// RPEReport is the weekly load grid. It is always rebuilt from the sessions in range.
type RPEReport struct {
	From    string         `json:"from"`
	To      string         `json:"to"`
	Days    []string       `json:"days"`
	Players []RPEPlayerRow `json:"players"`
}

// DaysBetween lists the dates from..to inclusive.
func DaysBetween(from, to string) ([]string, error) {
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return nil, ErrInvalidRange
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil || end.Before(start) {
		return nil, ErrInvalidRange
	}
	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format("2006-01-02"))
		if len(days) > MaxRangeDays {
			return nil, ErrInvalidRange
		}
	}
	return days, nil
}

// RPEWeekly computes per-player per-day RPE and session load (rpe * session minutes).
func RPEWeekly(sessions []domain.Session, practices []domain.PracticeData, names domain.PlayerNames, from, to string) (RPEReport, error) {
	days, err := DaysBetween(from, to)
	if err != nil {
		return RPEReport{}, err
	}
	byID := make(map[primitive.ObjectID]*domain.PracticeData, len(practices))
	for i := range practices {
		byID[practices[i].SessionID] = &practices[i]
	}

	rows := map[string]*RPEPlayerRow{}
	rpeCount := map[string]int{}
	rpeSum := map[string]int{}
	for _, s := range sessions {
		if s.Date < from || s.Date > to {
			continue
		}
		p, ok := byID[s.ID]
		if !ok {
			continue
		}
		minutes := SessionMinutes(s, p)
		for id, resp := range p.SurveyData {
			row, ok := rows[id]
			if !ok {
				row = &RPEPlayerRow{PlayerID: id, Name: names.Name(id), Days: map[string]RPECell{}}
				rows[id] = row
			}
			cell := row.Days[s.Date]
			cell.RPE = append(cell.RPE, resp.RPE)
			cell.Load += resp.RPE * minutes
			row.Days[s.Date] = cell
			row.TotalLoad += resp.RPE * minutes
			rpeCount[id]++
			rpeSum[id] += resp.RPE
		}
	}

	ids := make([]string, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	out := RPEReport{From: from, To: to, Days: days, Players: make([]RPEPlayerRow, 0, len(ids))}
	for _, id := range sortedByName(ids, names) {
		row := rows[id]
		row.AvgRPE = domain.Round1(float64(rpeSum[id]) / float64(rpeCount[id]))
		out.Players = append(out.Players, *row)
	}
	return out, nil
}

func dayHeader(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Mon 01-02")
}

// Document renders the report as an RPE grid and a load grid.
func (r RPEReport) Document() Document {
	headers := []string{"Player"}
	for _, d := range r.Days {
		headers = append(headers, dayHeader(d))
	}
	rpe := Table{Title: "Session RPE", Headers: append(append([]string(nil), headers...), "Avg RPE")}
	load := Table{Title: "Session load", Headers: append(append([]string(nil), headers...), "Total")}

	dayLoad := make([]int, len(r.Days))
	for _, p := range r.Players {
		rpeRow := []string{p.Name}
		loadRow := []string{p.Name}
		for i, d := range r.Days {
			cell, ok := p.Days[d]
			if !ok {
				rpeRow = append(rpeRow, "")
				loadRow = append(loadRow, "")
				continue
			}
			vals := make([]string, len(cell.RPE))
			for j, v := range cell.RPE {
				vals[j] = strconv.Itoa(v)
			}
			rpeRow = append(rpeRow, strings.Join(vals, "/"))
			loadRow = append(loadRow, strconv.Itoa(cell.Load))
			dayLoad[i] += cell.Load
		}
		rpe.AddRow(append(rpeRow, oneDecimal(p.AvgRPE))...)
		load.AddRow(append(loadRow, strconv.Itoa(p.TotalLoad))...)
	}
	if len(r.Players) > 0 {
		team := []string{"Team total"}
		total := 0
		for _, l := range dayLoad {
			team = append(team, strconv.Itoa(l))
			total += l
		}
		load.AddRow(append(team, strconv.Itoa(total))...)
	}
	return Document{Title: "RPE report " + r.From + " to " + r.To, Tables: []Table{rpe, load}}
}
