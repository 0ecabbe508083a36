package excel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/derekprior/matchweek/internal/config"
	"github.com/derekprior/matchweek/internal/matchup"
	"github.com/derekprior/matchweek/internal/schedule"
	"github.com/xuri/excelize/v2"
)

const (
	weekHeader    = "Week"
	dateHeader    = "Date"
	matchHeader   = "Match"
	sitsOutHeader = "Sits Out"
	notesHeader   = "Notes"
	matchSep      = " vs "
)

// FlightSchedule is a flight together with its generated schedule.
type FlightSchedule struct {
	Flight   *config.Flight
	Schedule *matchup.Schedule
}

// Generate creates a workbook with a schedule sheet and a matchup matrix
// sheet per flight.
func Generate(cfg *config.Config, flights []FlightSchedule) (*excelize.File, error) {
	f := excelize.NewFile()

	// Set default font for the workbook
	f.SetDefaultFont("Arial")

	dates := schedule.WeekDates(cfg, cfg.MaxWeeks())
	keepDefault := false
	for _, fs := range flights {
		if strings.EqualFold(fs.Flight.Name, "Sheet1") {
			keepDefault = true
		}
		if err := writeScheduleSheet(f, fs, dates); err != nil {
			return nil, fmt.Errorf("writing %s schedule: %w", fs.Flight.Name, err)
		}
		if err := writeMatrixSheet(f, fs); err != nil {
			return nil, fmt.Errorf("writing %s matrix: %w", fs.Flight.Name, err)
		}
	}

	if !keepDefault {
		f.DeleteSheet("Sheet1")
	}
	return f, nil
}

// MatrixSheet returns the name of a flight's matrix sheet.
func MatrixSheet(flight string) string {
	return flight + config.MatrixSuffix
}

func headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	return style
}

func writeScheduleSheet(f *excelize.File, fs FlightSchedule, dates []schedule.WeekDate) error {
	sheet := fs.Flight.Name
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	names := make(map[matchup.PlayerID]string)
	for _, p := range fs.Flight.Roster() {
		names[p.ID] = p.Name
	}
	name := func(id matchup.PlayerID) string {
		if n, ok := names[id]; ok {
			return n
		}
		return string(id)
	}

	perRound := len(fs.Flight.Players) / 2
	odd := len(fs.Flight.Players)%2 == 1

	// Headers: Week, Date, Match 1..k, [Sits Out], Notes
	headers := []string{weekHeader, dateHeader}
	for i := 1; i <= perRound; i++ {
		headers = append(headers, fmt.Sprintf("%s %d", matchHeader, i))
	}
	if odd {
		headers = append(headers, sitsOutHeader)
	}
	headers = append(headers, notesHeader)
	sitsOutCol, notesCol := len(headers)-1, len(headers)
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}
	if style := headerStyle(f); style != 0 {
		f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(headers), 1), style)
	}

	dateFor := make(map[int]string)
	notesFor := make(map[int]string)
	for _, d := range dates {
		dateFor[d.Week] = d.Date.Format("01/02/2006")
		notesFor[d.Week] = skippedNote(d.Skipped)
	}

	cellStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 14, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for i, round := range fs.Schedule.Rounds {
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), round.Week)
		f.SetCellValue(sheet, cellRef(2, row), dateFor[round.Week])
		for j, p := range round.Pairings {
			f.SetCellValue(sheet, cellRef(j+3, row), name(p.A)+matchSep+name(p.B))
		}
		if odd && round.SitsOut != "" {
			f.SetCellValue(sheet, cellRef(sitsOutCol, row), name(round.SitsOut))
		}
		if note := notesFor[round.Week]; note != "" {
			f.SetCellValue(sheet, cellRef(notesCol, row), note)
		}
		if cellStyle != 0 {
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), cellStyle)
		}
	}

	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 14)
	f.SetColWidth(sheet, "C", colLetter(len(headers)-1), 32)
	f.SetColWidth(sheet, colLetter(notesCol), colLetter(notesCol), 40)
	return nil
}

// skippedNote describes the blackout dates a week slid past.
func skippedNote(skipped []config.BlackoutDate) string {
	if len(skipped) == 0 {
		return ""
	}
	parts := make([]string, len(skipped))
	for i, b := range skipped {
		parts[i] = "No play " + b.Date.Time.Format("01/02")
		if b.Reason != "" {
			parts[i] += " (" + b.Reason + ")"
		}
	}
	return strings.Join(parts, "; ")
}

func writeMatrixSheet(f *excelize.File, fs FlightSchedule) error {
	sheet := MatrixSheet(fs.Flight.Name)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	roster := fs.Flight.Roster()
	index := make(map[matchup.PlayerID]int, len(roster))
	for i, p := range roster {
		index[p.ID] = i
		f.SetCellValue(sheet, cellRef(i+2, 1), p.Name)
		f.SetCellValue(sheet, cellRef(1, i+2), p.Name)
	}
	if style := headerStyle(f); style != 0 {
		f.SetCellStyle(sheet, cellRef(2, 1), cellRef(len(roster)+1, 1), style)
		f.SetCellStyle(sheet, cellRef(1, 2), cellRef(1, len(roster)+1), style)
	}

	// (row, col) -> weeks the two players meet
	type cell struct{ r, c int }
	weeks := make(map[cell][]int)
	for _, round := range fs.Schedule.Rounds {
		for _, p := range round.Pairings {
			a, okA := index[p.A]
			b, okB := index[p.B]
			if !okA || !okB {
				continue
			}
			weeks[cell{a, b}] = append(weeks[cell{a, b}], round.Week)
			weeks[cell{b, a}] = append(weeks[cell{b, a}], round.Week)
		}
	}

	for i := range roster {
		for j := range roster {
			ref := cellRef(j+2, i+2)
			if i == j {
				f.SetCellValue(sheet, ref, "-")
				continue
			}
			ws := weeks[cell{i, j}]
			switch len(ws) {
			case 0:
			case 1:
				f.SetCellValue(sheet, ref, ws[0])
			default:
				sort.Ints(ws)
				parts := make([]string, len(ws))
				for k, w := range ws {
					parts[k] = strconv.Itoa(w)
				}
				f.SetCellValue(sheet, ref, strings.Join(parts, ","))
			}
		}
	}

	// Conditional formatting: pairs that meet more than once get light red
	last := cellRef(len(roster)+1, len(roster)+1)
	redFill, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
	})
	f.SetConditionalFormat(sheet, "B2:"+last, []excelize.ConditionalFormatOptions{
		{
			Type:     "formula",
			Criteria: `ISNUMBER(FIND(",",B2))`,
			Format:   &redFill,
		},
	})

	f.SetColWidth(sheet, "A", colLetter(len(roster)+1), 16)
	return nil
}

// ReadSchedule parses a flight's schedule sheet back into a schedule. Cells
// are resolved through the flight roster by name or id; unknown players are
// kept verbatim so verification can report them.
func ReadSchedule(f *excelize.File, flight *config.Flight) (*matchup.Schedule, error) {
	rows, err := f.GetRows(flight.Name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", flight.Name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty", flight.Name)
	}

	weekCol, sitsOutCol := -1, -1
	var matchCols []int
	for i, h := range rows[0] {
		switch {
		case h == weekHeader:
			weekCol = i
		case h == sitsOutHeader:
			sitsOutCol = i
		case strings.HasPrefix(h, matchHeader):
			matchCols = append(matchCols, i)
		}
	}
	if weekCol < 0 || len(matchCols) == 0 {
		return nil, fmt.Errorf("%s: missing %q or %q columns", flight.Name, weekHeader, matchHeader)
	}

	resolve := func(ref string) matchup.PlayerID {
		ref = strings.TrimSpace(ref)
		if id, ok := flight.Resolve(ref); ok {
			return id
		}
		return matchup.PlayerID(ref)
	}

	sched := &matchup.Schedule{Players: matchup.IDs(flight.Roster())}
	for _, row := range rows[1:] {
		if weekCol >= len(row) {
			continue
		}
		week, err := strconv.Atoi(strings.TrimSpace(row[weekCol]))
		if err != nil {
			continue // not a week row
		}

		round := matchup.Round{Week: week}
		for _, c := range matchCols {
			if c >= len(row) || row[c] == "" {
				continue
			}
			a, b, ok := parseMatchCell(row[c])
			if !ok {
				return nil, fmt.Errorf("%s week %d: cannot parse matchup %q", flight.Name, week, row[c])
			}
			round.Pairings = append(round.Pairings, matchup.Pairing{A: resolve(a), B: resolve(b)})
		}
		if sitsOutCol >= 0 && sitsOutCol < len(row) && row[sitsOutCol] != "" {
			round.SitsOut = resolve(row[sitsOutCol])
		}
		if len(sched.Rounds) == 0 || week < sched.FirstWeek {
			sched.FirstWeek = week
		}
		sched.Rounds = append(sched.Rounds, round)
	}
	return sched, nil
}

// parseMatchCell parses "A vs B" and returns (a, b, true).
func parseMatchCell(cell string) (a, b string, ok bool) {
	a, b, ok = strings.Cut(cell, matchSep)
	if !ok || strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return "", "", false
	}
	return a, b, true
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
