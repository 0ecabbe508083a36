package schedule

import (
	"testing"
	"time"

	"github.com/derekprior/matchweek/internal/config"
)

func date(s string) config.Date {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return config.Date{Time: t}
}

func TestWeekDates(t *testing.T) {
	t.Run("weekly from the start date", func(t *testing.T) {
		cfg := &config.Config{Season: config.Season{StartDate: date("2026-04-07")}}
		dates := WeekDates(cfg, 3)

		want := []string{"2026-04-07", "2026-04-14", "2026-04-21"}
		if len(dates) != len(want) {
			t.Fatalf("dates = %d, want %d", len(dates), len(want))
		}
		for i, d := range dates {
			if d.Week != i+1 {
				t.Errorf("dates[%d].Week = %d, want %d", i, d.Week, i+1)
			}
			if got := d.Date.Format("2006-01-02"); got != want[i] {
				t.Errorf("week %d date = %s, want %s", d.Week, got, want[i])
			}
		}
	})

	t.Run("blackout pushes the rest of the season", func(t *testing.T) {
		cfg := &config.Config{Season: config.Season{
			StartDate: date("2026-05-12"),
			FirstWeek: 6,
			BlackoutDates: []config.BlackoutDate{
				{Date: date("2026-05-19"), Reason: "Course aeration"},
				{Date: date("2026-05-26"), Reason: "Memorial Day week"},
			},
		}}
		dates := WeekDates(cfg, 3)

		want := []string{"2026-05-12", "2026-06-02", "2026-06-09"}
		for i, d := range dates {
			if d.Week != 6+i {
				t.Errorf("dates[%d].Week = %d, want %d", i, d.Week, 6+i)
			}
			if got := d.Date.Format("2006-01-02"); got != want[i] {
				t.Errorf("week %d date = %s, want %s", d.Week, got, want[i])
			}
		}
		if len(dates[1].Skipped) != 2 {
			t.Errorf("week 7 skipped %d blackouts, want 2", len(dates[1].Skipped))
		}
		if len(dates[0].Skipped) != 0 || len(dates[2].Skipped) != 0 {
			t.Error("only week 7 should record skipped blackouts")
		}
	})

	t.Run("blackout off the weekly cadence is ignored", func(t *testing.T) {
		cfg := &config.Config{Season: config.Season{
			StartDate:     date("2026-04-07"),
			BlackoutDates: []config.BlackoutDate{{Date: date("2026-04-08")}},
		}}
		dates := WeekDates(cfg, 2)
		if got := dates[1].Date.Format("2006-01-02"); got != "2026-04-14" {
			t.Errorf("week 2 date = %s, want 2026-04-14", got)
		}
	})
}
