package schedule

import (
	"time"

	"github.com/derekprior/matchweek/internal/config"
)

// WeekDate is the play date of a league week.
type WeekDate struct {
	Week    int
	Date    time.Time
	Skipped []config.BlackoutDate // blackouts that pushed this week later
}

// WeekDates lays out weeks play dates one week apart starting at the season
// start date. A week that lands on a blackout date slides to the following
// week.
func WeekDates(cfg *config.Config, weeks int) []WeekDate {
	blackouts := make(map[time.Time]config.BlackoutDate)
	for _, b := range cfg.Season.BlackoutDates {
		blackouts[b.Date.Time] = b
	}

	var dates []WeekDate
	d := cfg.Season.StartDate.Time
	for i := 0; i < weeks; i++ {
		wd := WeekDate{Week: cfg.FirstWeek() + i}
		for {
			b, ok := blackouts[d]
			if !ok {
				break
			}
			wd.Skipped = append(wd.Skipped, b)
			d = d.AddDate(0, 0, 7)
		}
		wd.Date = d
		dates = append(dates, wd)
		d = d.AddDate(0, 0, 7)
	}
	return dates
}
