package schedule

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/derekprior/matchweek/internal/matchup"
	"github.com/derekprior/matchweek/internal/validator"
)

// ErrNoFeasibleSchedule reports that the bounded search found no way to
// complete the open weeks.
var ErrNoFeasibleSchedule = errors.New("no feasible schedule")

const (
	DefaultMaxRestarts         = 20
	DefaultMaxAttemptsPerRound = 5000
)

// NoFeasibleError names the week the search could not complete and the
// players left without an opponent in its fullest partial round.
type NoFeasibleError struct {
	Week       int
	RoundIndex int // index into the open weeks
	Players    []matchup.PlayerID
	Restarts   int
}

func (e *NoFeasibleError) Error() string {
	ids := make([]string, len(e.Players))
	for i, p := range e.Players {
		ids[i] = string(p)
	}
	return fmt.Sprintf("%s: week %d could not be filled after %d restarts; unpaired players: %s",
		ErrNoFeasibleSchedule, e.Week, e.Restarts, strings.Join(ids, ", "))
}

func (e *NoFeasibleError) Unwrap() error {
	return ErrNoFeasibleSchedule
}

// Request is a single scheduling request. Zero search bounds take the
// defaults; a nil Logger discards diagnostics.
type Request struct {
	Players   []matchup.PlayerID
	Weeks     int
	FirstWeek int
	Fixed     []matchup.FixedRound
	Seed      int64

	AllowByes bool
	Partial   bool

	MaxRestarts         int
	MaxAttemptsPerRound int

	Logger *slog.Logger
}

// Generate builds a round-robin schedule. The circle method is used when the
// fixed weeks line up with one of its rotations; anything else goes through
// the backtracking search. The result is verified before it is returned, and
// a week is never returned partially filled.
func Generate(req Request) (*matchup.Schedule, error) {
	log := req.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	u, err := matchup.BuildUniverse(req.Players, matchup.Options{
		Weeks:     req.Weeks,
		FirstWeek: req.FirstWeek,
		Fixed:     req.Fixed,
		AllowByes: req.AllowByes,
		Partial:   req.Partial,
	})
	if err != nil {
		return nil, err
	}
	log.Debug("pairing universe built",
		"players", len(u.Players), "weeks", u.Weeks, "fixed", len(u.Fixed),
		"pool", len(u.Pool), "open_weeks", len(u.OpenWeeks))

	rounds, ok := alignCircle(u)
	if ok {
		log.Debug("using circle method")
	} else {
		restarts := req.MaxRestarts
		if restarts <= 0 {
			restarts = DefaultMaxRestarts
		}
		attempts := req.MaxAttemptsPerRound
		if attempts <= 0 {
			attempts = DefaultMaxAttemptsPerRound
		}
		log.Debug("fixed weeks do not match a circle rotation; searching", "restarts", restarts, "attempts", attempts)

		rounds, err = search(u, req.Seed, restarts, attempts, log)
		if err != nil {
			return nil, err
		}
	}

	sched := &matchup.Schedule{
		Players:   append([]matchup.PlayerID(nil), u.Players...),
		FirstWeek: u.FirstWeek,
		Partial:   u.Partial,
	}
	for w := u.FirstWeek; w < u.FirstWeek+u.Weeks; w++ {
		sched.Rounds = append(sched.Rounds, rounds[w])
	}

	report := check(sched)
	if !report.Valid {
		v := report.Violations()
		return nil, fmt.Errorf("generated schedule failed verification: %d findings, first: %s", len(v), v[0].Message)
	}
	return sched, nil
}

func check(sched *matchup.Schedule) validator.Report {
	if sched.Partial {
		return validator.VerifyPartial(sched.Players, sched)
	}
	return validator.Verify(sched.Players, sched)
}
