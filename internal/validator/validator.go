package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/derekprior/matchweek/internal/matchup"
)

// Violation is a single finding rendered for display.
type Violation struct {
	Week    int    // 0 when the finding is not tied to one week
	Type    string // "error" or "warning"
	Message string
}

// Duplicate is a pairing that appears in more than one week.
type Duplicate struct {
	Pairing matchup.Pairing
	Weeks   []int
}

// DoubleBooking is a player scheduled more than once in a single week.
type DoubleBooking struct {
	Week   int
	Player matchup.PlayerID
	Count  int
}

// InvalidPairing is a pairing that cannot exist in the player set.
type InvalidPairing struct {
	Week    int
	Pairing matchup.Pairing
	Reason  string
}

// RoundSize is a week that does not hold a full round of pairings.
type RoundSize struct {
	Week     int
	Pairings int
	Want     int
}

// SitOutMismatch is a week whose declared sit-out disagrees with its
// pairings. Actual is empty when no single player is left out.
type SitOutMismatch struct {
	Week     int
	Declared matchup.PlayerID
	Actual   matchup.PlayerID
}

// ByeCount is a player who does not sit out exactly once in a complete
// schedule for an odd number of players.
type ByeCount struct {
	Player matchup.PlayerID
	Weeks  []int
}

// Report is the outcome of verifying a schedule.
type Report struct {
	Valid    bool
	Complete bool
	Partial  bool

	Expected int // unique pairings over the player set
	Distinct int // unique valid pairings found

	Missing        []matchup.Pairing
	Duplicates     []Duplicate
	DoubleBookings []DoubleBooking
	Invalid        []InvalidPairing
	RoundSizes     []RoundSize
	SitOutErrors   []SitOutMismatch
	ByeCounts      []ByeCount

	Games   map[matchup.PlayerID]int
	SitOuts map[matchup.PlayerID][]int
}

// Verify checks that sched is a perfect round robin over players: every
// pairing exactly once and nobody booked twice in a week.
func Verify(players []matchup.PlayerID, sched *matchup.Schedule) Report {
	return verify(players, sched, false)
}

// VerifyPartial checks a bounded schedule. Missing pairings are still
// reported but do not make the schedule invalid.
func VerifyPartial(players []matchup.PlayerID, sched *matchup.Schedule) Report {
	return verify(players, sched, true)
}

func verify(players []matchup.PlayerID, sched *matchup.Schedule, partial bool) Report {
	r := Report{
		Partial: partial,
		Games:   make(map[matchup.PlayerID]int, len(players)),
		SitOuts: make(map[matchup.PlayerID][]int, len(players)),
	}

	odd := len(players)%2 == 1
	perRound := len(players) / 2

	known := make(map[matchup.PlayerID]bool, len(players))
	for _, p := range players {
		known[p] = true
		r.Games[p] = 0
	}
	universe := matchup.AllPairings(dedupe(players))
	r.Expected = len(universe)

	var rounds []matchup.Round
	if sched != nil {
		rounds = sched.Rounds
	}

	seen := make(map[matchup.Pairing][]int)
	for _, round := range rounds {
		booked := make(map[matchup.PlayerID]int)
		for _, raw := range round.Pairings {
			p := matchup.NewPairing(raw.A, raw.B)
			if p.A == p.B {
				r.Invalid = append(r.Invalid, InvalidPairing{Week: round.Week, Pairing: p, Reason: "player paired with itself"})
				booked[p.A]++
				continue
			}
			if reason := unknownReason(p, known); reason != "" {
				r.Invalid = append(r.Invalid, InvalidPairing{Week: round.Week, Pairing: p, Reason: reason})
			} else {
				seen[p] = append(seen[p], round.Week)
			}
			booked[p.A]++
			booked[p.B]++
		}

		for id, n := range booked {
			if known[id] {
				r.Games[id] += n
			}
			if n > 1 {
				r.DoubleBookings = append(r.DoubleBookings, DoubleBooking{Week: round.Week, Player: id, Count: n})
			}
		}
		if len(round.Pairings) != perRound {
			r.RoundSizes = append(r.RoundSizes, RoundSize{Week: round.Week, Pairings: len(round.Pairings), Want: perRound})
		}

		var idle []matchup.PlayerID
		for _, id := range players {
			if booked[id] == 0 {
				idle = append(idle, id)
			}
		}
		if odd {
			for _, id := range idle {
				r.SitOuts[id] = append(r.SitOuts[id], round.Week)
			}
		}
		if m, ok := checkSitOut(round, odd, idle, booked); !ok {
			r.SitOutErrors = append(r.SitOutErrors, m)
		}
	}

	if odd && !partial {
		for _, id := range players {
			if weeks := r.SitOuts[id]; len(weeks) != 1 {
				r.ByeCounts = append(r.ByeCounts, ByeCount{Player: id, Weeks: weeks})
			}
		}
	}

	for _, p := range universe {
		weeks, ok := seen[p]
		if !ok {
			r.Missing = append(r.Missing, p)
			continue
		}
		r.Distinct++
		if len(weeks) > 1 {
			sorted := append([]int(nil), weeks...)
			sort.Ints(sorted)
			r.Duplicates = append(r.Duplicates, Duplicate{Pairing: p, Weeks: sorted})
		}
	}

	sort.Slice(r.DoubleBookings, func(i, j int) bool {
		if r.DoubleBookings[i].Week != r.DoubleBookings[j].Week {
			return r.DoubleBookings[i].Week < r.DoubleBookings[j].Week
		}
		return r.DoubleBookings[i].Player < r.DoubleBookings[j].Player
	})

	r.Complete = len(r.Missing) == 0
	r.Valid = len(r.Duplicates) == 0 && len(r.DoubleBookings) == 0 && len(r.Invalid) == 0 &&
		len(r.RoundSizes) == 0 && len(r.SitOutErrors) == 0 && len(r.ByeCounts) == 0
	if !partial {
		r.Valid = r.Valid && r.Complete
	}
	return r
}

// checkSitOut compares a round's declared sit-out with the players left
// idle. Even rounds must declare none; odd rounds must name the one idle
// player.
func checkSitOut(round matchup.Round, odd bool, idle []matchup.PlayerID, booked map[matchup.PlayerID]int) (SitOutMismatch, bool) {
	m := SitOutMismatch{Week: round.Week, Declared: round.SitsOut}
	if len(idle) == 1 {
		m.Actual = idle[0]
	}
	if !odd {
		return m, round.SitsOut == ""
	}
	if round.SitsOut == "" || booked[round.SitsOut] > 0 {
		return m, false
	}
	return m, m.Actual == round.SitsOut
}

func unknownReason(p matchup.Pairing, known map[matchup.PlayerID]bool) string {
	var unknown []string
	for _, id := range []matchup.PlayerID{p.A, p.B} {
		if !known[id] {
			unknown = append(unknown, string(id))
		}
	}
	if len(unknown) == 0 {
		return ""
	}
	return "unknown player " + strings.Join(unknown, ", ")
}

func dedupe(players []matchup.PlayerID) []matchup.PlayerID {
	seen := make(map[matchup.PlayerID]bool, len(players))
	out := make([]matchup.PlayerID, 0, len(players))
	for _, p := range players {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// Violations renders the report's findings. Missing pairings are errors for
// complete schedules and warnings for partial ones.
func (r Report) Violations() []Violation {
	var violations []Violation

	for _, ip := range r.Invalid {
		violations = append(violations, Violation{
			Week:    ip.Week,
			Type:    "error",
			Message: fmt.Sprintf("week %d: %s (%s)", ip.Week, ip.Pairing, ip.Reason),
		})
	}
	for _, db := range r.DoubleBookings {
		violations = append(violations, Violation{
			Week:    db.Week,
			Type:    "error",
			Message: fmt.Sprintf("week %d: %s is booked %d times", db.Week, db.Player, db.Count),
		})
	}
	for _, rs := range r.RoundSizes {
		violations = append(violations, Violation{
			Week:    rs.Week,
			Type:    "error",
			Message: fmt.Sprintf("week %d: %d pairings, a full round has %d", rs.Week, rs.Pairings, rs.Want),
		})
	}
	for _, m := range r.SitOutErrors {
		var msg string
		switch {
		case m.Declared == "":
			msg = fmt.Sprintf("week %d: no sit-out recorded", m.Week)
		case m.Actual == "":
			msg = fmt.Sprintf("week %d: %s is recorded as sitting out, but no single player sits out", m.Week, m.Declared)
		default:
			msg = fmt.Sprintf("week %d: %s is recorded as sitting out, but %s does", m.Week, m.Declared, m.Actual)
		}
		violations = append(violations, Violation{Week: m.Week, Type: "error", Message: msg})
	}
	for _, b := range r.ByeCounts {
		violations = append(violations, Violation{
			Type:    "error",
			Message: fmt.Sprintf("%s sits out %d times, every player sits out once", b.Player, len(b.Weeks)),
		})
	}
	for _, d := range r.Duplicates {
		weeks := make([]string, len(d.Weeks))
		for i, w := range d.Weeks {
			weeks[i] = fmt.Sprint(w)
		}
		violations = append(violations, Violation{
			Week:    d.Weeks[0],
			Type:    "error",
			Message: fmt.Sprintf("%s plays %d times: weeks %s", d.Pairing, len(d.Weeks), strings.Join(weeks, ", ")),
		})
	}

	missingType := "error"
	if r.Partial {
		missingType = "warning"
	}
	for _, p := range r.Missing {
		violations = append(violations, Violation{
			Type:    missingType,
			Message: fmt.Sprintf("%s is never scheduled", p),
		})
	}

	return violations
}
