package validator

import (
	"reflect"
	"strings"
	"testing"

	"github.com/derekprior/matchweek/internal/matchup"
)

func p(a, b string) matchup.Pairing {
	return matchup.Pairing{A: matchup.PlayerID(a), B: matchup.PlayerID(b)}
}

func four() []matchup.PlayerID {
	return []matchup.PlayerID{"a", "b", "c", "d"}
}

func roundRobin() *matchup.Schedule {
	return &matchup.Schedule{
		Players:   four(),
		FirstWeek: 1,
		Rounds: []matchup.Round{
			{Week: 1, Pairings: []matchup.Pairing{p("a", "b"), p("c", "d")}},
			{Week: 2, Pairings: []matchup.Pairing{p("a", "c"), p("b", "d")}},
			{Week: 3, Pairings: []matchup.Pairing{p("a", "d"), p("b", "c")}},
		},
	}
}

func countType(violations []Violation, typ string) int {
	n := 0
	for _, v := range violations {
		if v.Type == typ {
			n++
		}
	}
	return n
}

func TestVerifyValidSchedule(t *testing.T) {
	report := Verify(four(), roundRobin())

	if !report.Valid || !report.Complete {
		t.Fatalf("valid = %v, complete = %v: %+v", report.Valid, report.Complete, report.Violations())
	}
	if report.Expected != 6 || report.Distinct != 6 {
		t.Errorf("expected/distinct = %d/%d, want 6/6", report.Expected, report.Distinct)
	}
	for _, id := range four() {
		if report.Games[id] != 3 {
			t.Errorf("games[%s] = %d, want 3", id, report.Games[id])
		}
	}
	if len(report.Violations()) != 0 {
		t.Errorf("unexpected violations: %+v", report.Violations())
	}
}

func TestVerifyOrientationDoesNotMatter(t *testing.T) {
	sched := roundRobin()
	sched.Rounds[0].Pairings[0] = p("b", "a")
	sched.Rounds[2].Pairings[1] = p("c", "b")

	if report := Verify(four(), sched); !report.Valid {
		t.Errorf("reversed pairings should still verify: %+v", report.Violations())
	}
}

func TestVerifyDuplicatePairing(t *testing.T) {
	sched := roundRobin()
	sched.Rounds[2].Pairings = []matchup.Pairing{p("b", "a"), p("c", "d")}

	report := Verify(four(), sched)
	if report.Valid {
		t.Fatal("schedule with a repeated pairing should be invalid")
	}

	t.Run("names the pairing and its weeks", func(t *testing.T) {
		want := []Duplicate{
			{Pairing: p("a", "b"), Weeks: []int{1, 3}},
			{Pairing: p("c", "d"), Weeks: []int{1, 3}},
		}
		if !reflect.DeepEqual(report.Duplicates, want) {
			t.Errorf("duplicates = %+v, want %+v", report.Duplicates, want)
		}
	})

	t.Run("reports the pairings that never happen", func(t *testing.T) {
		want := []matchup.Pairing{p("a", "d"), p("b", "c")}
		if !reflect.DeepEqual(report.Missing, want) {
			t.Errorf("missing = %v, want %v", report.Missing, want)
		}
		if report.Complete {
			t.Error("report should not be complete")
		}
	})

	t.Run("violations are errors", func(t *testing.T) {
		v := report.Violations()
		if countType(v, "error") != 4 {
			t.Errorf("errors = %d, want 4: %+v", countType(v, "error"), v)
		}
		if !strings.Contains(v[0].Message, "weeks 1, 3") {
			t.Errorf("first violation %q should list weeks 1, 3", v[0].Message)
		}
	})
}

func TestVerifyDoubleBooking(t *testing.T) {
	sched := roundRobin()
	sched.Rounds[1].Pairings = []matchup.Pairing{p("a", "c"), p("a", "d")}

	report := Verify(four(), sched)
	if report.Valid {
		t.Fatal("double-booked week should be invalid")
	}
	want := []DoubleBooking{{Week: 2, Player: "a", Count: 2}}
	if !reflect.DeepEqual(report.DoubleBookings, want) {
		t.Errorf("double bookings = %+v, want %+v", report.DoubleBookings, want)
	}
	if report.Games["a"] != 4 {
		t.Errorf("games[a] = %d, want 4", report.Games["a"])
	}
}

func TestVerifyInvalidPairings(t *testing.T) {
	tests := []struct {
		name    string
		pairing matchup.Pairing
		reason  string
	}{
		{name: "self pairing", pairing: p("a", "a"), reason: "itself"},
		{name: "unknown player", pairing: p("a", "zed"), reason: "unknown player zed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched := roundRobin()
			sched.Rounds = append(sched.Rounds, matchup.Round{Week: 4, Pairings: []matchup.Pairing{tt.pairing}})

			report := Verify(four(), sched)
			if report.Valid {
				t.Fatal("schedule should be invalid")
			}
			if len(report.Invalid) != 1 {
				t.Fatalf("invalid = %+v, want one entry", report.Invalid)
			}
			if report.Invalid[0].Week != 4 || !strings.Contains(report.Invalid[0].Reason, tt.reason) {
				t.Errorf("invalid = %+v, want week 4 with reason containing %q", report.Invalid[0], tt.reason)
			}
			if report.Distinct != 6 {
				t.Errorf("distinct = %d, want 6", report.Distinct)
			}
		})
	}
}

func TestVerifyOddSitOuts(t *testing.T) {
	players := []matchup.PlayerID{"a", "b", "c"}
	sched := &matchup.Schedule{
		Players: players,
		Rounds: []matchup.Round{
			{Week: 1, Pairings: []matchup.Pairing{p("a", "b")}, SitsOut: "c"},
			{Week: 2, Pairings: []matchup.Pairing{p("a", "c")}, SitsOut: "b"},
			{Week: 3, Pairings: []matchup.Pairing{p("b", "c")}, SitsOut: "a"},
		},
	}

	report := Verify(players, sched)
	if !report.Valid {
		t.Fatalf("report invalid: %+v", report.Violations())
	}
	want := map[matchup.PlayerID][]int{"a": {3}, "b": {2}, "c": {1}}
	if !reflect.DeepEqual(report.SitOuts, want) {
		t.Errorf("sit-outs = %v, want %v", report.SitOuts, want)
	}
}

func TestVerifyPartial(t *testing.T) {
	sched := roundRobin()
	sched.Rounds = sched.Rounds[:2]
	sched.Partial = true

	t.Run("missing pairings are warnings", func(t *testing.T) {
		report := VerifyPartial(four(), sched)
		if !report.Valid {
			t.Fatalf("partial report invalid: %+v", report.Violations())
		}
		if report.Complete {
			t.Error("partial schedule should not be complete")
		}
		v := report.Violations()
		if countType(v, "warning") != 2 || countType(v, "error") != 0 {
			t.Errorf("violations = %+v, want 2 warnings", v)
		}
	})

	t.Run("complete verification rejects it", func(t *testing.T) {
		report := Verify(four(), sched)
		if report.Valid {
			t.Error("incomplete schedule should fail complete verification")
		}
		if countType(report.Violations(), "error") != 2 {
			t.Errorf("violations = %+v, want 2 errors", report.Violations())
		}
	})

	t.Run("duplicates still fail", func(t *testing.T) {
		dup := roundRobin()
		dup.Rounds = []matchup.Round{dup.Rounds[0], dup.Rounds[0]}
		dup.Rounds[1].Week = 2
		if report := VerifyPartial(four(), dup); report.Valid {
			t.Error("partial schedule with repeats should be invalid")
		}
	})
}

func TestVerifyNilSchedule(t *testing.T) {
	report := Verify(four(), nil)
	if report.Valid {
		t.Error("empty schedule should not verify as complete")
	}
	if len(report.Missing) != 6 {
		t.Errorf("missing = %d, want 6", len(report.Missing))
	}
	if report.Games["a"] != 0 {
		t.Errorf("games[a] = %d, want 0", report.Games["a"])
	}
}

func TestVerifyOneDuplicateOneMissing(t *testing.T) {
	sched := &matchup.Schedule{
		Players: four(),
		Rounds: []matchup.Round{
			{Week: 1, Pairings: []matchup.Pairing{p("a", "b"), p("c", "d")}},
			{Week: 2, Pairings: []matchup.Pairing{p("a", "c"), p("b", "d")}},
			{Week: 3, Pairings: []matchup.Pairing{p("a", "d")}},
			{Week: 4, Pairings: []matchup.Pairing{p("b", "a")}},
		},
	}

	report := Verify(four(), sched)
	wantDup := []Duplicate{{Pairing: p("a", "b"), Weeks: []int{1, 4}}}
	if !reflect.DeepEqual(report.Duplicates, wantDup) {
		t.Errorf("duplicates = %+v, want %+v", report.Duplicates, wantDup)
	}
	if want := []matchup.Pairing{p("b", "c")}; !reflect.DeepEqual(report.Missing, want) {
		t.Errorf("missing = %v, want %v", report.Missing, want)
	}
	if len(report.DoubleBookings) != 0 || len(report.Invalid) != 0 {
		t.Errorf("unexpected findings: %+v %+v", report.DoubleBookings, report.Invalid)
	}
}

func TestVerifyIdempotent(t *testing.T) {
	sched := roundRobin()
	sched.Rounds[2].Pairings = []matchup.Pairing{p("a", "b"), p("a", "d")}

	first := Verify(four(), sched)
	second := Verify(four(), sched)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("reports differ:\n%+v\n%+v", first, second)
	}
}

func TestVerifyRoundSize(t *testing.T) {
	t.Run("underfilled weeks spread the round robin out", func(t *testing.T) {
		sched := &matchup.Schedule{
			Players: four(),
			Rounds: []matchup.Round{
				{Week: 1, Pairings: []matchup.Pairing{p("a", "b"), p("c", "d")}},
				{Week: 2, Pairings: []matchup.Pairing{p("a", "c"), p("b", "d")}},
				{Week: 3, Pairings: []matchup.Pairing{p("a", "d")}},
				{Week: 4, Pairings: []matchup.Pairing{p("b", "c")}},
			},
		}

		report := Verify(four(), sched)
		if report.Valid {
			t.Fatal("schedule with underfilled weeks should be invalid")
		}
		want := []RoundSize{{Week: 3, Pairings: 1, Want: 2}, {Week: 4, Pairings: 1, Want: 2}}
		if !reflect.DeepEqual(report.RoundSizes, want) {
			t.Errorf("round sizes = %+v, want %+v", report.RoundSizes, want)
		}
		if !report.Complete {
			t.Error("every pairing is present, so the report is complete")
		}
		if countType(report.Violations(), "error") != 2 {
			t.Errorf("violations = %+v, want 2 errors", report.Violations())
		}
	})

	t.Run("partial schedules still need full weeks", func(t *testing.T) {
		sched := &matchup.Schedule{
			Players: four(),
			Partial: true,
			Rounds:  []matchup.Round{{Week: 1, Pairings: []matchup.Pairing{p("a", "b")}}},
		}
		report := VerifyPartial(four(), sched)
		if report.Valid {
			t.Error("partial schedule with an underfilled week should be invalid")
		}
		if len(report.RoundSizes) != 1 {
			t.Errorf("round sizes = %+v, want one entry", report.RoundSizes)
		}
	})
}

func oddSchedule() *matchup.Schedule {
	return &matchup.Schedule{
		Players: []matchup.PlayerID{"a", "b", "c"},
		Rounds: []matchup.Round{
			{Week: 1, Pairings: []matchup.Pairing{p("a", "b")}, SitsOut: "c"},
			{Week: 2, Pairings: []matchup.Pairing{p("a", "c")}, SitsOut: "b"},
			{Week: 3, Pairings: []matchup.Pairing{p("b", "c")}, SitsOut: "a"},
		},
	}
}

func TestVerifySitOutMismatch(t *testing.T) {
	tests := []struct {
		name    string
		sitsOut []matchup.PlayerID
		want    []SitOutMismatch
		message string
	}{
		{
			name:    "same player recorded every week",
			sitsOut: []matchup.PlayerID{"a", "a", "a"},
			want: []SitOutMismatch{
				{Week: 1, Declared: "a", Actual: "c"},
				{Week: 2, Declared: "a", Actual: "b"},
			},
			message: "week 1: a is recorded as sitting out, but c does",
		},
		{
			name:    "sit-out not recorded",
			sitsOut: []matchup.PlayerID{"c", "", "a"},
			want:    []SitOutMismatch{{Week: 2, Declared: "", Actual: "b"}},
			message: "week 2: no sit-out recorded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched := oddSchedule()
			for i := range sched.Rounds {
				sched.Rounds[i].SitsOut = tt.sitsOut[i]
			}

			report := Verify(sched.Players, sched)
			if report.Valid {
				t.Fatal("schedule with a wrong sit-out should be invalid")
			}
			if !reflect.DeepEqual(report.SitOutErrors, tt.want) {
				t.Errorf("sit-out errors = %+v, want %+v", report.SitOutErrors, tt.want)
			}
			found := false
			for _, v := range report.Violations() {
				if v.Type == "error" && v.Message == tt.message {
					found = true
				}
			}
			if !found {
				t.Errorf("violations %+v do not include %q", report.Violations(), tt.message)
			}
		})
	}

	t.Run("even round declares no sit-out", func(t *testing.T) {
		sched := roundRobin()
		sched.Rounds[0].SitsOut = "a"
		report := Verify(four(), sched)
		if report.Valid || len(report.SitOutErrors) != 1 {
			t.Errorf("valid = %v, sit-out errors = %+v", report.Valid, report.SitOutErrors)
		}
	})
}

func TestVerifyByeCounts(t *testing.T) {
	players := []matchup.PlayerID{"a", "b", "c", "d", "e"}
	sched := &matchup.Schedule{
		Players: players,
		Rounds: []matchup.Round{
			{Week: 1, Pairings: []matchup.Pairing{p("b", "e"), p("c", "d")}, SitsOut: "a"},
			{Week: 2, Pairings: []matchup.Pairing{p("a", "e"), p("b", "c")}, SitsOut: "d"},
			{Week: 3, Pairings: []matchup.Pairing{p("a", "d"), p("c", "e")}, SitsOut: "b"},
			{Week: 4, Pairings: []matchup.Pairing{p("a", "c"), p("b", "d")}, SitsOut: "e"},
			{Week: 5, Pairings: []matchup.Pairing{p("a", "b"), p("d", "e")}, SitsOut: "c"},
		},
	}

	t.Run("one bye each", func(t *testing.T) {
		report := Verify(players, sched)
		if !report.Valid {
			t.Fatalf("report invalid: %+v", report.Violations())
		}
		if len(report.ByeCounts) != 0 {
			t.Errorf("bye counts = %+v, want none", report.ByeCounts)
		}
	})

	t.Run("missing week leaves a player without a bye", func(t *testing.T) {
		short := *sched
		short.Rounds = sched.Rounds[:4]

		report := Verify(players, &short)
		want := []ByeCount{{Player: "c", Weeks: nil}}
		if !reflect.DeepEqual(report.ByeCounts, want) {
			t.Errorf("bye counts = %+v, want %+v", report.ByeCounts, want)
		}

		if partial := VerifyPartial(players, &short); len(partial.ByeCounts) != 0 || !partial.Valid {
			t.Errorf("partial: valid = %v, bye counts = %+v", partial.Valid, partial.ByeCounts)
		}
	})
}
