package matchup

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewPairing(t *testing.T) {
	t.Run("lower id first", func(t *testing.T) {
		got := NewPairing("b", "a")
		if got != (Pairing{A: "a", B: "b"}) {
			t.Errorf("NewPairing(b, a) = %+v", got)
		}
		if NewPairing("a", "b") != got {
			t.Error("orientation should not matter")
		}
	})
}

func TestAllPairings(t *testing.T) {
	got := AllPairings([]PlayerID{"c", "a", "b"})
	want := []Pairing{{A: "a", B: "c"}, {A: "b", B: "c"}, {A: "a", B: "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AllPairings() = %v, want %v", got, want)
	}

	if n := len(AllPairings(make10())); n != 45 {
		t.Errorf("10 players give %d pairings, want 45", n)
	}
}

func TestScheduleHelpers(t *testing.T) {
	s := &Schedule{
		FirstWeek: 3,
		Rounds: []Round{
			{Week: 3, Pairings: []Pairing{{A: "a", B: "b"}}, SitsOut: "c"},
			{Week: 4, Pairings: []Pairing{{A: "a", B: "c"}}, SitsOut: "b"},
		},
	}

	if got := s.Weeks(); !reflect.DeepEqual(got, []int{3, 4}) {
		t.Errorf("Weeks() = %v", got)
	}
	if r, ok := s.Round(4); !ok || r.SitsOut != "b" {
		t.Errorf("Round(4) = %+v, %v", r, ok)
	}
	if _, ok := s.Round(1); ok {
		t.Error("Round(1) should not exist")
	}
}

func make10() []PlayerID {
	return []PlayerID{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
}

func TestBuildUniverse(t *testing.T) {
	t.Run("complete round robin", func(t *testing.T) {
		u, err := BuildUniverse(make10(), Options{Weeks: 9})
		if err != nil {
			t.Fatalf("BuildUniverse() error: %v", err)
		}
		if u.FirstWeek != 1 || u.PerRound != 5 || u.RoundsNeeded != 9 {
			t.Errorf("universe = %+v", u)
		}
		if len(u.Pool) != 45 || u.Slots() != 45 {
			t.Errorf("pool = %d, slots = %d, want 45", len(u.Pool), u.Slots())
		}
		if len(u.OpenWeeks) != 9 {
			t.Errorf("open weeks = %v", u.OpenWeeks)
		}
	})

	t.Run("fixed week leaves the pool", func(t *testing.T) {
		fixed := FixedRound{Week: 1, Pairings: []Pairing{
			{A: "5", B: "0"}, {A: "1", B: "6"}, {A: "2", B: "7"}, {A: "3", B: "8"}, {A: "4", B: "9"},
		}}
		u, err := BuildUniverse(make10(), Options{Weeks: 9, Fixed: []FixedRound{fixed}})
		if err != nil {
			t.Fatalf("BuildUniverse() error: %v", err)
		}
		if len(u.Pool) != 40 || u.Slots() != 40 {
			t.Errorf("pool = %d, slots = %d, want 40", len(u.Pool), u.Slots())
		}
		for _, p := range u.Pool {
			if p == NewPairing("0", "5") {
				t.Error("fixed pairing left in the pool")
			}
		}
		if got := u.Fixed[1].Pairings[0]; got != (Pairing{A: "0", B: "5"}) {
			t.Errorf("fixed pairing stored as %+v, want canonical", got)
		}
		if !reflect.DeepEqual(u.OpenWeeks, []int{2, 3, 4, 5, 6, 7, 8, 9}) {
			t.Errorf("open weeks = %v", u.OpenWeeks)
		}
		if !reflect.DeepEqual(u.FixedWeeks(), []int{1}) {
			t.Errorf("fixed weeks = %v", u.FixedWeeks())
		}
	})

	t.Run("odd with byes", func(t *testing.T) {
		u, err := BuildUniverse([]PlayerID{"a", "b", "c", "d", "e"}, Options{Weeks: 5, AllowByes: true})
		if err != nil {
			t.Fatalf("BuildUniverse() error: %v", err)
		}
		if !u.Odd() || u.PerRound != 2 || u.RoundsNeeded != 5 {
			t.Errorf("universe = %+v", u)
		}
	})

	t.Run("partial", func(t *testing.T) {
		u, err := BuildUniverse(make10(), Options{Weeks: 4, Partial: true})
		if err != nil {
			t.Fatalf("BuildUniverse() error: %v", err)
		}
		if u.Slots() != 20 || len(u.Pool) != 45 {
			t.Errorf("slots = %d, pool = %d", u.Slots(), len(u.Pool))
		}
	})

	t.Run("partial still needs enough pairings", func(t *testing.T) {
		_, err := BuildUniverse(make10(), Options{Weeks: 10, Partial: true})
		if !errors.Is(err, ErrArithmeticMismatch) {
			t.Errorf("error = %v, want ErrArithmeticMismatch", err)
		}
	})

	t.Run("week numbering", func(t *testing.T) {
		u, err := BuildUniverse([]PlayerID{"a", "b"}, Options{Weeks: 1, FirstWeek: 12})
		if err != nil {
			t.Fatalf("BuildUniverse() error: %v", err)
		}
		if !reflect.DeepEqual(u.OpenWeeks, []int{12}) {
			t.Errorf("open weeks = %v, want [12]", u.OpenWeeks)
		}
	})
}

func TestBuildUniverseErrors(t *testing.T) {
	tests := []struct {
		name    string
		players []PlayerID
		opts    Options
		want    error
	}{
		{name: "no players", opts: Options{Weeks: 1}, want: ErrInvalidInput},
		{name: "duplicate player", players: []PlayerID{"a", "a"}, opts: Options{Weeks: 1}, want: ErrInvalidInput},
		{name: "odd without byes", players: []PlayerID{"a", "b", "c"}, opts: Options{Weeks: 3}, want: ErrInvalidInput},
		{name: "negative weeks", players: make10(), opts: Options{Weeks: -1}, want: ErrInvalidInput},
		{name: "too many weeks", players: make10(), opts: Options{Weeks: 10}, want: ErrArithmeticMismatch},
		{name: "too few weeks", players: make10(), opts: Options{Weeks: 8}, want: ErrArithmeticMismatch},
		{
			name:    "short fixed week",
			players: make10(),
			opts: Options{Weeks: 9, Fixed: []FixedRound{{Week: 1, Pairings: []Pairing{
				{A: "0", B: "5"}, {A: "1", B: "6"}, {A: "2", B: "7"}, {A: "3", B: "8"},
			}}}},
			want: ErrArithmeticMismatch,
		},
		{
			name:    "fixed week before the first week",
			players: []PlayerID{"a", "b"},
			opts:    Options{Weeks: 1, FirstWeek: 2, Fixed: []FixedRound{{Week: 1, Pairings: []Pairing{{A: "a", B: "b"}}}}},
			want:    ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := BuildUniverse(tt.players, tt.opts)
			if u != nil {
				t.Error("expected no universe")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
