package matchup

import (
	"fmt"
	"sort"
)

// Options describes the scheduling request the universe is built for.
// A zero FirstWeek means week numbering starts at 1.
type Options struct {
	Weeks     int
	FirstWeek int
	Fixed     []FixedRound
	AllowByes bool
	Partial   bool
}

// Universe is the pairing universe of a request after fixed weeks have been
// taken out.
type Universe struct {
	Players   []PlayerID
	FirstWeek int
	Weeks     int
	Partial   bool

	// PerRound is the number of pairings in every round.
	PerRound int
	// RoundsNeeded is the number of rounds of a complete round robin.
	RoundsNeeded int

	Pool      []Pairing
	OpenWeeks []int
	Fixed     map[int]FixedRound
}

// Odd reports whether one player sits out every round.
func (u *Universe) Odd() bool {
	return len(u.Players)%2 == 1
}

// Slots returns the number of pairings still to be placed.
func (u *Universe) Slots() int {
	return len(u.OpenWeeks) * u.PerRound
}

// BuildUniverse computes every pairing over players, removes the pairings
// already consumed by fixed weeks and checks that the remaining pool fills
// the open weeks exactly (or at least, for partial schedules).
func BuildUniverse(players []PlayerID, opts Options) (*Universe, error) {
	if err := validatePlayers(players); err != nil {
		return nil, err
	}
	if opts.Weeks < 1 {
		return nil, fmt.Errorf("%w: weeks must be at least 1, got %d", ErrInvalidInput, opts.Weeks)
	}
	odd := len(players)%2 == 1
	if odd && !opts.AllowByes {
		return nil, fmt.Errorf("%w: %d players is odd and no bye policy was declared", ErrInvalidInput, len(players))
	}

	first := opts.FirstWeek
	if first == 0 {
		first = 1
	}

	u := &Universe{
		Players:      append([]PlayerID(nil), players...),
		FirstWeek:    first,
		Weeks:        opts.Weeks,
		Partial:      opts.Partial,
		PerRound:     len(players) / 2,
		RoundsNeeded: len(players) - 1,
		Fixed:        make(map[int]FixedRound),
	}
	if odd {
		u.RoundsNeeded = len(players)
	}

	used, err := u.addFixed(opts.Fixed)
	if err != nil {
		return nil, err
	}

	for _, p := range AllPairings(players) {
		if !used[p] {
			u.Pool = append(u.Pool, p)
		}
	}
	for w := first; w < first+opts.Weeks; w++ {
		if _, ok := u.Fixed[w]; !ok {
			u.OpenWeeks = append(u.OpenWeeks, w)
		}
	}

	need := u.Slots()
	switch {
	case !u.Partial && len(u.Pool) != need:
		return nil, fmt.Errorf("%w: %d pairings remain for %d open weeks of %d pairings (%d needed); a complete round robin of %d players takes %d weeks",
			ErrArithmeticMismatch, len(u.Pool), len(u.OpenWeeks), u.PerRound, need, len(players), u.RoundsNeeded)
	case u.Partial && len(u.Pool) < need:
		return nil, fmt.Errorf("%w: %d pairings remain but %d open weeks of %d pairings need %d",
			ErrArithmeticMismatch, len(u.Pool), len(u.OpenWeeks), u.PerRound, need)
	}

	return u, nil
}

func validatePlayers(players []PlayerID) error {
	if len(players) < 2 {
		return fmt.Errorf("%w: at least 2 players are required, got %d", ErrInvalidInput, len(players))
	}
	seen := make(map[PlayerID]bool, len(players))
	for _, p := range players {
		if p == "" {
			return fmt.Errorf("%w: player id must not be empty", ErrInvalidInput)
		}
		if seen[p] {
			return fmt.Errorf("%w: player %q appears more than once", ErrInvalidInput, p)
		}
		seen[p] = true
	}
	return nil
}

// addFixed validates the fixed weeks and records them. It returns the set of
// pairings they consume.
func (u *Universe) addFixed(fixed []FixedRound) (map[Pairing]bool, error) {
	known := make(map[PlayerID]bool, len(u.Players))
	for _, p := range u.Players {
		known[p] = true
	}

	used := make(map[Pairing]int) // pairing -> week
	last := u.FirstWeek + u.Weeks - 1

	for _, fr := range fixed {
		if fr.Week < u.FirstWeek || fr.Week > last {
			return nil, fmt.Errorf("%w: fixed week %d is outside weeks %d-%d", ErrInvalidInput, fr.Week, u.FirstWeek, last)
		}
		if _, dup := u.Fixed[fr.Week]; dup {
			return nil, fmt.Errorf("%w: week %d is fixed more than once", ErrInvalidInput, fr.Week)
		}

		booked := make(map[PlayerID]bool)
		canon := make([]Pairing, 0, len(fr.Pairings))
		for _, p := range fr.Pairings {
			if p.A == p.B {
				return nil, fmt.Errorf("%w: week %d pairs %q with itself", ErrInvalidInput, fr.Week, p.A)
			}
			for _, id := range []PlayerID{p.A, p.B} {
				if !known[id] {
					return nil, fmt.Errorf("%w: week %d references unknown player %q", ErrInvalidInput, fr.Week, id)
				}
				if booked[id] {
					return nil, fmt.Errorf("%w: player %q is paired twice in week %d", ErrInvalidInput, id, fr.Week)
				}
				booked[id] = true
			}
			c := NewPairing(p.A, p.B)
			if w, dup := used[c]; dup {
				return nil, fmt.Errorf("%w: %s is fixed in both week %d and week %d", ErrInvalidInput, c, w, fr.Week)
			}
			used[c] = fr.Week
			canon = append(canon, c)
		}

		if len(canon) != u.PerRound {
			return nil, fmt.Errorf("%w: fixed week %d holds %d pairings, every round holds %d",
				ErrArithmeticMismatch, fr.Week, len(canon), u.PerRound)
		}
		u.Fixed[fr.Week] = FixedRound{Week: fr.Week, Pairings: canon}
	}

	set := make(map[Pairing]bool, len(used))
	for p := range used {
		set[p] = true
	}
	return set, nil
}

// FixedWeeks returns the fixed week numbers in ascending order.
func (u *Universe) FixedWeeks() []int {
	weeks := make([]int, 0, len(u.Fixed))
	for w := range u.Fixed {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}
