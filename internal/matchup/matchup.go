package matchup

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports a malformed player set or fixed week.
	ErrInvalidInput = errors.New("invalid input")
	// ErrArithmeticMismatch reports a pairing pool that cannot fill the open weeks exactly.
	ErrArithmeticMismatch = errors.New("arithmetic mismatch")
)

// PlayerID identifies a player. It is opaque to the scheduler.
type PlayerID string

// Player is roster reference data.
type Player struct {
	ID   PlayerID
	Name string
}

// Pairing is an unordered matchup between two players, stored with the
// lower id first.
type Pairing struct {
	A PlayerID
	B PlayerID
}

// NewPairing returns the canonical pairing of a and b.
func NewPairing(a, b PlayerID) Pairing {
	if a > b {
		a, b = b, a
	}
	return Pairing{A: a, B: b}
}

// Has reports whether id is one of the pairing's players.
func (p Pairing) Has(id PlayerID) bool {
	return p.A == id || p.B == id
}

func (p Pairing) String() string {
	return fmt.Sprintf("%s vs %s", p.A, p.B)
}

// Round is one week of pairings. SitsOut is set only for odd player counts.
type Round struct {
	Week     int
	Pairings []Pairing
	SitsOut  PlayerID
}

// FixedRound is a week supplied by the caller that must appear verbatim.
type FixedRound struct {
	Week     int
	Pairings []Pairing
}

// Schedule is an ordered sequence of rounds starting at FirstWeek.
type Schedule struct {
	Players   []PlayerID
	FirstWeek int
	Rounds    []Round
	Partial   bool
}

// Round returns the round played in the given week.
func (s *Schedule) Round(week int) (Round, bool) {
	for _, r := range s.Rounds {
		if r.Week == week {
			return r, true
		}
	}
	return Round{}, false
}

// Weeks returns the week numbers in schedule order.
func (s *Schedule) Weeks() []int {
	weeks := make([]int, len(s.Rounds))
	for i, r := range s.Rounds {
		weeks[i] = r.Week
	}
	return weeks
}

// IDs returns the ids of the given players in order.
func IDs(players []Player) []PlayerID {
	ids := make([]PlayerID, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}

// AllPairings returns every unique pairing over players, ordered by the
// position of each player in the slice.
func AllPairings(players []PlayerID) []Pairing {
	pairings := make([]Pairing, 0, len(players)*(len(players)-1)/2)
	for i := 0; i < len(players); i++ {
		for j := i + 1; j < len(players); j++ {
			pairings = append(pairings, NewPairing(players[i], players[j]))
		}
	}
	return pairings
}
