package schedule

import (
	"github.com/derekprior/matchweek/internal/matchup"
)

// bye is the pseudo-player seated at the table when the player count is odd.
// Player ids are never empty, so it cannot collide with a real player.
const bye matchup.PlayerID = ""

// circleRounds builds a full round robin with the circle method. seats[0] is
// the anchor; the rest sit around the circle and rotate one position per
// round. An odd table gets a bye seat, and whoever draws it sits out.
func circleRounds(seats []matchup.PlayerID) []matchup.Round {
	table := append([]matchup.PlayerID(nil), seats...)
	if len(table)%2 == 1 {
		table = append(table, bye)
	}

	anchor := table[0]
	ring := table[1:]
	m := len(ring)

	rounds := make([]matchup.Round, 0, m)
	for r := 0; r < m; r++ {
		at := func(i int) matchup.PlayerID {
			return ring[((i-r)%m+m)%m]
		}

		var round matchup.Round
		place := func(a, b matchup.PlayerID) {
			switch {
			case a == bye:
				round.SitsOut = b
			case b == bye:
				round.SitsOut = a
			default:
				round.Pairings = append(round.Pairings, matchup.NewPairing(a, b))
			}
		}

		place(anchor, at(0))
		for i := 1; i <= m/2; i++ {
			place(at(i), at(m-i))
		}
		rounds = append(rounds, round)
	}
	return rounds
}

// seatingFor arranges the table so that round 0 of circleRounds reproduces
// the given round. Pairings are taken in the order given; for an odd table
// the sitting-out player faces the bye seat.
func seatingFor(pairings []matchup.Pairing, sitsOut matchup.PlayerID) []matchup.PlayerID {
	pairs := make([][2]matchup.PlayerID, 0, len(pairings)+1)
	for i, p := range pairings {
		pairs = append(pairs, [2]matchup.PlayerID{p.A, p.B})
		// Second pair lands the bye in the last seat, where circleRounds
		// would put it.
		if i == 0 && sitsOut != "" {
			pairs = append(pairs, [2]matchup.PlayerID{sitsOut, bye})
		}
	}

	n := len(pairs) * 2
	m := n - 1
	ring := make([]matchup.PlayerID, m)
	anchor := pairs[0][0]
	ring[0] = pairs[0][1]
	for j := 1; j < len(pairs); j++ {
		ring[j] = pairs[j][0]
		ring[m-j] = pairs[j][1]
	}

	seats := append([]matchup.PlayerID{anchor}, ring...)
	if sitsOut != "" {
		seats = seats[:len(seats)-1]
	}
	return seats
}

// alignCircle tries to build the whole schedule with the circle method. With
// fixed weeks, a seating is derived from each fixed week in turn; the seating
// is accepted when every fixed week equals a distinct round of its rotation.
// It returns rounds keyed by week, or false when no seating lines up.
func alignCircle(u *matchup.Universe) (map[int]matchup.Round, bool) {
	fixedWeeks := u.FixedWeeks()
	if len(fixedWeeks) == 0 {
		return assignCircle(u, circleRounds(u.Players), nil)
	}

	for _, w := range fixedWeeks {
		fr := u.Fixed[w]
		rounds := circleRounds(seatingFor(fr.Pairings, sitsOut(u.Players, fr.Pairings)))
		match, ok := matchFixed(u, rounds, fixedWeeks)
		if !ok {
			continue
		}
		return assignCircle(u, rounds, match)
	}
	return nil, false
}

// matchFixed maps each fixed week to the index of the circle round with the
// same pairing set.
func matchFixed(u *matchup.Universe, rounds []matchup.Round, fixedWeeks []int) (map[int]int, bool) {
	keys := make([]map[matchup.Pairing]bool, len(rounds))
	for i, r := range rounds {
		keys[i] = pairingSet(r.Pairings)
	}

	taken := make(map[int]bool)
	match := make(map[int]int, len(fixedWeeks))
	for _, w := range fixedWeeks {
		want := pairingSet(u.Fixed[w].Pairings)
		found := -1
		for i, have := range keys {
			if !taken[i] && sameSet(want, have) {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, false
		}
		taken[found] = true
		match[w] = found
	}
	return match, true
}

// assignCircle places fixed weeks on their matched rounds and fills the open
// weeks with the remaining rounds in rotation order.
func assignCircle(u *matchup.Universe, rounds []matchup.Round, match map[int]int) (map[int]matchup.Round, bool) {
	taken := make(map[int]bool, len(match))
	for _, idx := range match {
		taken[idx] = true
	}

	var free []matchup.Round
	for i, r := range rounds {
		if !taken[i] {
			free = append(free, r)
		}
	}
	if len(free) < len(u.OpenWeeks) {
		return nil, false
	}

	out := make(map[int]matchup.Round, u.Weeks)
	for w, fr := range u.Fixed {
		out[w] = matchup.Round{
			Week:     w,
			Pairings: append([]matchup.Pairing(nil), fr.Pairings...),
			SitsOut:  sitsOut(u.Players, fr.Pairings),
		}
	}
	for i, w := range u.OpenWeeks {
		r := free[i]
		r.Week = w
		out[w] = r
	}
	return out, true
}

func pairingSet(pairings []matchup.Pairing) map[matchup.Pairing]bool {
	set := make(map[matchup.Pairing]bool, len(pairings))
	for _, p := range pairings {
		set[p] = true
	}
	return set
}

func sameSet(a, b map[matchup.Pairing]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for p := range a {
		if !b[p] {
			return false
		}
	}
	return true
}

// sitsOut returns the first player with no game in pairings, or "" when
// everyone plays.
func sitsOut(players []matchup.PlayerID, pairings []matchup.Pairing) matchup.PlayerID {
	playing := make(map[matchup.PlayerID]bool, len(pairings)*2)
	for _, p := range pairings {
		playing[p.A] = true
		playing[p.B] = true
	}
	for _, id := range players {
		if !playing[id] {
			return id
		}
	}
	return ""
}
