package schedule

import (
	"log/slog"
	"math/rand"
	"sort"

	"github.com/derekprior/matchweek/internal/matchup"
)

// searcher fills the open weeks of a universe by backtracking. Players are
// addressed by their index in u.Players.
type searcher struct {
	u           *matchup.Universe
	n           int
	maxAttempts int

	avail    [][]bool // pairing still in the pool
	games    []int    // games played so far, fixed weeks included
	byes     []int    // rounds sat out so far
	rank     []int    // tie-break order of players for this restart
	pairRank [][]int  // tie-break order of pairings for this restart

	rounds   [][][2]int // chosen pairings per open week
	sitting  []int      // sitting-out player per open week, -1 for none
	attempts []int      // pairing placements per open week

	// diagnostics for failure reporting
	deepest   int
	bestDepth []int
	stuck     [][]int
}

// failure describes the deepest dead end of one restart.
type failure struct {
	round   int
	players []int
}

func newSearcher(u *matchup.Universe, maxAttempts int, rng *rand.Rand) *searcher {
	n := len(u.Players)
	index := make(map[matchup.PlayerID]int, n)
	for i, id := range u.Players {
		index[id] = i
	}

	s := &searcher{
		u:           u,
		n:           n,
		maxAttempts: maxAttempts,
		avail:       make([][]bool, n),
		games:       make([]int, n),
		byes:        make([]int, n),
		rank:        rng.Perm(n),
		pairRank:    make([][]int, n),
		rounds:      make([][][2]int, len(u.OpenWeeks)),
		sitting:     make([]int, len(u.OpenWeeks)),
		attempts:    make([]int, len(u.OpenWeeks)),
		deepest:     -1,
		bestDepth:   make([]int, len(u.OpenWeeks)),
		stuck:       make([][]int, len(u.OpenWeeks)),
	}
	for i := range s.avail {
		s.avail[i] = make([]bool, n)
		s.pairRank[i] = make([]int, n)
	}
	for i := range s.bestDepth {
		s.bestDepth[i] = -1
	}

	pool := append([]matchup.Pairing(nil), u.Pool...)
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	for r, p := range pool {
		a, b := index[p.A], index[p.B]
		s.avail[a][b], s.avail[b][a] = true, true
		s.pairRank[a][b], s.pairRank[b][a] = r, r
	}

	for _, fr := range u.Fixed {
		playing := make([]bool, n)
		for _, p := range fr.Pairings {
			a, b := index[p.A], index[p.B]
			s.games[a]++
			s.games[b]++
			playing[a], playing[b] = true, true
		}
		for i, ok := range playing {
			if !ok {
				s.byes[i]++
			}
		}
	}
	return s
}

// run searches for a complete assignment of the open weeks. On failure it
// returns the deepest dead end.
func (s *searcher) run() (bool, failure) {
	if s.fillWeek(0) {
		return true, failure{}
	}
	f := failure{round: s.deepest}
	if f.round >= 0 {
		f.players = s.stuck[f.round]
	}
	return false, f
}

func (s *searcher) fillWeek(ri int) bool {
	if ri == len(s.u.OpenWeeks) {
		return true
	}
	if ri > s.deepest {
		s.deepest = ri
	}

	covered := make([]bool, s.n)
	s.rounds[ri] = s.rounds[ri][:0]
	s.sitting[ri] = -1

	if !s.u.Odd() {
		return s.match(ri, covered)
	}

	for _, p := range s.sitterCandidates(ri) {
		covered[p] = true
		s.sitting[ri] = p
		s.byes[p]++
		if s.match(ri, covered) {
			return true
		}
		s.byes[p]--
		covered[p] = false
		s.sitting[ri] = -1
	}
	return false
}

// sitterCandidates orders the players who may sit out this week, fewest
// byes first. A complete odd round robin has every player sit out exactly
// once, so players who already sat out are excluded there.
func (s *searcher) sitterCandidates(ri int) []int {
	var out []int
	for p := 0; p < s.n; p++ {
		if !s.u.Partial && s.byes[p] > 0 {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if s.byes[a] != s.byes[b] {
			return s.byes[a] < s.byes[b]
		}
		if s.games[a] != s.games[b] {
			return s.games[a] > s.games[b]
		}
		return s.rank[a] < s.rank[b]
	})
	return out
}

// match extends the current week's matching one pairing at a time. When the
// week is full it moves on to the next week and undoes its choice if that
// leads nowhere.
func (s *searcher) match(ri int, covered []bool) bool {
	if len(s.rounds[ri]) == s.u.PerRound {
		return s.fillWeek(ri + 1)
	}
	if s.attempts[ri] >= s.maxAttempts {
		return false
	}

	p, options := s.nextPlayer(covered)
	if len(s.rounds[ri]) > s.bestDepth[ri] {
		s.bestDepth[ri] = len(s.rounds[ri])
		s.stuck[ri] = uncovered(covered)
	}
	if p < 0 || len(options) == 0 {
		return false
	}

	covered[p] = true
	for _, q := range options {
		if s.attempts[ri] >= s.maxAttempts {
			break
		}
		s.attempts[ri]++
		s.place(ri, p, q, covered)
		if s.match(ri, covered) {
			return true
		}
		s.unplace(ri, p, q, covered)
	}
	covered[p] = false
	return false
}

// nextPlayer picks the uncovered player with the fewest remaining partners
// this week and returns its partners, fewest games first. A player with no
// partner left is returned immediately so the branch dies early.
func (s *searcher) nextPlayer(covered []bool) (int, []int) {
	best, bestOpts := -1, []int(nil)
	for p := 0; p < s.n; p++ {
		if covered[p] {
			continue
		}
		var opts []int
		for q := 0; q < s.n; q++ {
			if q != p && !covered[q] && s.avail[p][q] {
				opts = append(opts, q)
			}
		}
		if len(opts) == 0 {
			return p, nil
		}
		if best < 0 || len(opts) < len(bestOpts) ||
			(len(opts) == len(bestOpts) && s.before(p, best)) {
			best, bestOpts = p, opts
		}
	}
	if best < 0 {
		return -1, nil
	}

	sort.SliceStable(bestOpts, func(i, j int) bool {
		a, b := bestOpts[i], bestOpts[j]
		if s.games[a] != s.games[b] {
			return s.games[a] < s.games[b]
		}
		return s.pairRank[best][a] < s.pairRank[best][b]
	})
	return best, bestOpts
}

// before orders players by games played, then by this restart's rank.
func (s *searcher) before(a, b int) bool {
	if s.games[a] != s.games[b] {
		return s.games[a] < s.games[b]
	}
	return s.rank[a] < s.rank[b]
}

func (s *searcher) place(ri, p, q int, covered []bool) {
	covered[q] = true
	s.avail[p][q], s.avail[q][p] = false, false
	s.games[p]++
	s.games[q]++
	s.rounds[ri] = append(s.rounds[ri], [2]int{p, q})
}

func (s *searcher) unplace(ri, p, q int, covered []bool) {
	s.rounds[ri] = s.rounds[ri][:len(s.rounds[ri])-1]
	s.games[p]--
	s.games[q]--
	s.avail[p][q], s.avail[q][p] = true, true
	covered[q] = false
}

func uncovered(covered []bool) []int {
	var out []int
	for p, c := range covered {
		if !c {
			out = append(out, p)
		}
	}
	return out
}

// result converts the chosen pairings into rounds keyed by week.
func (s *searcher) result() map[int]matchup.Round {
	out := make(map[int]matchup.Round, s.u.Weeks)
	for w, fr := range s.u.Fixed {
		out[w] = matchup.Round{
			Week:     w,
			Pairings: append([]matchup.Pairing(nil), fr.Pairings...),
			SitsOut:  sitsOut(s.u.Players, fr.Pairings),
		}
	}
	for ri, w := range s.u.OpenWeeks {
		round := matchup.Round{Week: w}
		for _, pq := range s.rounds[ri] {
			round.Pairings = append(round.Pairings, matchup.NewPairing(s.u.Players[pq[0]], s.u.Players[pq[1]]))
		}
		if s.sitting[ri] >= 0 {
			round.SitsOut = s.u.Players[s.sitting[ri]]
		}
		out[w] = round
	}
	return out
}

// search runs the backtracking constructor with up to maxRestarts seeded
// restarts. Restart k draws its tie-break order from seed+k.
func search(u *matchup.Universe, seed int64, maxRestarts, maxAttempts int, log *slog.Logger) (map[int]matchup.Round, error) {
	var worst failure
	worst.round = -1

	for attempt := range maxRestarts {
		rng := rand.New(rand.NewSource(seed + int64(attempt)))
		s := newSearcher(u, maxAttempts, rng)
		ok, f := s.run()
		if ok {
			log.Debug("backtracking found a schedule", "restart", attempt)
			return s.result(), nil
		}
		log.Debug("backtracking restart failed", "restart", attempt, "week", weekAt(u, f.round), "unpaired", len(f.players))
		if f.round > worst.round || (f.round == worst.round && len(f.players) < len(worst.players)) {
			worst = f
		}
	}

	nf := &NoFeasibleError{
		RoundIndex: worst.round,
		Week:       weekAt(u, worst.round),
		Restarts:   maxRestarts,
	}
	for _, p := range worst.players {
		nf.Players = append(nf.Players, u.Players[p])
	}
	return nil, nf
}

func weekAt(u *matchup.Universe, ri int) int {
	if ri < 0 || ri >= len(u.OpenWeeks) {
		return 0
	}
	return u.OpenWeeks[ri]
}
