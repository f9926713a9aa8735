/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

package pairing

// RoundsFor returns the number of rounds a full round robin over n players
// takes.
func RoundsFor(n int) int {
	if n < 2 {
		return 0
	}
	if n%2 == 1 {
		n++
	}

	return n - 1
}

// roundRobin pairs by the circle method. Seat 0 stays fixed and the rest
// rotate one step per round. An odd pool puts an empty seat in the fixed
// position, so its partner each round receives the bye. Every rotating
// player visits each seat once per cycle, so moving first from the lower
// seat keeps colors within one of even, and exactly even for odd pools.
func (e *Engine) roundRobin(req Request) []Pair {
	seats := make([]string, 0, len(req.Players)+1)
	ratings := make(map[string]float64, len(req.Players))
	if len(req.Players)%2 == 1 {
		seats = append(seats, "")
	}
	for _, p := range req.Players {
		seats = append(seats, p.ID)
		ratings[p.ID] = p.Rating
	}
	n := len(seats)
	shift := (req.Round - 1) % (n - 1)

	ring := make([]string, n)
	ring[0] = seats[0]
	for k := 0; k < n-1; k++ {
		ring[k+1] = seats[1+(k+shift)%(n-1)]
	}

	var pairs []Pair
	var bye *Pair
	var conflicted []Player
	for i := 0; i < n/2; i++ {
		a, b := ring[i], ring[n-1-i]
		switch {
		case a == "":
			bye = &Pair{First: b}
		case b == "":
			bye = &Pair{First: a}
		case req.History.Has(a, b):
			conflicted = append(conflicted, Player{ID: a, Rating: ratings[a]},
				Player{ID: b, Rating: ratings[b]})
		default:
			// the lower seat moves first; the fixed seat alternates by round
			if i == 0 && req.Round%2 == 0 {
				a, b = b, a
			}
			pairs = append(pairs, Pair{First: a, Second: b})
		}
	}
	if len(conflicted) > 0 {
		p, _ := e.pairGreedy(byRating(conflicted), req.History, true)
		pairs = append(pairs, p...)
	}
	if bye != nil {
		pairs = append(pairs, *bye)
	}

	return pairs
}
