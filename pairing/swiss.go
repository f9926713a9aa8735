/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

package pairing

import (
	"github.com/elliotchance/pie/v2"
)

// byRating orders players by rating descending, ties broken by id.
func byRating(players []Player) []Player {
	return pie.SortStableUsing(players, func(a, b Player) bool {
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.ID < b.ID
	})
}

func (e *Engine) swiss(req Request) []Pair {
	ordered := byRating(req.Players)

	var bye *Player
	if len(ordered)%2 == 1 {
		b, rest := pickBye(ordered, req.PriorByes)
		bye, ordered = &b, rest
	}

	pairs, _ := e.pairGreedy(ordered, req.History, true)
	if bye != nil {
		pairs = append(pairs, Pair{First: bye.ID})
	}

	return pairs
}

// pairGreedy walks ordered top down and pairs each unpaired player with the
// first unpaired player below them they have not met. With relax set a
// player with no such opponent takes the next unpaired player regardless of
// history; otherwise they are returned as leftovers.
func (e *Engine) pairGreedy(ordered []Player, history History,
	relax bool) ([]Pair, []Player) {

	var pairs []Pair
	var leftovers []Player
	paired := make([]bool, len(ordered))

	for i := range ordered {
		if paired[i] {
			continue
		}
		match, fallback := -1, -1
		for j := i + 1; j < len(ordered); j++ {
			if paired[j] {
				continue
			}
			if !history.Has(ordered[i].ID, ordered[j].ID) {
				match = j
				break
			}
			if fallback < 0 {
				fallback = j
			}
		}
		if match < 0 && relax {
			match = fallback
		}
		if match < 0 {
			leftovers = append(leftovers, ordered[i])
			continue
		}
		paired[i], paired[match] = true, true
		pairs = append(pairs, e.colored(ordered[i].ID, ordered[match].ID))
	}

	return pairs, leftovers
}

// macMahon runs Swiss inside each score group, highest group first, then
// pairs everyone left over across groups.
func (e *Engine) macMahon(req Request) []Pair {
	groups := make(map[float64][]Player)
	for _, p := range req.Players {
		s := req.Scores[p.ID]
		groups[s] = append(groups[s], p)
	}
	scores := pie.Reverse(pie.Sort(pie.Keys(groups)))

	var pairs []Pair
	var pooled []Player
	for _, s := range scores {
		p, left := e.pairGreedy(byRating(groups[s]), req.History, false)
		pairs = append(pairs, p...)
		pooled = append(pooled, left...)
	}
	if len(pooled) == 0 {
		return pairs
	}

	// pooled keeps group order (score desc) so the bye falls to the lowest
	// group
	var bye *Player
	if len(pooled)%2 == 1 {
		b, rest := pickBye(pooled, req.PriorByes)
		bye, pooled = &b, rest
	}
	p, _ := e.pairGreedy(byRating(pooled), req.History, true)
	pairs = append(pairs, p...)
	if bye != nil {
		pairs = append(pairs, Pair{First: bye.ID})
	}

	return pairs
}
