/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mikeb26/baduk-td/glicko2"
)

// txn collects the in-memory changes of one completion so that nothing is
// written until every rating computation has succeeded.
type txn struct {
	t       *Tournament
	players map[string]*Player
	dirty   map[string]bool
}

// begin loads every player the tournament references, including withdrawn
// players who still appear in played pairings.
func (s *Service) begin(ctx context.Context, t *Tournament) (*txn, error) {
	tx := &txn{
		t:       t,
		players: make(map[string]*Player),
		dirty:   make(map[string]bool),
	}
	load := func(id string) error {
		if id == "" || tx.players[id] != nil {
			return nil
		}
		p, err := s.store.GetPlayer(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load player %v: %w", id, err)
		}
		tx.players[id] = p
		return nil
	}
	for _, e := range t.Entrants {
		if err := load(e.PlayerID); err != nil {
			return nil, err
		}
	}
	for _, r := range t.Rounds {
		for _, p := range r.Pairings {
			if err := load(p.First); err != nil {
				return nil, err
			}
			if err := load(p.Second); err != nil {
				return nil, err
			}
		}
	}

	return tx, nil
}

// closeRound rates r (per-round period only), then tallies it and marks it
// completed.
func (s *Service) closeRound(ctx context.Context, tx *txn, r *Round) error {
	if s.period == PeriodRound {
		updates, err := s.rateAll(ctx, tx.players, outcomes(tx.players, *r))
		if err != nil {
			return fmt.Errorf("round %v: %w", r.Number, err)
		}
		s.apply(tx, updates)
	}
	tally(tx.t, r)
	r.Status = RoundCompleted

	return nil
}

// finish rates the whole tournament (tournament period only), stamps final
// ratings and marks the tournament completed.
func (s *Service) finish(ctx context.Context, tx *txn) error {
	if s.period == PeriodTournament {
		updates, err := s.rateAll(ctx, tx.players,
			outcomes(tx.players, tx.t.Rounds...))
		if err != nil {
			return fmt.Errorf("tournament %v: %w", tx.t.Name, err)
		}
		s.apply(tx, updates)
	}
	for idx := range tx.t.Entrants {
		e := &tx.t.Entrants[idx]
		if p := tx.players[e.PlayerID]; p != nil {
			final := p.Rating
			e.FinalRating = &final
		}
	}
	tx.t.Status = StatusCompleted

	return nil
}

func (s *Service) apply(tx *txn, updates map[string]glicko2.Rating) {
	now := s.now()
	for id, r := range updates {
		p := tx.players[id]
		p.Rating = r
		p.LastActive = now
		tx.dirty[id] = true
	}
	s.rec.RatingsUpdated(len(updates))
}

// commit writes changed players, then the tournament.
func (s *Service) commit(ctx context.Context, tx *txn) error {
	ids := make([]string, 0, len(tx.dirty))
	for id := range tx.dirty {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := s.store.PutPlayer(ctx, tx.players[id]); err != nil {
			return fmt.Errorf("failed to save player %v: %w", id, err)
		}
	}

	return s.store.PutTournament(ctx, tx.t)
}

// rateAll computes every player's new rating from the ratings in players,
// which must not change until all results are in. Players are independent
// so they are rated concurrently.
func (s *Service) rateAll(ctx context.Context, players map[string]*Player,
	byPlayer map[string][]glicko2.Outcome) (map[string]glicko2.Rating, error) {

	var mu sync.Mutex
	out := make(map[string]glicko2.Rating, len(byPlayer))

	g, ctx := errgroup.WithContext(ctx)
	for id, games := range byPlayer {
		cur := players[id].Rating
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			next, err := s.rater.Rate(cur, games)
			if err != nil {
				return fmt.Errorf("failed to rate player %v: %w", id, err)
			}
			mu.Lock()
			out[id] = next
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// outcomes collects, per player, the rated games in rounds. Byes and boards
// without a result are skipped.
func outcomes(players map[string]*Player,
	rounds ...Round) map[string][]glicko2.Outcome {

	out := make(map[string][]glicko2.Outcome)
	for _, r := range rounds {
		for _, p := range r.Pairings {
			if p.IsBye() || p.Result == "" {
				continue
			}
			res, err := ParseResult(p.Result)
			if err != nil || res.Bye {
				continue
			}
			first, second := players[p.First], players[p.Second]
			if first == nil || second == nil {
				continue
			}
			out[first.ID] = append(out[first.ID], glicko2.Outcome{
				OpponentRating:    second.Rating.Rating,
				OpponentDeviation: second.Rating.Deviation,
				Score:             res.First,
			})
			out[second.ID] = append(out[second.ID], glicko2.Outcome{
				OpponentRating:    first.Rating.Rating,
				OpponentDeviation: first.Rating.Deviation,
				Score:             res.Second,
			})
		}
	}

	return out
}
