/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mikeb26/baduk-td/pairing"
)

// CreateRound pairs the next round with the tournament's pairing system.
// The previous round must be completed. Byes score immediately. The first
// round moves the tournament to ongoing.
func (s *Service) CreateRound(ctx context.Context, id string) (*Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.mutable(ctx, id)
	if err != nil {
		return nil, err
	}
	if last := t.LastRound(); last != nil && last.Status != RoundCompleted {
		return nil, fmt.Errorf("%w: round %v is not completed",
			ErrStateViolation, last.Number)
	}
	number := len(t.Rounds) + 1
	planned := t.PlannedRounds
	if planned == 0 && t.System == pairing.RoundRobin {
		planned = pairing.RoundsFor(len(t.Entrants))
	}
	if planned > 0 && number > planned {
		return nil, fmt.Errorf("%w: all %v planned rounds exist",
			ErrStateViolation, planned)
	}

	pairs, err := s.generate(ctx, t, number, t.Scores())
	if err != nil {
		return nil, err
	}
	t.PlannedRounds = planned
	t.Rounds = append(t.Rounds, Round{
		Number:   number,
		Status:   RoundPending,
		Pairings: toPairings(pairs),
	})
	r := t.LastRound()
	scoreByes(t, r.Pairings, 1)
	if t.Status == StatusUpcoming {
		t.Status = StatusOngoing
	}
	if err := s.store.PutTournament(ctx, t); err != nil {
		return nil, err
	}
	s.roundCreated(t, r, "round created")

	return r, nil
}

// RepairRound discards an open round's pairings and regenerates them. The
// round's own pairings are excluded from the history and bye lookups and
// its bye points are taken back. Recorded results are dropped.
func (s *Service) RepairRound(ctx context.Context, id string,
	number int) (*Round, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	t, r, err := s.openRound(ctx, id, number)
	if err != nil {
		return nil, err
	}
	scores := t.Scores()
	for _, p := range r.Pairings {
		if p.IsBye() {
			scores[p.First]--
		}
	}
	pairs, err := s.generate(ctx, t, number, scores)
	if err != nil {
		return nil, err
	}
	scoreByes(t, r.Pairings, -1)
	r.Pairings = toPairings(pairs)
	r.Status = RoundPending
	scoreByes(t, r.Pairings, 1)
	if err := s.store.PutTournament(ctx, t); err != nil {
		return nil, err
	}
	s.roundCreated(t, r, "round repaired")

	return r, nil
}

// SetPairings replaces an open round's pairings with an explicit list. An
// empty Second is a bye. Players must be enrolled and appear at most once;
// match history is not consulted.
func (s *Service) SetPairings(ctx context.Context, id string, number int,
	pairs []pairing.Pair) (*Round, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	t, r, err := s.openRound(ctx, id, number)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no pairings given", ErrInvalidArgument)
	}
	seen := make(map[string]bool)
	for _, p := range pairs {
		for _, pid := range []string{p.First, p.Second} {
			if pid == "" {
				continue
			}
			if t.Entrant(pid) == nil {
				return nil, fmt.Errorf("%w: player %v is not enrolled",
					ErrInvalidArgument, pid)
			}
			if seen[pid] {
				return nil, fmt.Errorf("%w: player %v paired twice",
					ErrInvalidArgument, pid)
			}
			seen[pid] = true
		}
		if p.First == "" {
			return nil, fmt.Errorf("%w: pairing without a first mover",
				ErrInvalidArgument)
		}
	}

	scoreByes(t, r.Pairings, -1)
	r.Pairings = toPairings(pairs)
	r.Status = RoundPending
	scoreByes(t, r.Pairings, 1)
	if err := s.store.PutTournament(ctx, t); err != nil {
		return nil, err
	}
	s.logFor(t).WithFields(logrus.Fields{
		"round":  r.Number,
		"boards": len(r.Pairings),
	}).Info("pairings set manually")

	return r, nil
}

// RecordResult stores the result of a board (1-based) in an open round. The
// code is validated before anything changes.
func (s *Service) RecordResult(ctx context.Context, id string, number int,
	board int, code string) (*Pairing, error) {

	res, err := ParseResult(code)
	if err != nil {
		return nil, err
	}
	if res.Bye {
		return nil, fmt.Errorf("%w: a bye cannot be recorded on a played board",
			ErrInvalidResultCode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, r, err := s.openRound(ctx, id, number)
	if err != nil {
		return nil, err
	}
	if board < 1 || board > len(r.Pairings) {
		return nil, fmt.Errorf("%w: round %v has no board %v",
			ErrInvalidArgument, number, board)
	}
	p := &r.Pairings[board-1]
	if p.IsBye() {
		return nil, fmt.Errorf("%w: board %v is a bye", ErrInvalidArgument, board)
	}
	p.Result = res.Code
	r.Status = RoundOngoing
	if err := s.store.PutTournament(ctx, t); err != nil {
		return nil, err
	}
	s.rec.ResultRecorded(res.Code)
	s.logFor(t).WithFields(logrus.Fields{
		"round":  number,
		"board":  board,
		"result": res.Code,
	}).Debug("result recorded")

	return p, nil
}

// CompleteRound tallies an open round's results into the scores and, with
// per-round rating, updates the ratings of everyone who played. Unless force
// is set every played board needs a result. Completing the last planned
// round completes the tournament.
func (s *Service) CompleteRound(ctx context.Context, id string, number int,
	force bool) (*Round, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	t, r, err := s.openRound(ctx, id, number)
	if err != nil {
		return nil, err
	}
	if !force {
		missing := 0
		for _, p := range r.Pairings {
			if !p.IsBye() && p.Result == "" {
				missing++
			}
		}
		if missing > 0 {
			return nil, fmt.Errorf("%w: %v boards of round %v have no result",
				ErrStateViolation, missing, number)
		}
	}

	tx, err := s.begin(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := s.closeRound(ctx, tx, r); err != nil {
		return nil, err
	}
	done := t.PlannedRounds > 0 && len(t.Rounds) >= t.PlannedRounds
	for _, other := range t.Rounds {
		done = done && other.Status == RoundCompleted
	}
	if done {
		if err := s.finish(ctx, tx); err != nil {
			return nil, err
		}
	}
	if err := s.commit(ctx, tx); err != nil {
		return nil, err
	}

	s.rec.RoundCompleted(force)
	s.logFor(t).WithFields(logrus.Fields{
		"round":  number,
		"forced": force,
	}).Info("round completed")
	if done {
		s.tournamentCompleted(t)
	}

	return r, nil
}

// CompleteTournament closes any open round with the results recorded so
// far, applies the tournament rating period if configured, and stamps every
// entrant's final rating. Completed tournaments are immutable.
func (s *Service) CompleteTournament(ctx context.Context,
	id string) (*Tournament, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.mutable(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusOngoing {
		return nil, fmt.Errorf("%w: only ongoing tournaments can be completed",
			ErrStateViolation)
	}

	tx, err := s.begin(ctx, t)
	if err != nil {
		return nil, err
	}
	for idx := range t.Rounds {
		if r := &t.Rounds[idx]; r.Status != RoundCompleted {
			if err := s.closeRound(ctx, tx, r); err != nil {
				return nil, err
			}
		}
	}
	if err := s.finish(ctx, tx); err != nil {
		return nil, err
	}
	if err := s.commit(ctx, tx); err != nil {
		return nil, err
	}
	s.tournamentCompleted(t)

	return t, nil
}

// openRound loads a mutable tournament and one of its rounds that is not
// yet completed.
func (s *Service) openRound(ctx context.Context, id string,
	number int) (*Tournament, *Round, error) {

	t, err := s.mutable(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	r := t.Round(number)
	if r == nil {
		return nil, nil, fmt.Errorf("%w: tournament %v has no round %v",
			ErrNotFound, t.Name, number)
	}
	if r.Status == RoundCompleted {
		return nil, nil, fmt.Errorf("%w: round %v is completed",
			ErrStateViolation, number)
	}

	return t, r, nil
}

// generate runs the pairing engine for round number over the enrolled
// players in enrollment order.
func (s *Service) generate(ctx context.Context, t *Tournament, number int,
	scores map[string]float64) ([]pairing.Pair, error) {

	pool := make([]pairing.Player, 0, len(t.Entrants))
	for _, e := range t.Entrants {
		p, err := s.store.GetPlayer(ctx, e.PlayerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load entrant %v: %w", e.PlayerID,
				err)
		}
		pool = append(pool, pairing.Player{ID: p.ID, Rating: p.Rating.Rating})
	}

	pairs, err := s.pairer.Generate(pairing.Request{
		Players:   pool,
		Scores:    scores,
		History:   t.History(number),
		PriorByes: t.PriorByes(number),
		Policy:    t.System,
		Round:     number,
	})
	if err != nil {
		return nil, fmt.Errorf("tournament %v round %v: %w", t.Name, number, err)
	}

	return pairs, nil
}

func toPairings(pairs []pairing.Pair) []Pairing {
	out := make([]Pairing, 0, len(pairs))
	for _, p := range pairs {
		tp := Pairing{First: p.First, Second: p.Second}
		if p.IsBye() {
			tp.Result = ResultBye
		}
		out = append(out, tp)
	}

	return out
}

// scoreByes adds sign points to every bye receiver in pairings.
func scoreByes(t *Tournament, pairings []Pairing, sign float64) {
	for _, p := range pairings {
		if !p.IsBye() {
			continue
		}
		if e := t.Entrant(p.First); e != nil {
			e.Score += sign
		}
	}
}

// tally adds the recorded results of r to the entrants' scores.
func tally(t *Tournament, r *Round) {
	for _, p := range r.Pairings {
		if p.IsBye() || p.Result == "" {
			continue
		}
		res, err := ParseResult(p.Result)
		if err != nil || res.Bye {
			continue
		}
		if e := t.Entrant(p.First); e != nil {
			e.Score += res.First
		}
		if e := t.Entrant(p.Second); e != nil {
			e.Score += res.Second
		}
	}
}

func (s *Service) roundCreated(t *Tournament, r *Round, msg string) {
	byes := 0
	for _, p := range r.Pairings {
		if p.IsBye() {
			byes++
		}
	}
	s.rec.PairingsGenerated(string(t.System), len(r.Pairings)-byes, byes)
	s.logFor(t).WithFields(logrus.Fields{
		"round":  r.Number,
		"policy": t.System,
		"boards": len(r.Pairings) - byes,
		"byes":   byes,
	}).Info(msg)
}

func (s *Service) tournamentCompleted(t *Tournament) {
	s.rec.TournamentCompleted(string(t.System))
	s.logFor(t).WithField("rounds", len(t.Rounds)).Info("tournament completed")
}
