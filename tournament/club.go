/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament

import (
	"context"
	"time"

	"github.com/elliotchance/pie/v2"
)

const (
	// RecentGames is how many games a player profile shows by default.
	RecentGames = 10

	// ActiveWindow is how recently a player must have played to count as
	// active in the club summary.
	ActiveWindow = 90 * 24 * time.Hour
)

type Color string

const (
	Black Color = "black"
	White Color = "white"
)

// Game is one decided board seen from one player's side.
type Game struct {
	TournamentID   string
	TournamentName string
	Date           time.Time
	Round          int
	Color          Color
	OpponentID     string
	OpponentName   string
	Result         string
	Score          float64
}

// when orders tournaments for game history: the start date when one was
// given, else the creation time.
func (t *Tournament) when() time.Time {
	if !t.StartDate.IsZero() {
		return t.StartDate
	}

	return t.CreatedAt
}

// PlayerGames resolves ref like FindPlayer and returns the player with
// their decided games across every tournament, newest first. Byes and
// boards still awaiting a result are skipped. A limit of zero or less
// returns every game.
func (s *Service) PlayerGames(ctx context.Context, ref string,
	limit int) (*Player, []Game, error) {

	p, err := s.FindPlayer(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	ts, err := s.store.ListTournaments(ctx)
	if err != nil {
		return nil, nil, err
	}
	ts = pie.SortStableUsing(ts, func(a, b *Tournament) bool {
		if !a.when().Equal(b.when()) {
			return a.when().After(b.when())
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	names := map[string]string{p.ID: p.Name}
	var games []Game
	for _, t := range ts {
		for ri := len(t.Rounds) - 1; ri >= 0; ri-- {
			r := t.Rounds[ri]
			for _, pr := range r.Pairings {
				if pr.IsBye() || pr.Result == "" || !pr.Has(p.ID) {
					continue
				}
				res, err := ParseResult(pr.Result)
				if err != nil {
					return nil, nil, err
				}
				g := Game{
					TournamentID:   t.ID,
					TournamentName: t.Name,
					Date:           t.when(),
					Round:          r.Number,
					Color:          Black,
					OpponentID:     pr.Second,
					Result:         res.Code,
					Score:          res.First,
				}
				if pr.Second == p.ID {
					g.Color, g.OpponentID, g.Score = White, pr.First, res.Second
				}
				games = append(games, g)
			}
			if limit > 0 && len(games) >= limit {
				break
			}
		}
		if limit > 0 && len(games) >= limit {
			games = games[:limit]
			break
		}
	}

	for idx := range games {
		g := &games[idx]
		if name, ok := names[g.OpponentID]; ok {
			g.OpponentName = name
			continue
		}
		g.OpponentName = g.OpponentID
		if opp, err := s.store.GetPlayer(ctx, g.OpponentID); err == nil {
			g.OpponentName = opp.Name
		}
		names[g.OpponentID] = g.OpponentName
	}

	return p, games, nil
}

// ClubSummary is the director's overview of the club.
type ClubSummary struct {
	Players       int
	ActivePlayers int
	AverageRating float64
	Tournaments   map[Status]int
}

// Summary counts players and tournaments. A player is active when they
// last played within ActiveWindow of now.
func (s *Service) Summary(ctx context.Context) (*ClubSummary, error) {
	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	ts, err := s.store.ListTournaments(ctx)
	if err != nil {
		return nil, err
	}

	sum := &ClubSummary{
		Players: len(players),
		Tournaments: map[Status]int{
			StatusUpcoming:  0,
			StatusOngoing:   0,
			StatusCompleted: 0,
		},
	}
	cutoff := s.now().Add(-ActiveWindow)
	total := 0.0
	for _, p := range players {
		total += p.Rating.Rating
		if !p.LastActive.IsZero() && !p.LastActive.Before(cutoff) {
			sum.ActivePlayers++
		}
	}
	if len(players) > 0 {
		sum.AverageRating = total / float64(len(players))
	}
	for _, t := range ts {
		sum.Tournaments[t.Status]++
	}

	return sum, nil
}
