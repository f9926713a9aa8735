/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeb26/baduk-td/glicko2"
	"github.com/mikeb26/baduk-td/pairing"
	"github.com/mikeb26/baduk-td/tournament"
)

// club registers four players, plays a round of Spring Open with all of
// them and one game of Summer Open between the first two.
func (f *fixture) club(t *testing.T) (spring, summer *tournament.Tournament,
	players []*tournament.Player) {

	t.Helper()

	for _, name := range []string{"Lee", "Cho", "Park", "Kim"} {
		p, err := f.svc.CreatePlayer(f.ctx, name, glicko2.Rating{})
		require.NoError(t, err)
		players = append(players, p)
	}
	open := func(name string, start time.Time,
		entrants []*tournament.Player) *tournament.Tournament {

		tour, err := f.svc.CreateTournament(f.ctx, tournament.Details{
			Name: name, StartDate: start}, pairing.Swiss)
		require.NoError(t, err)
		for _, p := range entrants {
			_, err = f.svc.Enroll(f.ctx, tour.ID, p.ID)
			require.NoError(t, err)
		}
		_, err = f.svc.CreateRound(f.ctx, tour.ID)
		require.NoError(t, err)
		return tour
	}

	spring = open("Spring Open", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		players)
	f.playAll(t, spring.ID, 1, "B+R")
	_, err := f.svc.CompleteRound(f.ctx, spring.ID, 1, false)
	require.NoError(t, err)

	summer = open("Summer Open", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		players[:2])
	f.playAll(t, summer.ID, 1, "W+2.5")

	return f.tournament(t, spring.ID), f.tournament(t, summer.ID), players
}

func TestPlayerGames(t *testing.T) {
	f := newFixture(t, tournament.PeriodRound)
	spring, summer, players := f.club(t)
	lee := players[0]

	p, games, err := f.svc.PlayerGames(f.ctx, "lee", 0)
	require.NoError(t, err)
	assert.Equal(t, lee.ID, p.ID)
	require.Len(t, games, 2)

	// newest tournament first
	latest := games[0]
	assert.Equal(t, summer.ID, latest.TournamentID)
	assert.Equal(t, "Summer Open", latest.TournamentName)
	assert.Equal(t, 1, latest.Round)
	assert.Equal(t, "Cho", latest.OpponentName)
	assert.Equal(t, "W+2.5", latest.Result)
	board := summer.Round(1).Pairings[0]
	if board.First == lee.ID {
		assert.Equal(t, tournament.Black, latest.Color)
		assert.Equal(t, 0.0, latest.Score)
	} else {
		assert.Equal(t, tournament.White, latest.Color)
		assert.Equal(t, 1.0, latest.Score)
	}

	earlier := games[1]
	assert.Equal(t, spring.ID, earlier.TournamentID)
	assert.Equal(t, "B+R", earlier.Result)
	for _, pr := range spring.Round(1).Pairings {
		if !pr.Has(lee.ID) {
			continue
		}
		if pr.First == lee.ID {
			assert.Equal(t, tournament.Black, earlier.Color)
			assert.Equal(t, pr.Second, earlier.OpponentID)
			assert.Equal(t, 1.0, earlier.Score)
		} else {
			assert.Equal(t, tournament.White, earlier.Color)
			assert.Equal(t, pr.First, earlier.OpponentID)
			assert.Equal(t, 0.0, earlier.Score)
		}
	}

	_, games, err = f.svc.PlayerGames(f.ctx, lee.ID, 1)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, summer.ID, games[0].TournamentID)

	// Park only played in the spring
	_, games, err = f.svc.PlayerGames(f.ctx, "Park", tournament.RecentGames)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, spring.ID, games[0].TournamentID)

	newcomer, err := f.svc.CreatePlayer(f.ctx, "Yu", glicko2.Rating{})
	require.NoError(t, err)
	_, games, err = f.svc.PlayerGames(f.ctx, newcomer.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, games)

	_, _, err = f.svc.PlayerGames(f.ctx, "Nobody", 0)
	assert.ErrorIs(t, err, tournament.ErrNotFound)
}

func TestSummary(t *testing.T) {
	f := newFixture(t, tournament.PeriodRound)
	spring, _, _ := f.club(t)

	// last played well outside the active window
	_, err := f.svc.AddPlayer(f.ctx, tournament.Player{
		Name:       "Seo",
		Rating:     glicko2.Rating{Rating: 1700, Deviation: 80, Volatility: 0.06},
		LastActive: fixedNow.Add(-tournament.ActiveWindow - time.Hour),
	})
	require.NoError(t, err)
	_, err = f.svc.CompleteTournament(f.ctx, spring.ID)
	require.NoError(t, err)
	_, err = f.svc.CreateTournament(f.ctx, tournament.Details{
		Name: "Winter Cup"}, pairing.MacMahon)
	require.NoError(t, err)

	sum, err := f.svc.Summary(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Players)
	assert.Equal(t, 4, sum.ActivePlayers)

	players, err := f.svc.ListPlayers(f.ctx)
	require.NoError(t, err)
	total := 0.0
	for _, p := range players {
		total += p.Rating.Rating
	}
	assert.InDelta(t, total/5, sum.AverageRating, 1e-9)

	assert.Equal(t, map[tournament.Status]int{
		tournament.StatusUpcoming:  1,
		tournament.StatusOngoing:   1,
		tournament.StatusCompleted: 1,
	}, sum.Tournaments)
}

func TestSummary_EmptyClub(t *testing.T) {
	f := newFixture(t, tournament.PeriodRound)

	sum, err := f.svc.Summary(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, sum.Players)
	assert.Zero(t, sum.AverageRating)
	assert.Equal(t, 0, sum.Tournaments[tournament.StatusOngoing])
}
