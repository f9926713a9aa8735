/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

package glicko2

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRate_NoOutcomesIsNoop(t *testing.T) {
	cur := Rating{Rating: 1712.3, Deviation: 87.1, Volatility: 0.059}
	got, err := Rate(cur, nil)
	require.NoError(t, err)
	assert.Equal(t, cur, got)

	got, err = Rate(cur, []Outcome{})
	require.NoError(t, err)
	assert.Equal(t, cur, got)
}

// Worked example from Glickman's Glicko-2 paper.
func TestRate_PaperExample(t *testing.T) {
	cur := Rating{Rating: 1500, Deviation: 200, Volatility: 0.06}
	outcomes := []Outcome{
		{OpponentRating: 1400, OpponentDeviation: 30, Score: 1},
		{OpponentRating: 1550, OpponentDeviation: 100, Score: 0},
		{OpponentRating: 1700, OpponentDeviation: 300, Score: 0},
	}

	got, err := Rate(cur, outcomes)
	require.NoError(t, err)
	assert.InDelta(t, 1464.06, got.Rating, 0.05)
	assert.InDelta(t, 151.52, got.Deviation, 0.05)
	assert.InDelta(t, 0.05999, got.Volatility, 0.00001)
}

func TestRate_SingleWinAgainstWeakerCertainOpponent(t *testing.T) {
	cur := Rating{Rating: 1500, Deviation: 200, Volatility: 0.06}
	got, err := Rate(cur, []Outcome{
		{OpponentRating: 1400, OpponentDeviation: 30, Score: 1},
	})
	require.NoError(t, err)
	assert.Greater(t, got.Rating, 1500.0)
	assert.Less(t, got.Deviation, 200.0)
	assert.InDelta(t, 1563.564, got.Rating, 0.01)
	assert.InDelta(t, 175.403, got.Deviation, 0.01)
	assert.InDelta(t, 0.0599987, got.Volatility, 0.000001)
}

func TestRate_DecisiveResultBetweenEquals(t *testing.T) {
	a := Rating{Rating: 1600, Deviation: 120, Volatility: 0.06}
	b := a

	winner, err := Rate(a, []Outcome{{OpponentRating: b.Rating,
		OpponentDeviation: b.Deviation, Score: 1}})
	require.NoError(t, err)
	loser, err := Rate(b, []Outcome{{OpponentRating: a.Rating,
		OpponentDeviation: a.Deviation, Score: 0}})
	require.NoError(t, err)

	assert.Greater(t, winner.Rating, a.Rating)
	assert.Less(t, loser.Rating, b.Rating)
	// symmetric inputs move both players by the same amount
	assert.InDelta(t, winner.Rating-a.Rating, b.Rating-loser.Rating, 1e-9)
}

func TestRate_DrawBetweenEqualsKeepsRating(t *testing.T) {
	cur := Rating{Rating: 1450, Deviation: 90, Volatility: 0.06}
	got, err := Rate(cur, []Outcome{{OpponentRating: 1450,
		OpponentDeviation: 90, Score: 0.5}})
	require.NoError(t, err)
	assert.InDelta(t, cur.Rating, got.Rating, 1e-9)
}

func TestRate_DeviationShrinks(t *testing.T) {
	cases := []struct {
		name     string
		cur      Rating
		outcomes []Outcome
		surprise bool
	}{
		{"expected win", Rating{1800, 150, 0.06},
			[]Outcome{{1500, 80, 1}}, false},
		{"draw", Rating{1500, 350, 0.06},
			[]Outcome{{1500, 350, 0.5}}, false},
		{"several games", Rating{1620, 60, 0.05},
			[]Outcome{{1600, 70, 1}, {1650, 50, 0}, {1580, 90, 0.5}}, false},
		{"upset loss", Rating{2100, 40, 0.06},
			[]Outcome{{1300, 40, 0}}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Rate(c.cur, c.outcomes)
			require.NoError(t, err)

			// never above the deviation of a period without games
			idle := math.Sqrt(c.cur.Deviation*c.cur.Deviation +
				math.Pow(got.Volatility*Scale, 2))
			assert.Less(t, got.Deviation, idle)
			if !c.surprise {
				assert.Less(t, got.Deviation, c.cur.Deviation)
			}
		})
	}
}

func TestRate_InvalidInputs(t *testing.T) {
	cases := []struct {
		name     string
		cur      Rating
		outcomes []Outcome
	}{
		{"zero deviation", Rating{1500, 0, 0.06}, nil},
		{"negative volatility", Rating{1500, 200, -0.1}, nil},
		{"nan rating", Rating{math.NaN(), 200, 0.06}, nil},
		{"bad opponent deviation", Rating{1500, 200, 0.06},
			[]Outcome{{1500, 0, 1}}},
		{"score out of range", Rating{1500, 200, 0.06},
			[]Outcome{{1500, 100, 2}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Rate(c.cur, c.outcomes)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrComputation))
		})
	}
}

func TestRate_IterationBoundSurfacesError(t *testing.T) {
	r := NewRater(DefaultTau)
	r.MaxIterations = 1

	_, err := r.Rate(Rating{Rating: 1500, Deviation: 200, Volatility: 0.06},
		[]Outcome{
			{OpponentRating: 1400, OpponentDeviation: 30, Score: 1},
			{OpponentRating: 1550, OpponentDeviation: 100, Score: 0},
			{OpponentRating: 1700, OpponentDeviation: 300, Score: 0},
		})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrComputation)
}

func TestNewRater_DefaultsTau(t *testing.T) {
	r := NewRater(0)
	assert.Equal(t, DefaultTau, r.Tau)
	assert.Equal(t, DefaultMaxIterations, r.MaxIterations)
}
