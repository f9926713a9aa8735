/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult(t *testing.T) {
	cases := []struct {
		in            string
		code          string
		first, second float64
		bye           bool
	}{
		{"B+R", "B+R", 1, 0, false},
		{"b+t", "B+T", 1, 0, false},
		{"B+F", "B+F", 1, 0, false},
		{"B+6.5", "B+6.5", 1, 0, false},
		{"B+0.50", "B+0.5", 1, 0, false},
		{"W+R", "W+R", 0, 1, false},
		{" W+12 ", "W+12", 0, 1, false},
		{"Jigo", "JIGO", 0.5, 0.5, false},
		{"Draw", "JIGO", 0.5, 0.5, false},
		{"=", "JIGO", 0.5, 0.5, false},
		{"bye", "BYE", 1, 0, true},
	}
	for _, c := range cases {
		got, err := ParseResult(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.code, got.Code, c.in)
		assert.Equal(t, c.first, got.First, c.in)
		assert.Equal(t, c.second, got.Second, c.in)
		assert.Equal(t, c.bye, got.Bye, c.in)
	}

	for _, bad := range []string{"", "B", "B+", "B+0", "B+x", "R+R", "1-0",
		"BW+R", "W+NaN"} {

		_, err := ParseResult(bad)
		assert.ErrorIs(t, err, ErrInvalidResultCode, bad)
	}
}

func TestTournamentHelpers(t *testing.T) {
	tour := &Tournament{
		Entrants: []Entrant{
			{PlayerID: "a", Score: 1},
			{PlayerID: "b", Score: 0.5},
			{PlayerID: "c", Score: 1.5},
		},
		Rounds: []Round{
			{Number: 1, Pairings: []Pairing{
				{First: "a", Second: "b", Result: "B+R"},
				{First: "c", Result: ResultBye},
			}},
			{Number: 2, Pairings: []Pairing{
				{First: "c", Second: "b"},
				{First: "a", Result: ResultBye},
			}},
		},
	}

	h := tour.History(0)
	assert.True(t, h.Has("b", "a"))
	assert.True(t, h.Has("b", "c"))
	assert.Len(t, h, 2)
	assert.False(t, tour.History(2).Has("b", "c"))

	assert.Equal(t, map[string]bool{"a": true, "c": true}, tour.PriorByes(0))
	assert.Equal(t, map[string]bool{"c": true}, tour.PriorByes(2))

	assert.Equal(t, map[string]float64{"a": 1, "b": 0.5, "c": 1.5},
		tour.Scores())
	assert.Nil(t, tour.Round(3))
	assert.Equal(t, 2, tour.LastRound().Number)
	assert.True(t, tour.Rounds[0].Pairings[1].Has("c"))
	assert.False(t, tour.Rounds[0].Pairings[1].Has(""))
}
