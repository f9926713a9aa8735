/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package tournament coordinates the lifecycle of a tournament: enrollment,
// round creation through the pairing engine, result entry, score tallies and
// rating updates through the Glicko-2 engine.
package tournament

import (
	"time"

	"github.com/mikeb26/baduk-td/glicko2"
	"github.com/mikeb26/baduk-td/pairing"
)

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
)

type RoundStatus string

const (
	RoundPending   RoundStatus = "pending"
	RoundOngoing   RoundStatus = "ongoing"
	RoundCompleted RoundStatus = "completed"
)

// Player is a registered club member and their current rating.
type Player struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Rating     glicko2.Rating `json:"rating"`
	LastActive time.Time      `json:"lastActive,omitempty"`
}

// Entrant is a player's enrollment in one tournament.
type Entrant struct {
	PlayerID      string          `json:"playerId"`
	InitialRating glicko2.Rating  `json:"initialRating"`
	FinalRating   *glicko2.Rating `json:"finalRating,omitempty"`
	Score         float64         `json:"score"`
}

// Pairing is one board of a round. Second is empty for a bye.
type Pairing struct {
	First  string `json:"first"`
	Second string `json:"second,omitempty"`
	Result string `json:"result,omitempty"`
}

func (p Pairing) IsBye() bool {
	return p.Second == ""
}

func (p Pairing) Has(playerID string) bool {
	return p.First == playerID || (p.Second != "" && p.Second == playerID)
}

type Round struct {
	Number   int         `json:"number"`
	Status   RoundStatus `json:"status"`
	Pairings []Pairing   `json:"pairings"`
}

type Tournament struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Location      string         `json:"location,omitempty"`
	Description   string         `json:"description,omitempty"`
	StartDate     time.Time      `json:"startDate,omitempty"`
	EndDate       time.Time      `json:"endDate,omitempty"`
	Status        Status         `json:"status"`
	System        pairing.Policy `json:"system"`
	PlannedRounds int            `json:"plannedRounds,omitempty"`
	Entrants      []Entrant      `json:"entrants"`
	Rounds        []Round        `json:"rounds"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func (t *Tournament) Entrant(playerID string) *Entrant {
	for idx := range t.Entrants {
		if t.Entrants[idx].PlayerID == playerID {
			return &t.Entrants[idx]
		}
	}

	return nil
}

// Round returns the round with the given 1-based number or nil.
func (t *Tournament) Round(number int) *Round {
	if number < 1 || number > len(t.Rounds) {
		return nil
	}

	return &t.Rounds[number-1]
}

func (t *Tournament) LastRound() *Round {
	if len(t.Rounds) == 0 {
		return nil
	}

	return &t.Rounds[len(t.Rounds)-1]
}

// History returns every pair played in the tournament, skipping the round
// numbered exclude (0 skips nothing).
func (t *Tournament) History(exclude int) pairing.History {
	h := pairing.NewHistory()
	for _, r := range t.Rounds {
		if r.Number == exclude {
			continue
		}
		for _, p := range r.Pairings {
			h.Add(p.First, p.Second)
		}
	}

	return h
}

// PriorByes returns the players who received a bye outside round exclude.
func (t *Tournament) PriorByes(exclude int) map[string]bool {
	out := make(map[string]bool)
	for _, r := range t.Rounds {
		if r.Number == exclude {
			continue
		}
		for _, p := range r.Pairings {
			if p.IsBye() {
				out[p.First] = true
			}
		}
	}

	return out
}

func (t *Tournament) Scores() map[string]float64 {
	out := make(map[string]float64, len(t.Entrants))
	for _, e := range t.Entrants {
		out[e.PlayerID] = e.Score
	}

	return out
}
