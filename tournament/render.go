/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/elliotchance/pie/v2"

	"github.com/mikeb26/baduk-td/internal"
)

// Snapshot is a tournament together with the players it references.
type Snapshot struct {
	Tournament *Tournament
	Players    map[string]*Player
}

// Snapshot loads a tournament and its players for display. Players that no
// longer exist are left out; rendering falls back to their id.
func (s *Service) Snapshot(ctx context.Context, id string) (*Snapshot, error) {
	t, err := s.store.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Tournament: t, Players: make(map[string]*Player)}
	load := func(pid string) error {
		if pid == "" || snap.Players[pid] != nil {
			return nil
		}
		p, err := s.store.GetPlayer(ctx, pid)
		if errors.Is(err, ErrNotFound) {
			return nil
		} else if err != nil {
			return err
		}
		snap.Players[pid] = p
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

	return snap, nil
}

func (snap *Snapshot) name(id string) string {
	if p := snap.Players[id]; p != nil {
		return p.Name
	}

	return id
}

// rating is the entrant's final rating once stamped, else the player's
// current one.
func (snap *Snapshot) rating(id string) float64 {
	if e := snap.Tournament.Entrant(id); e != nil && e.FinalRating != nil {
		return e.FinalRating.Rating
	}
	if p := snap.Players[id]; p != nil {
		return p.Rating.Rating
	}

	return 0
}

type Standing struct {
	// Place is shared by entrants on equal score.
	Place  int
	ID     string
	Name   string
	Score  float64
	Rating float64
}

// Standings orders entrants by score, then rating, then name.
func (snap *Snapshot) Standings() []Standing {
	rows := pie.Map(snap.Tournament.Entrants, func(e Entrant) Standing {
		return Standing{
			ID:     e.PlayerID,
			Name:   snap.name(e.PlayerID),
			Score:  e.Score,
			Rating: snap.rating(e.PlayerID),
		}
	})
	rows = pie.SortStableUsing(rows, func(a, b Standing) bool {
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.Name < b.Name
	})
	for idx := range rows {
		if idx > 0 && rows[idx].Score == rows[idx-1].Score {
			rows[idx].Place = rows[idx-1].Place
		} else {
			rows[idx].Place = idx + 1
		}
	}

	return rows
}

// BuildStandingsOutput formats standings into aligned string output
func BuildStandingsOutput(snap *Snapshot) string {
	t := snap.Tournament
	if len(t.Entrants) == 0 {
		return fmt.Sprintf("%v has no entrants yet\n", t.Name)
	}

	var sb strings.Builder
	completed := 0
	for _, r := range t.Rounds {
		if r.Status == RoundCompleted {
			completed++
		}
	}
	switch {
	case t.Status == StatusCompleted:
		sb.WriteString(fmt.Sprintf("%v final standings:\n\n", t.Name))
	case completed == 0:
		sb.WriteString(fmt.Sprintf("%v standings before round 1:\n\n", t.Name))
	default:
		sb.WriteString(fmt.Sprintf("%v standings after round %v:\n\n", t.Name,
			completed))
	}

	type row struct{ place, player, rating, score string }
	var rows []row
	for idx, st := range snap.Standings() {
		place := ""
		if st.Place == idx+1 {
			place = fmt.Sprintf("%v.", st.Place)
		}
		rows = append(rows, row{
			place:  place,
			player: st.Name,
			rating: fmt.Sprintf("%.0f", st.Rating),
			score:  internal.ScoreToString(st.Score),
		})
	}

	// Compute column widths
	maxP, maxN, maxR, maxS := len("Place"), len("Name"), len("Rating"),
		len("Score")
	for _, r := range rows {
		maxP = max(maxP, len(r.place))
		maxN = max(maxN, len(r.player))
		maxR = max(maxR, len(r.rating))
		maxS = max(maxS, len(r.score))
	}

	sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s  %-*s\n", maxP, "Place", maxN,
		"Name", maxR, "Rating", maxS, "Score"))
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s  %-*s\n", maxP, r.place,
			maxN, r.player, maxR, r.rating, maxS, r.score))
	}

	return sb.String()
}

// BuildPairingsOutput formats a round's pairings into aligned string output.
// A zero round selects the latest one.
func BuildPairingsOutput(snap *Snapshot, round int) string {
	t := snap.Tournament
	if round == 0 {
		round = len(t.Rounds)
	}
	r := t.Round(round)
	if r == nil {
		return fmt.Sprintf("%v has no pairings posted yet\n", t.Name)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%v round %v pairings (%v):\n\n", t.Name,
		r.Number, r.Status))

	player := func(id string) string {
		score := 0.0
		if e := t.Entrant(id); e != nil {
			score = e.Score
		}
		return fmt.Sprintf("%s(%.0f %v)", snap.name(id),
			math.Round(snap.rating(id)), internal.ScoreToString(score))
	}

	type row struct{ board, black, white, result string }
	var rows []row
	for idx, p := range r.Pairings {
		if p.IsBye() {
			rows = append(rows, row{board: "n/a", black: player(p.First),
				white: "BYE(1)"})
			continue
		}
		rows = append(rows, row{
			board:  fmt.Sprintf("%d.", idx+1),
			black:  player(p.First),
			white:  player(p.Second),
			result: p.Result,
		})
	}

	// Compute column widths
	maxB, maxBl, maxW := len("Board"), len("Black"), len("White")
	for _, r := range rows {
		maxB = max(maxB, len(r.board))
		maxBl = max(maxBl, len(r.black))
		maxW = max(maxW, len(r.white))
	}

	sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s  %s\n", maxB, "Board", maxBl,
		"Black", maxW, "White", "Result"))
	for _, r := range rows {
		sb.WriteString(strings.TrimRight(fmt.Sprintf("%-*s  %-*s  %-*s  %s",
			maxB, r.board, maxBl, r.black, maxW, r.white, r.result), " "))
		sb.WriteString("\n")
	}

	return sb.String()
}
