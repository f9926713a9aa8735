/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikeb26/baduk-td/pairing"
	"github.com/mikeb26/baduk-td/tournament"
)

// latest maps a round flag of 0 to the tournament's most recent round.
func latest(t *tournament.Tournament, round int) int {
	if round == 0 {
		return len(t.Rounds)
	}
	return round
}

func handlePair(ctx context.Context, td *app, args []string) error {
	fs := td.flags("pair")
	ref := fs.String("t", "", "Tournament id or name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := td.tournament(ctx, *ref)
	if err != nil {
		return err
	}
	r, err := td.svc.CreateRound(ctx, t.ID)
	if err != nil {
		return err
	}

	return td.printPairings(ctx, t.ID, r.Number)
}

func handleRepair(ctx context.Context, td *app, args []string) error {
	fs := td.flags("repair")
	ref := fs.String("t", "", "Tournament id or name")
	round := fs.Int("round", 0, "Round number (default latest)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := td.tournament(ctx, *ref)
	if err != nil {
		return err
	}
	r, err := td.svc.RepairRound(ctx, t.ID, latest(t, *round))
	if err != nil {
		return err
	}

	return td.printPairings(ctx, t.ID, r.Number)
}

// handleSetPairings takes one argument per board: "black,white" or a lone
// player for a bye. Players may be given by id, id prefix or name.
func handleSetPairings(ctx context.Context, td *app, args []string) error {
	fs := td.flags("set-pairings")
	ref := fs.String("t", "", "Tournament id or name")
	round := fs.Int("round", 0, "Round number (default latest)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("please list the boards, e.g. 'alice,bob carol'")
	}
	t, err := td.tournament(ctx, *ref)
	if err != nil {
		return err
	}

	var pairs []pairing.Pair
	for _, board := range fs.Args() {
		refs := strings.Split(board, ",")
		if len(refs) > 2 {
			return fmt.Errorf("board %q names more than two players", board)
		}
		var pair pairing.Pair
		for i, pref := range refs {
			p, err := td.player(ctx, strings.TrimSpace(pref))
			if err != nil {
				return err
			}
			if i == 0 {
				pair.First = p.ID
			} else {
				pair.Second = p.ID
			}
		}
		pairs = append(pairs, pair)
	}

	r, err := td.svc.SetPairings(ctx, t.ID, latest(t, *round), pairs)
	if err != nil {
		return err
	}

	return td.printPairings(ctx, t.ID, r.Number)
}

func handleResult(ctx context.Context, td *app, args []string) error {
	fs := td.flags("result")
	ref := fs.String("t", "", "Tournament id or name")
	round := fs.Int("round", 0, "Round number (default latest)")
	board := fs.Int("board", 0, "Board number")
	code := fs.String("code", "", "Result: B+R, W+T, B+6.5, JIGO, ...")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := td.tournament(ctx, *ref)
	if err != nil {
		return err
	}
	p, err := td.svc.RecordResult(ctx, t.ID, latest(t, *round), *board, *code)
	if err != nil {
		return err
	}
	fmt.Fprintf(td.out, "Board %v: %v\n", *board, p.Result)

	return nil
}

func handleCompleteRound(ctx context.Context, td *app, args []string) error {
	fs := td.flags("complete-round")
	ref := fs.String("t", "", "Tournament id or name")
	round := fs.Int("round", 0, "Round number (default latest)")
	force := fs.Bool("force", false,
		"Complete even if some boards have no result")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := td.tournament(ctx, *ref)
	if err != nil {
		return err
	}
	r, err := td.svc.CompleteRound(ctx, t.ID, latest(t, *round), *force)
	if err != nil {
		return err
	}
	fmt.Fprintf(td.out, "Round %v completed\n\n", r.Number)

	return handleStandings(ctx, td, []string{"-t", t.ID})
}

func handleComplete(ctx context.Context, td *app, args []string) error {
	fs := td.flags("complete")
	ref := fs.String("t", "", "Tournament id or name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := td.tournament(ctx, *ref)
	if err != nil {
		return err
	}
	if _, err := td.svc.CompleteTournament(ctx, t.ID); err != nil {
		return err
	}

	return handleStandings(ctx, td, []string{"-t", t.ID})
}
