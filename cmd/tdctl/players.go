/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mikeb26/baduk-td/glicko2"
	"github.com/mikeb26/baduk-td/internal"
	"github.com/mikeb26/baduk-td/roster"
	"github.com/mikeb26/baduk-td/tournament"
)

func handlePlayerAdd(ctx context.Context, td *app, args []string) error {
	fs := td.flags("player-add")
	name := fs.String("name", "", "Player name")
	rating := fs.Float64("rating", glicko2.DefaultRating, "Initial rating")
	rd := fs.Float64("rd", glicko2.DefaultDeviation, "Initial rating deviation")
	vol := fs.Float64("vol", glicko2.DefaultVolatility, "Initial volatility")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := td.svc.CreatePlayer(ctx, *name, glicko2.Rating{
		Rating:     *rating,
		Deviation:  *rd,
		Volatility: *vol,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(td.out, "Created player %v (%v)\n", p.Name, p.ID)

	return nil
}

func handlePlayers(ctx context.Context, td *app, args []string) error {
	fs := td.flags("players")
	if err := fs.Parse(args); err != nil {
		return err
	}
	players, err := td.svc.ListPlayers(ctx)
	if err != nil {
		return err
	}
	if len(players) == 0 {
		fmt.Fprintln(td.out, "No players registered.")
		return nil
	}

	fmt.Fprintf(td.out, "%-8s  %-28s  %6s  %5s  %6s  %s\n", "ID", "Name",
		"Rating", "RD", "Vol", "Last active")
	for _, p := range players {
		active := "-"
		if !p.LastActive.IsZero() {
			active = p.LastActive.Format("2006-01-02")
		}
		fmt.Fprintf(td.out, "%-8s  %-28s  %6.0f  %5.0f  %6.4f  %s\n",
			shortID(p.ID), p.Name, p.Rating.Rating, p.Rating.Deviation,
			p.Rating.Volatility, active)
	}

	return nil
}

func handleEnroll(ctx context.Context, td *app, args []string) error {
	fs := td.flags("enroll")
	tref := fs.String("t", "", "Tournament id or name")
	pref := fs.String("p", "", "Player id or name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := td.tournament(ctx, *tref)
	if err != nil {
		return err
	}
	p, err := td.player(ctx, *pref)
	if err != nil {
		return err
	}
	t, err = td.svc.Enroll(ctx, t.ID, p.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(td.out, "Enrolled %v in %v (%v players)\n", p.Name, t.Name,
		len(t.Entrants))

	return nil
}

func handleWithdraw(ctx context.Context, td *app, args []string) error {
	fs := td.flags("withdraw")
	tref := fs.String("t", "", "Tournament id or name")
	pref := fs.String("p", "", "Player id or name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := td.tournament(ctx, *tref)
	if err != nil {
		return err
	}
	p, err := td.player(ctx, *pref)
	if err != nil {
		return err
	}
	t, err = td.svc.Withdraw(ctx, t.ID, p.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(td.out, "Withdrew %v from %v (%v players)\n", p.Name, t.Name,
		len(t.Entrants))

	return nil
}

func handleImport(ctx context.Context, td *app, args []string) error {
	fs := td.flags("import")
	tref := fs.String("t", "", "Tournament id or name")
	url := fs.String("url", "", "Roster page to fetch")
	file := fs.String("file", "", "Roster HTML file to read ('-' for stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*url == "") == (*file == "") {
		return fmt.Errorf("please provide exactly one of --url or --file")
	}
	t, err := td.tournament(ctx, *tref)
	if err != nil {
		return err
	}

	var entries []roster.Entry
	if *url != "" {
		entries, err = roster.Fetch(ctx, td.web, *url)
	} else {
		var r io.Reader = os.Stdin
		if *file != "-" {
			f, ferr := os.Open(*file)
			if ferr != nil {
				return ferr
			}
			defer f.Close()
			r = f
		}
		entries, err = roster.Parse(r)
	}
	if err != nil {
		return fmt.Errorf("unable to read roster: %w", err)
	}

	report, err := roster.Import(ctx, td.svc, t.ID, entries, td.log)
	if err != nil {
		return err
	}
	fmt.Fprintf(td.out, "Imported %v roster rows into %v: %v new players, "+
		"%v enrolled, %v already enrolled\n", len(entries), t.Name,
		len(report.Created), len(report.Enrolled), len(report.Skipped))

	return nil
}

func handlePlayer(ctx context.Context, td *app, args []string) error {
	fs := td.flags("player")
	pref := fs.String("p", "", "Player id or name")
	limit := fs.Int("games", tournament.RecentGames,
		"Number of recent games to show (0 shows all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pref == "" {
		return fmt.Errorf("please provide a player with -p")
	}
	p, games, err := td.svc.PlayerGames(ctx, *pref, *limit)
	if err != nil {
		return err
	}

	active := "never"
	if !p.LastActive.IsZero() {
		active = p.LastActive.Format("2006-01-02")
	}
	fmt.Fprintf(td.out, "%v (%v)\n", p.Name, p.ID)
	fmt.Fprintf(td.out, "Rating %.0f  RD %.0f  Vol %.4f  Last active %v\n\n",
		p.Rating.Rating, p.Rating.Deviation, p.Rating.Volatility, active)
	if len(games) == 0 {
		fmt.Fprintln(td.out, "No games recorded.")
		return nil
	}

	fmt.Fprintf(td.out, "%-10s  %-24s  %5s  %-5s  %-24s  %-7s  %s\n", "Date",
		"Tournament", "Round", "Color", "Opponent", "Result", "Score")
	for _, g := range games {
		date := "-"
		if !g.Date.IsZero() {
			date = g.Date.Format("2006-01-02")
		}
		fmt.Fprintf(td.out, "%-10s  %-24s  %5d  %-5s  %-24s  %-7s  %v\n", date,
			g.TournamentName, g.Round, g.Color, g.OpponentName, g.Result,
			internal.ScoreToString(g.Score))
	}

	return nil
}
