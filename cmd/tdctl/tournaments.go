/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/mikeb26/baduk-td/internal"
	"github.com/mikeb26/baduk-td/pairing"
	"github.com/mikeb26/baduk-td/tournament"
)

// detailFlags registers the tournament detail flags on fs.
type detailFlags struct {
	name, location, desc, start, end *string
	rounds                           *int
}

func newDetailFlags(fs *flag.FlagSet) *detailFlags {
	return &detailFlags{
		name:     fs.String("name", "", "Tournament name"),
		location: fs.String("location", "", "Where the tournament is played"),
		desc:     fs.String("desc", "", "Free form description"),
		start:    fs.String("start", "", "Start date (most formats accepted)"),
		end:      fs.String("end", "", "End date"),
		rounds:   fs.Int("rounds", 0, "Planned number of rounds (0 = open ended)"),
	}
}

// apply overwrites the fields of d whose flags were given on the command
// line.
func (df *detailFlags) apply(fs *flag.FlagSet, d *tournament.Details) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "name":
			d.Name = *df.name
		case "location":
			d.Location = *df.location
		case "desc":
			d.Description = *df.desc
		case "start":
			d.StartDate, err = internal.ParseDateOrZero(*df.start)
		case "end":
			d.EndDate, err = internal.ParseDateOrZero(*df.end)
		case "rounds":
			d.PlannedRounds = *df.rounds
		}
	})

	return err
}

func handleNew(ctx context.Context, td *app, args []string) error {
	fs := td.flags("new")
	df := newDetailFlags(fs)
	system := fs.String("system", string(pairing.Swiss),
		"Pairing system: swiss, macmahon or round_robin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var d tournament.Details
	if err := df.apply(fs, &d); err != nil {
		return err
	}

	t, err := td.svc.CreateTournament(ctx, d, pairing.Policy(*system))
	if err != nil {
		return err
	}
	fmt.Fprintf(td.out, "Created %v tournament %v (%v)\n", t.System, t.Name,
		t.ID)

	return nil
}

func handleUpdate(ctx context.Context, td *app, args []string) error {
	fs := td.flags("update")
	ref := fs.String("t", "", "Tournament id or name")
	df := newDetailFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := td.tournament(ctx, *ref)
	if err != nil {
		return err
	}
	d := tournament.Details{
		Name:          t.Name,
		Location:      t.Location,
		Description:   t.Description,
		StartDate:     t.StartDate,
		EndDate:       t.EndDate,
		PlannedRounds: t.PlannedRounds,
	}
	if err := df.apply(fs, &d); err != nil {
		return err
	}
	if t, err = td.svc.UpdateDetails(ctx, t.ID, d); err != nil {
		return err
	}
	fmt.Fprintf(td.out, "Updated %v\n", t.Name)

	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func handleList(ctx context.Context, td *app, args []string) error {
	fs := td.flags("list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ts, err := td.svc.ListTournaments(ctx)
	if err != nil {
		return err
	}
	if len(ts) == 0 {
		fmt.Fprintln(td.out, "No tournaments found.")
		return nil
	}

	for _, t := range ts {
		rounds := fmt.Sprintf("%v", len(t.Rounds))
		if t.PlannedRounds > 0 {
			rounds = fmt.Sprintf("%v/%v", len(t.Rounds), t.PlannedRounds)
		}
		fmt.Fprintf(td.out, "%-8s  %-10s  %-11s  %-10s  %5s rds  %3v players  %s\n",
			shortID(t.ID), formatDate(t.StartDate), t.System, t.Status, rounds,
			len(t.Entrants), t.Name)
		if t.Location != "" || t.Description != "" {
			fmt.Fprintf(td.out, "          %s\n",
				oneLine(t.Location+" "+t.Description))
		}
	}

	return nil
}

func handleDelete(ctx context.Context, td *app, args []string) error {
	fs := td.flags("delete")
	ref := fs.String("t", "", "Tournament id or name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := td.tournament(ctx, *ref)
	if err != nil {
		return err
	}
	if err := td.svc.DeleteTournament(ctx, t.ID); err != nil {
		return err
	}
	fmt.Fprintf(td.out, "Deleted %v\n", t.Name)

	return nil
}
