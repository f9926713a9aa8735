/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/sirupsen/logrus"

	"github.com/mikeb26/baduk-td/internal"
	"github.com/mikeb26/baduk-td/metrics"
	"github.com/mikeb26/baduk-td/s3cache"
	"github.com/mikeb26/baduk-td/store"
	"github.com/mikeb26/baduk-td/tournament"
)

//go:embed help.txt
var helpText string

// app is what every command handler runs against.
type app struct {
	cfg    *internal.Config
	log    logrus.FieldLogger
	svc    *tournament.Service
	out    io.Writer
	errOut io.Writer
	// roster fetches go through here so repeated imports hit the web cache
	web    *http.Client
}

// cmdHandler defines the signature for command handler functions.
type cmdHandler func(ctx context.Context, td *app, args []string) error

// commands maps command names to their respective handler functions.
var commands = map[string]cmdHandler{
	"help":           handleHelp,
	"player-add":     handlePlayerAdd,
	"players":        handlePlayers,
	"player":         handlePlayer,
	"new":            handleNew,
	"update":         handleUpdate,
	"list":           handleList,
	"delete":         handleDelete,
	"enroll":         handleEnroll,
	"withdraw":       handleWithdraw,
	"import":         handleImport,
	"pair":           handlePair,
	"repair":         handleRepair,
	"set-pairings":   handleSetPairings,
	"result":         handleResult,
	"complete-round": handleCompleteRound,
	"complete":       handleComplete,
	"pairings":       handlePairings,
	"standings":      handleStandings,
	"summary":        handleSummary,
}

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		usage(os.Stdout)
		os.Exit(1)
	}
	cmd := os.Args[1]
	handler, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage(os.Stdout)
		os.Exit(1)
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	log := internal.NewLogger(cfg.LogLevel)
	td, err := newApp(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("unable to open tournament store")
	}

	if err := handler(ctx, td, os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *internal.Config,
	log logrus.FieldLogger) (*app, error) {

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	opts, err := tournament.ConfigOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts.Log = log
	// a one-shot command has nothing to scrape the counters
	opts.Recorder = metrics.New(nil)

	return &app{
		cfg:    cfg,
		log:    log,
		svc:    tournament.NewService(st, opts),
		out:    os.Stdout,
		errOut: os.Stderr,
		web:    internal.NewCachedHttpClient(webCache(ctx, cfg, log),
			cfg.RosterCacheTTL(), nil),
	}, nil
}

// webCache keeps fetched roster pages next to the tournament data.
func webCache(ctx context.Context, cfg *internal.Config,
	log logrus.FieldLogger) httpcache.Cache {

	switch cfg.Store {
	case internal.StoreS3:
		c := s3cache.New(ctx, cfg.Bucket, internal.WebCachePrefix, true, log)
		if err := c.Init(); err != nil {
			log.WithError(err).Warn("web cache falling back to memory")
			break
		}
		return c
	case internal.StoreDisk:
		if dir, err := cfg.DataPath(); err == nil {
			return diskcache.New(filepath.Join(dir, internal.WebCachePrefix))
		}
	}

	return httpcache.NewMemoryCache()
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "%v", helpText)
}

func (td *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(td.errOut)

	return fs
}

func handleHelp(_ context.Context, td *app, _ []string) error {
	usage(td.out)
	return nil
}

func (td *app) tournament(ctx context.Context,
	ref string) (*tournament.Tournament, error) {

	if ref == "" {
		return nil, fmt.Errorf("please provide a tournament with -t")
	}

	return td.svc.FindTournament(ctx, ref)
}

func (td *app) player(ctx context.Context,
	ref string) (*tournament.Player, error) {

	if ref == "" {
		return nil, fmt.Errorf("please provide a player with -p")
	}

	return td.svc.FindPlayer(ctx, ref)
}

func (td *app) printPairings(ctx context.Context, id string, round int) error {
	snap, err := td.svc.Snapshot(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprint(td.out, tournament.BuildPairingsOutput(snap, round))

	return nil
}

func handlePairings(ctx context.Context, td *app, args []string) error {
	fs := td.flags("pairings")
	ref := fs.String("t", "", "Tournament id or name")
	round := fs.Int("round", 0, "Round number (default latest)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := td.tournament(ctx, *ref)
	if err != nil {
		return err
	}

	return td.printPairings(ctx, t.ID, *round)
}

func handleStandings(ctx context.Context, td *app, args []string) error {
	fs := td.flags("standings")
	ref := fs.String("t", "", "Tournament id or name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := td.tournament(ctx, *ref)
	if err != nil {
		return err
	}
	snap, err := td.svc.Snapshot(ctx, t.ID)
	if err != nil {
		return err
	}
	fmt.Fprint(td.out, tournament.BuildStandingsOutput(snap))

	return nil
}

func handleSummary(ctx context.Context, td *app, args []string) error {
	fs := td.flags("summary")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sum, err := td.svc.Summary(ctx)
	if err != nil {
		return err
	}

	days := int(tournament.ActiveWindow.Hours() / 24)
	fmt.Fprintf(td.out, "Players: %v (%v active in the last %v days)\n",
		sum.Players, sum.ActivePlayers, days)
	fmt.Fprintf(td.out, "Average rating: %.0f\n", sum.AverageRating)
	fmt.Fprintf(td.out, "Tournaments: %v upcoming, %v ongoing, %v completed\n",
		sum.Tournaments[tournament.StatusUpcoming],
		sum.Tournaments[tournament.StatusOngoing],
		sum.Tournaments[tournament.StatusCompleted])

	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
