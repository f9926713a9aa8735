/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/elliotchance/pie/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mikeb26/baduk-td/glicko2"
	"github.com/mikeb26/baduk-td/internal"
	"github.com/mikeb26/baduk-td/pairing"
)

// RatingPeriod selects when ratings move.
type RatingPeriod string

const (
	// PeriodRound rates each pairing as its round completes.
	PeriodRound RatingPeriod = "round"
	// PeriodTournament rates every game of the tournament at once when the
	// tournament completes.
	PeriodTournament RatingPeriod = "tournament"
)

func ParseRatingPeriod(s string) (RatingPeriod, error) {
	switch RatingPeriod(strings.ToLower(s)) {
	case PeriodRound, "":
		return PeriodRound, nil
	case PeriodTournament:
		return PeriodTournament, nil
	}

	return "", fmt.Errorf("%w: unknown rating period %q", ErrInvalidArgument, s)
}

type Options struct {
	Pairer   *pairing.Engine
	Rater    *glicko2.Rater
	Period   RatingPeriod
	Log      logrus.FieldLogger
	Recorder Recorder
	Now      func() time.Time
	NewID    func() string
}

// Service runs tournament operations against a Store. All operations are
// serialized; the pairing engine and rating updates see a frozen snapshot.
type Service struct {
	mu     sync.Mutex
	store  Store
	pairer *pairing.Engine
	rater  *glicko2.Rater
	period RatingPeriod
	log    logrus.FieldLogger
	rec    Recorder
	now    func() time.Time
	newID  func() string
}

// ConfigOptions derives the rating options from the environment
// configuration.
func ConfigOptions(cfg *internal.Config) (Options, error) {
	period, err := ParseRatingPeriod(cfg.RatingPeriod)
	if err != nil {
		return Options{}, err
	}

	return Options{
		Rater:  glicko2.NewRater(cfg.GlickoTau),
		Period: period,
	}, nil
}

func NewService(st Store, opts Options) *Service {
	s := &Service{
		store:  st,
		pairer: opts.Pairer,
		rater:  opts.Rater,
		period: opts.Period,
		log:    opts.Log,
		rec:    opts.Recorder,
		now:    opts.Now,
		newID:  opts.NewID,
	}
	if s.pairer == nil {
		s.pairer = pairing.NewEngine(nil)
	}
	if s.rater == nil {
		s.rater = glicko2.NewRater(glicko2.DefaultTau)
	}
	if s.period == "" {
		s.period = PeriodRound
	}
	if s.log == nil {
		s.log = internal.DiscardLogger()
	}
	if s.rec == nil {
		s.rec = nopRecorder{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	return s
}

func (s *Service) Period() RatingPeriod {
	return s.period
}

// CreatePlayer registers a player. A zero rating gets the defaults
// (1500, 350, 0.06).
func (s *Service) CreatePlayer(ctx context.Context, name string,
	rating glicko2.Rating) (*Player, error) {

	return s.AddPlayer(ctx, Player{Name: name, Rating: rating})
}

// AddPlayer registers p under a fresh id. Only Name, Rating and LastActive
// are taken from p.
func (s *Service) AddPlayer(ctx context.Context, p Player) (*Player, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrInvalidArgument)
	}
	if p.Rating == (glicko2.Rating{}) {
		p.Rating = glicko2.Default()
	}
	if !(p.Rating.Deviation > 0) || !(p.Rating.Volatility > 0) {
		return nil, fmt.Errorf("%w: deviation and volatility must be positive",
			ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.newID()
	if err := s.store.PutPlayer(ctx, &p); err != nil {
		return nil, fmt.Errorf("failed to save player %v: %w", p.Name, err)
	}
	s.log.WithFields(logrus.Fields{"player": p.ID, "name": p.Name}).
		Info("player created")

	return &p, nil
}

func (s *Service) GetPlayer(ctx context.Context, id string) (*Player, error) {
	return s.store.GetPlayer(ctx, id)
}

// ListPlayers returns every player ordered by name.
func (s *Service) ListPlayers(ctx context.Context) ([]*Player, error) {
	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}

	return pie.SortStableUsing(players, func(a, b *Player) bool {
		return internal.NormalizeName(a.Name) < internal.NormalizeName(b.Name)
	}), nil
}

// FindPlayer resolves ref as an id, a unique id prefix or a unique name.
func (s *Service) FindPlayer(ctx context.Context, ref string) (*Player, error) {
	if p, err := s.store.GetPlayer(ctx, ref); err == nil {
		return p, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}

	return findOne(ref, "player", players, func(p *Player) (string, string) {
		return p.ID, p.Name
	})
}

// Details are the descriptive fields of a tournament.
type Details struct {
	Name          string
	Location      string
	Description   string
	StartDate     time.Time
	EndDate       time.Time
	PlannedRounds int
}

func (d Details) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: tournament name is required", ErrInvalidArgument)
	}
	if d.PlannedRounds < 0 {
		return fmt.Errorf("%w: planned rounds must not be negative",
			ErrInvalidArgument)
	}
	if !d.StartDate.IsZero() && !d.EndDate.IsZero() &&
		d.EndDate.Before(d.StartDate) {

		return fmt.Errorf("%w: end date precedes start date", ErrInvalidArgument)
	}

	return nil
}

func (s *Service) CreateTournament(ctx context.Context, d Details,
	system pairing.Policy) (*Tournament, error) {

	if err := d.validate(); err != nil {
		return nil, err
	}
	policy, err := pairing.ParsePolicy(string(system))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &Tournament{
		ID:        s.newID(),
		Status:    StatusUpcoming,
		System:    policy,
		CreatedAt: s.now(),
	}
	t.setDetails(d)
	if err := s.store.PutTournament(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save tournament %v: %w", d.Name, err)
	}
	s.logFor(t).WithField("policy", policy).Info("tournament created")

	return t, nil
}

func (t *Tournament) setDetails(d Details) {
	t.Name = strings.TrimSpace(d.Name)
	t.Location = d.Location
	t.Description = d.Description
	t.StartDate = d.StartDate
	t.EndDate = d.EndDate
	t.PlannedRounds = d.PlannedRounds
}

// UpdateDetails replaces the descriptive fields. Planned rounds may not drop
// below the number of rounds already created.
func (s *Service) UpdateDetails(ctx context.Context, id string,
	d Details) (*Tournament, error) {

	if err := d.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.mutable(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.PlannedRounds > 0 && d.PlannedRounds < len(t.Rounds) {
		return nil, fmt.Errorf("%w: %v rounds already exist", ErrInvalidArgument,
			len(t.Rounds))
	}
	t.setDetails(d)
	if err := s.store.PutTournament(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) GetTournament(ctx context.Context,
	id string) (*Tournament, error) {

	return s.store.GetTournament(ctx, id)
}

// ListTournaments returns every tournament, newest first.
func (s *Service) ListTournaments(ctx context.Context) ([]*Tournament, error) {
	ts, err := s.store.ListTournaments(ctx)
	if err != nil {
		return nil, err
	}

	return pie.SortStableUsing(ts, func(a, b *Tournament) bool {
		return a.CreatedAt.After(b.CreatedAt)
	}), nil
}

// FindTournament resolves ref as an id, a unique id prefix or a unique name.
func (s *Service) FindTournament(ctx context.Context,
	ref string) (*Tournament, error) {

	if t, err := s.store.GetTournament(ctx, ref); err == nil {
		return t, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	ts, err := s.store.ListTournaments(ctx)
	if err != nil {
		return nil, err
	}

	return findOne(ref, "tournament", ts, func(t *Tournament) (string, string) {
		return t.ID, t.Name
	})
}

func findOne[T any](ref string, kind string, items []T,
	keys func(T) (string, string)) (T, error) {

	var zero T
	want := internal.NormalizeName(ref)
	if want == "" {
		return zero, fmt.Errorf("%w: empty %v reference", ErrInvalidArgument, kind)
	}
	matches := pie.Filter(items, func(item T) bool {
		id, name := keys(item)
		return strings.HasPrefix(id, ref) || internal.NormalizeName(name) == want
	})
	switch len(matches) {
	case 0:
		return zero, fmt.Errorf("%w: %v %q", ErrNotFound, kind, ref)
	case 1:
		return matches[0], nil
	}

	return zero, fmt.Errorf("%w: %v %q is ambiguous (%v matches)",
		ErrInvalidArgument, kind, ref, len(matches))
}

// DeleteTournament removes a tournament that has not completed.
func (s *Service) DeleteTournament(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.mutable(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTournament(ctx, t.ID); err != nil {
		return err
	}
	s.logFor(t).Info("tournament deleted")

	return nil
}

// Enroll adds a player to a tournament, snapshotting their rating.
func (s *Service) Enroll(ctx context.Context, tournamentID,
	playerID string) (*Tournament, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.mutable(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.System == pairing.RoundRobin && len(t.Rounds) > 0 {
		return nil, fmt.Errorf("%w: round robin schedule already started",
			ErrStateViolation)
	}
	if t.Entrant(playerID) != nil {
		return nil, fmt.Errorf("%w: player %v already enrolled",
			ErrInvalidArgument, playerID)
	}
	p, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	t.Entrants = append(t.Entrants, Entrant{
		PlayerID:      p.ID,
		InitialRating: p.Rating,
	})
	if err := s.store.PutTournament(ctx, t); err != nil {
		return nil, err
	}
	s.logFor(t).WithField("player", p.ID).Info("player enrolled")

	return t, nil
}

// Withdraw removes a player from a tournament. A player still paired in an
// open round must be re-paired first.
func (s *Service) Withdraw(ctx context.Context, tournamentID,
	playerID string) (*Tournament, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.mutable(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.System == pairing.RoundRobin && len(t.Rounds) > 0 {
		return nil, fmt.Errorf("%w: round robin schedule already started",
			ErrStateViolation)
	}
	if t.Entrant(playerID) == nil {
		return nil, fmt.Errorf("%w: player %v is not enrolled", ErrNotFound,
			playerID)
	}
	if r := t.LastRound(); r != nil && r.Status != RoundCompleted {
		for _, p := range r.Pairings {
			if p.Has(playerID) {
				return nil, fmt.Errorf("%w: player %v is paired in open round %v",
					ErrStateViolation, playerID, r.Number)
			}
		}
	}
	t.Entrants = pie.Filter(t.Entrants, func(e Entrant) bool {
		return e.PlayerID != playerID
	})
	if err := s.store.PutTournament(ctx, t); err != nil {
		return nil, err
	}
	s.logFor(t).WithField("player", playerID).Info("player withdrawn")

	return t, nil
}

// mutable loads a tournament that is not yet completed.
func (s *Service) mutable(ctx context.Context, id string) (*Tournament, error) {
	t, err := s.store.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == StatusCompleted {
		return nil, fmt.Errorf("%w: tournament %v is completed",
			ErrStateViolation, t.Name)
	}

	return t, nil
}

func (s *Service) logFor(t *Tournament) logrus.FieldLogger {
	return s.log.WithField("tournament", t.ID)
}
