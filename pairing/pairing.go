/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package pairing builds the pairings for one round of a tournament.
//
// Three policies are supported: Swiss (rating ordered, rematch avoiding),
// MacMahon (Swiss within score groups) and RoundRobin (circle method). The
// engine is pure apart from the injected random source used to pick colors,
// so callers must hand it a frozen snapshot of scores and history.
package pairing

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Policy selects the pairing algorithm.
type Policy string

const (
	Swiss      Policy = "swiss"
	MacMahon   Policy = "macmahon"
	RoundRobin Policy = "round_robin"
)

var (
	// ErrInsufficientPool is returned when fewer than 2 players are
	// available; no round should be created.
	ErrInsufficientPool = errors.New("pairing: fewer than 2 players to pair")
	ErrUnknownPolicy    = errors.New("pairing: unknown policy")
	ErrInvalidRequest   = errors.New("pairing: invalid request")
)

// ParsePolicy maps a policy name to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case Swiss, MacMahon, RoundRobin:
		return Policy(s), nil
	case "roundrobin", "rr":
		return RoundRobin, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

func (p Policy) String() string {
	return string(p)
}

// Player is the engine's view of a participant.
type Player struct {
	ID     string
	Rating float64
}

// Pair is one board. First moves first (black); an empty Second is a bye.
type Pair struct {
	First  string
	Second string
}

func (p Pair) IsBye() bool {
	return p.Second == ""
}

// Request carries everything a round's pairing depends on.
type Request struct {
	Players []Player
	// Scores is the current tournament score per player ID; used by MacMahon.
	Scores map[string]float64
	// History holds every pair already played in this tournament.
	History History
	// PriorByes lists players who already received a bye; the odd player
	// out is chosen among the others when possible.
	PriorByes map[string]bool
	Policy    Policy
	Round     int
}

// Engine generates pairings. It is not safe for concurrent use because it
// owns its random source.
type Engine struct {
	rng *rand.Rand
}

// NewEngine returns an Engine drawing colors from src. A nil src seeds from
// the clock.
func NewEngine(src rand.Source) *Engine {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}

	return &Engine{rng: rand.New(src)}
}

// Generate returns the pairings for req. Every player appears in exactly
// one pair and at most one pair is a bye.
func (e *Engine) Generate(req Request) ([]Pair, error) {
	if len(req.Players) < 2 {
		return nil, fmt.Errorf("%w: have %v", ErrInsufficientPool,
			len(req.Players))
	}
	seen := make(map[string]bool, len(req.Players))
	for _, p := range req.Players {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: player with empty id", ErrInvalidRequest)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate player %v", ErrInvalidRequest,
				p.ID)
		}
		seen[p.ID] = true
	}
	if req.History == nil {
		req.History = NewHistory()
	}

	switch req.Policy {
	case Swiss:
		return e.swiss(req), nil
	case MacMahon:
		return e.macMahon(req), nil
	case RoundRobin:
		if req.Round < 1 {
			return nil, fmt.Errorf("%w: round %v", ErrInvalidRequest, req.Round)
		}
		return e.roundRobin(req), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, req.Policy)
}

// colored assigns first/second mover uniformly at random.
func (e *Engine) colored(a, b string) Pair {
	if e.rng.Intn(2) == 0 {
		return Pair{First: a, Second: b}
	}

	return Pair{First: b, Second: a}
}

// pickBye removes the odd player out from ordered, preferring the
// lowest-ordered player without a prior bye.
func pickBye(ordered []Player, prior map[string]bool) (Player, []Player) {
	idx := len(ordered) - 1
	for i := len(ordered) - 1; i >= 0; i-- {
		if !prior[ordered[i].ID] {
			idx = i
			break
		}
	}
	bye := ordered[idx]
	rest := make([]Player, 0, len(ordered)-1)
	rest = append(rest, ordered[:idx]...)
	rest = append(rest, ordered[idx+1:]...)

	return bye, rest
}
