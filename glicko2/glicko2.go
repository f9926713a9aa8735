/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package glicko2 implements the Glicko-2 rating update described in
// http://www.glicko.net/glicko/glicko2.pdf
//
// A rating period is modelled as a single call to Rate: the player's rating
// triple as of the start of the period plus every outcome played during it.
// The computation is pure; callers own sequencing of updates per player.
package glicko2

import (
	"errors"
	"fmt"
	"math"
)

const (
	// Scale converts between the public rating scale and the internal
	// Glicko-2 scale.
	Scale = 173.7178

	DefaultRating     = 1500.0
	DefaultDeviation  = 350.0
	DefaultVolatility = 0.06

	// DefaultTau constrains how much volatility may change per period.
	DefaultTau = 0.5

	DefaultMaxIterations = 100

	convergence = 1e-6
)

// ErrComputation is returned for degenerate inputs or when the volatility
// root finder fails to converge.
var ErrComputation = errors.New("glicko2: computation failed")

// Rating is a player's skill estimate on the public (1500-centered) scale.
type Rating struct {
	Rating     float64 `json:"rating"`
	Deviation  float64 `json:"deviation"`
	Volatility float64 `json:"volatility"`
}

// Default returns the rating triple assigned to new players.
func Default() Rating {
	return Rating{
		Rating:     DefaultRating,
		Deviation:  DefaultDeviation,
		Volatility: DefaultVolatility,
	}
}

// Outcome is one game result against an opponent. Score is 1 for a win,
// 0.5 for a draw and 0 for a loss.
type Outcome struct {
	OpponentRating    float64
	OpponentDeviation float64
	Score             float64
}

// Rater holds the tunables of the update. The zero value is not usable; use
// NewRater.
type Rater struct {
	Tau           float64
	MaxIterations int
}

func NewRater(tau float64) *Rater {
	if tau <= 0 {
		tau = DefaultTau
	}

	return &Rater{Tau: tau, MaxIterations: DefaultMaxIterations}
}

var defaultRater = NewRater(DefaultTau)

// Rate applies one rating period with the default tau.
func Rate(cur Rating, outcomes []Outcome) (Rating, error) {
	return defaultRater.Rate(cur, outcomes)
}

// Rate returns the player's rating after the given outcomes. An empty
// outcome list returns cur unchanged.
func (r *Rater) Rate(cur Rating, outcomes []Outcome) (Rating, error) {
	if err := validate(cur, outcomes); err != nil {
		return cur, err
	}
	if len(outcomes) == 0 {
		return cur, nil
	}

	mu, phi := toInternal(cur.Rating, cur.Deviation)

	var sumVar, sumDelta float64
	for _, o := range outcomes {
		muJ, phiJ := toInternal(o.OpponentRating, o.OpponentDeviation)
		gJ := g(phiJ)
		eJ := expected(mu, muJ, gJ)
		sumVar += gJ * gJ * eJ * (1 - eJ)
		sumDelta += gJ * (o.Score - eJ)
	}
	if sumVar == 0 || math.IsNaN(sumVar) {
		return cur, nil
	}

	v := 1 / sumVar
	delta := v * sumDelta

	sigma, err := r.volatility(phi, v, delta, cur.Volatility)
	if err != nil {
		return cur, err
	}

	phiStar := math.Sqrt(phi*phi + sigma*sigma)
	phiNew := 1 / math.Sqrt(1/(phiStar*phiStar)+1/v)
	muNew := mu + phiNew*phiNew*sumDelta

	rating, deviation := fromInternal(muNew, phiNew)
	out := Rating{Rating: rating, Deviation: deviation, Volatility: sigma}
	if !finite(out.Rating) || !finite(out.Deviation) || !finite(out.Volatility) {
		return cur, fmt.Errorf("%w: non-finite result %+v", ErrComputation, out)
	}

	return out, nil
}

// volatility solves for the new volatility using the Illinois variant of
// regula falsi (step 5 of the paper).
func (r *Rater) volatility(phi, v, delta, sigma float64) (float64, error) {
	tau := r.Tau
	a := math.Log(sigma * sigma)
	f := func(x float64) float64 {
		ex := math.Exp(x)
		d := phi*phi + v + ex
		return ex*(delta*delta-phi*phi-v-ex)/(2*d*d) - (x-a)/(tau*tau)
	}

	maxIter := r.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	A := a
	var B float64
	if delta*delta > phi*phi+v {
		B = math.Log(delta*delta - phi*phi - v)
	} else {
		k := 1
		for f(a-float64(k)*tau) < 0 {
			k++
			if k > maxIter {
				return 0, fmt.Errorf("%w: unable to bracket volatility",
					ErrComputation)
			}
		}
		B = a - float64(k)*tau
	}

	fA, fB := f(A), f(B)
	for i := 0; math.Abs(B-A) > convergence; i++ {
		if i >= maxIter {
			return 0, fmt.Errorf("%w: volatility did not converge after %v iterations",
				ErrComputation, maxIter)
		}
		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if !finite(fC) {
			return 0, fmt.Errorf("%w: volatility iteration diverged",
				ErrComputation)
		}
		if fC*fB <= 0 {
			A, fA = B, fB
		} else {
			fA /= 2
		}
		B, fB = C, fC
	}

	return math.Exp(A / 2), nil
}

func validate(cur Rating, outcomes []Outcome) error {
	if !(cur.Deviation > 0) || !finite(cur.Deviation) {
		return fmt.Errorf("%w: deviation must be positive, got %v",
			ErrComputation, cur.Deviation)
	}
	if !(cur.Volatility > 0) || !finite(cur.Volatility) {
		return fmt.Errorf("%w: volatility must be positive, got %v",
			ErrComputation, cur.Volatility)
	}
	if !finite(cur.Rating) {
		return fmt.Errorf("%w: rating must be finite, got %v", ErrComputation,
			cur.Rating)
	}
	for idx, o := range outcomes {
		if !(o.OpponentDeviation > 0) || !finite(o.OpponentRating) {
			return fmt.Errorf("%w: outcome %v has invalid opponent %v/%v",
				ErrComputation, idx, o.OpponentRating, o.OpponentDeviation)
		}
		if o.Score < 0 || o.Score > 1 || math.IsNaN(o.Score) {
			return fmt.Errorf("%w: outcome %v score %v outside [0,1]",
				ErrComputation, idx, o.Score)
		}
	}

	return nil
}

func toInternal(rating, deviation float64) (float64, float64) {
	return (rating - DefaultRating) / Scale, deviation / Scale
}

func fromInternal(mu, phi float64) (float64, float64) {
	return mu*Scale + DefaultRating, phi * Scale
}

// g damps the weight of opponents whose rating is uncertain.
func g(phi float64) float64 {
	return 1 / math.Sqrt(1+3*phi*phi/(math.Pi*math.Pi))
}

func expected(mu, muJ, gJ float64) float64 {
	return 1 / (1 + math.Exp(-gJ*(mu-muJ)))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
