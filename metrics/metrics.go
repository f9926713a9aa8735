/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package metrics exports tournament director activity to Prometheus. Its
// Recorder satisfies tournament.Recorder.
package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "baduk_td"

type Recorder struct {
	boards      *prometheus.CounterVec
	byes        *prometheus.CounterVec
	results     *prometheus.CounterVec
	rounds      *prometheus.CounterVec
	ratings     prometheus.Counter
	tournaments *prometheus.CounterVec
}

// New registers the collectors on reg. Passing nil registers nothing, which
// is useful in tests that build several recorders.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		boards: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boards_paired_total",
			Help:      "Played boards produced by round pairing, by pairing system",
		}, []string{"system"}),
		byes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "byes_total",
			Help:      "Byes granted by round pairing, by pairing system",
		}, []string{"system"}),
		results: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_recorded_total",
			Help:      "Results entered, by winner (black, white, jigo)",
		}, []string{"winner"}),
		rounds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_completed_total",
			Help:      "Rounds completed, by whether completion was forced",
		}, []string{"forced"}),
		ratings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rating_updates_total",
			Help:      "Player ratings updated by the Glicko-2 engine",
		}),
		tournaments: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tournaments_completed_total",
			Help:      "Tournaments completed, by pairing system",
		}, []string{"system"}),
	}
}

func (r *Recorder) PairingsGenerated(system string, boards int, byes int) {
	r.boards.WithLabelValues(system).Add(float64(boards))
	r.byes.WithLabelValues(system).Add(float64(byes))
}

func (r *Recorder) ResultRecorded(code string) {
	winner := "jigo"
	switch {
	case strings.HasPrefix(code, "B+"):
		winner = "black"
	case strings.HasPrefix(code, "W+"):
		winner = "white"
	}
	r.results.WithLabelValues(winner).Inc()
}

func (r *Recorder) RoundCompleted(forced bool) {
	r.rounds.WithLabelValues(strconv.FormatBool(forced)).Inc()
}

func (r *Recorder) RatingsUpdated(players int) {
	r.ratings.Add(float64(players))
}

func (r *Recorder) TournamentCompleted(system string) {
	r.tournaments.WithLabelValues(system).Inc()
}
