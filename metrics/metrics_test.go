/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.PairingsGenerated("swiss", 4, 1)
	r.PairingsGenerated("swiss", 3, 0)
	r.ResultRecorded("B+R")
	r.ResultRecorded("W+6.5")
	r.ResultRecorded("JIGO")
	r.ResultRecorded("B+T")
	r.RoundCompleted(false)
	r.RoundCompleted(true)
	r.RatingsUpdated(8)
	r.TournamentCompleted("macmahon")

	assert.Equal(t, 7.0, testutil.ToFloat64(r.boards.WithLabelValues("swiss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.byes.WithLabelValues("swiss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.results.WithLabelValues("black")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.results.WithLabelValues("white")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.results.WithLabelValues("jigo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rounds.WithLabelValues("true")))
	assert.Equal(t, 8.0, testutil.ToFloat64(r.ratings))

	expected := `
# HELP baduk_td_tournaments_completed_total Tournaments completed, by pairing system
# TYPE baduk_td_tournaments_completed_total counter
baduk_td_tournaments_completed_total{system="macmahon"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"baduk_td_tournaments_completed_total"))
}

func TestNewWithoutRegistry(t *testing.T) {
	a := New(nil)
	b := New(nil)
	a.RatingsUpdated(1)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ratings))
}
