/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package roster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeb26/baduk-td/glicko2"
	"github.com/mikeb26/baduk-td/internal"
	"github.com/mikeb26/baduk-td/pairing"
	"github.com/mikeb26/baduk-td/store"
	"github.com/mikeb26/baduk-td/tournament"
)

const membersPage = `<html><body>
<h1>Thursday Night Go</h1>
<table id="members">
  <thead>
    <tr><th>#</th><th>Player Name</th><th>Rating</th><th>RD</th><th>Volatility</th><th>Last Active</th></tr>
  </thead>
  <tbody>
    <tr><td>1</td><td>Lee  Changho</td><td>1910</td><td>65.5</td><td>0.059</td><td>2025-05-29</td></tr>
    <tr><td>2</td><td>Honinbo Shusaku</td><td>1875</td><td></td><td></td><td></td></tr>
    <tr><td>3</td><td></td><td>1500</td><td></td><td></td><td></td></tr>
    <tr><td>4</td><td>Newcomer</td><td></td><td></td><td></td><td>null</td></tr>
  </tbody>
</table>
</body></html>`

func TestParse(t *testing.T) {
	entries, err := Parse(strings.NewReader(membersPage))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "Lee Changho", entries[0].Name)
	assert.Equal(t, glicko2.Rating{Rating: 1910, Deviation: 65.5,
		Volatility: 0.059}, entries[0].Rating)
	assert.Equal(t, 2025, entries[0].LastActive.Year())
	assert.Equal(t, time.May, entries[0].LastActive.Month())

	assert.Equal(t, 1875.0, entries[1].Rating.Rating)
	assert.Equal(t, glicko2.DefaultDeviation, entries[1].Rating.Deviation)
	assert.True(t, entries[1].LastActive.IsZero())

	assert.Equal(t, glicko2.Default(), entries[2].Rating)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(strings.NewReader("<p>no table here</p>"))
	assert.ErrorIs(t, err, ErrNoRoster)

	_, err = Parse(strings.NewReader(
		`<table id="members"><tr><th>Rating</th></tr><tr><td>1500</td></tr></table>`))
	assert.ErrorIs(t, err, ErrNoRoster)

	_, err = Parse(strings.NewReader(
		`<table id="members"><tr><th>Name</th><th>Rating</th></tr>
		<tr><td>Bad Row</td><td>strong</td></tr></table>`))
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	var hits atomic.Int32
	var agent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter,
		r *http.Request) {

		hits.Add(1)
		agent.Store(r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(membersPage))
	}))
	defer srv.Close()

	client := internal.NewCachedHttpClient(nil, time.Hour, nil)
	for i := 0; i < 2; i++ {
		entries, err := Fetch(context.Background(), client, srv.URL)
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	}
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, internal.UserAgent, agent.Load())
}

func TestFetch_Status(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Fetch(context.Background(), nil, srv.URL)
	assert.ErrorContains(t, err, "status 404")
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	svc := tournament.NewService(store.NewMemory(), tournament.Options{})

	existing, err := svc.CreatePlayer(ctx, "Honinbo Shusaku",
		glicko2.Rating{Rating: 2000, Deviation: 50, Volatility: 0.06})
	require.NoError(t, err)
	tour, err := svc.CreateTournament(ctx, tournament.Details{Name: "Club Night"},
		pairing.Swiss)
	require.NoError(t, err)

	entries, err := Parse(strings.NewReader(membersPage))
	require.NoError(t, err)

	report, err := Import(ctx, svc, tour.ID, entries, nil)
	require.NoError(t, err)
	assert.Len(t, report.Created, 2)
	assert.Len(t, report.Enrolled, 3)
	assert.Contains(t, report.Enrolled, existing.ID)
	assert.Empty(t, report.Skipped)

	// registered ratings win over the roster's
	tour, err = svc.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	require.NotNil(t, tour.Entrant(existing.ID))
	assert.Equal(t, 2000.0, tour.Entrant(existing.ID).InitialRating.Rating)

	lee, err := svc.FindPlayer(ctx, "lee changho")
	require.NoError(t, err)
	assert.Equal(t, 1910.0, lee.Rating.Rating)
	assert.False(t, lee.LastActive.IsZero())

	report, err = Import(ctx, svc, tour.ID, entries, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Created)
	assert.Len(t, report.Skipped, 3)
}
