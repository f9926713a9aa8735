/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package roster imports a club membership table into tournament entrants.
// The table is the HTML page most registration sites export: a
// <table id="members"> whose header row names the columns.
package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/mikeb26/baduk-td/glicko2"
	"github.com/mikeb26/baduk-td/internal"
	"github.com/mikeb26/baduk-td/tournament"
)

var ErrNoRoster = errors.New("no roster table found")

// Entry is one row of the roster.
type Entry struct {
	Name       string
	Rating     glicko2.Rating
	LastActive time.Time
}

type column int

const (
	colName column = iota
	colRating
	colDeviation
	colVolatility
	colLastActive
)

func classify(header string) (column, bool) {
	h := internal.NormalizeName(header)
	switch {
	case strings.Contains(h, "name"):
		return colName, true
	case strings.Contains(h, "deviation"), h == "rd":
		return colDeviation, true
	case strings.Contains(h, "volatility"), h == "vol":
		return colVolatility, true
	case strings.Contains(h, "active"), strings.Contains(h, "last played"):
		return colLastActive, true
	case strings.Contains(h, "rating"):
		return colRating, true
	}

	return 0, false
}

// Parse reads the roster table from an HTML document. Rows without a name
// are skipped; missing rating columns fall back to the Glicko-2 defaults.
func Parse(r io.Reader) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	table := doc.Find("table#members").First()
	if table.Length() == 0 {
		return nil, ErrNoRoster
	}

	cols := make(map[column]int)
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		headers := row.Find("th")
		if headers.Length() == 0 {
			return true
		}
		headers.Each(func(i int, th *goquery.Selection) {
			if c, ok := classify(th.Text()); ok {
				if _, dup := cols[c]; !dup {
					cols[c] = i
				}
			}
		})
		return false
	})
	if _, ok := cols[colName]; !ok {
		return nil, fmt.Errorf("%w: missing name column", ErrNoRoster)
	}

	var entries []Entry
	var parseErr error
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return true
		}
		cell := func(c column) string {
			i, ok := cols[c]
			if !ok || i >= cells.Length() {
				return ""
			}
			return strings.TrimSpace(cells.Eq(i).Text())
		}

		name := strings.Join(strings.Fields(cell(colName)), " ")
		if name == "" {
			return true
		}
		e := Entry{Name: name, Rating: glicko2.Default()}
		for c, dst := range map[column]*float64{
			colRating:     &e.Rating.Rating,
			colDeviation:  &e.Rating.Deviation,
			colVolatility: &e.Rating.Volatility,
		} {
			v := cell(c)
			if v == "" {
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				parseErr = fmt.Errorf("row %q: bad number %q: %w", name, v, err)
				return false
			}
			*dst = f
		}
		e.LastActive, err = internal.ParseDateOrZero(cell(colLastActive))
		if err != nil {
			parseErr = fmt.Errorf("row %q: bad date: %w", name, err)
			return false
		}
		entries = append(entries, e)

		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return entries, nil
}

// Fetch downloads and parses the roster at url. Pass a client from
// internal.NewCachedHttpClient to avoid refetching within the cache TTL.
func Fetch(ctx context.Context, client *http.Client,
	url string) ([]Entry, error) {

	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", internal.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d fetching %s", resp.StatusCode, url)
	}

	return Parse(resp.Body)
}

// ImportReport lists what Import did with each entry, by player id.
type ImportReport struct {
	Created  []string
	Enrolled []string
	Skipped  []string
}

// Import matches every entry to a registered player by name, registering
// the ones it cannot find, and enrolls them in the tournament. Players
// already enrolled are skipped.
func Import(ctx context.Context, svc *tournament.Service, tournamentID string,
	entries []Entry, log logrus.FieldLogger) (*ImportReport, error) {

	if log == nil {
		log = internal.DiscardLogger()
	}
	t, err := svc.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	players, err := svc.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*tournament.Player, len(players))
	for _, p := range players {
		byName[internal.NormalizeName(p.Name)] = p
	}

	report := &ImportReport{}
	for _, e := range entries {
		p, ok := byName[internal.NormalizeName(e.Name)]
		if !ok {
			p, err = svc.AddPlayer(ctx, tournament.Player{
				Name:       e.Name,
				Rating:     e.Rating,
				LastActive: e.LastActive,
			})
			if err != nil {
				return report, fmt.Errorf("failed to register %v: %w", e.Name, err)
			}
			byName[internal.NormalizeName(p.Name)] = p
			report.Created = append(report.Created, p.ID)
		}
		if t.Entrant(p.ID) != nil {
			report.Skipped = append(report.Skipped, p.ID)
			continue
		}
		t, err = svc.Enroll(ctx, tournamentID, p.ID)
		if err != nil {
			return report, fmt.Errorf("failed to enroll %v: %w", e.Name, err)
		}
		report.Enrolled = append(report.Enrolled, p.ID)
	}
	log.WithFields(logrus.Fields{
		"tournament": tournamentID,
		"created":    len(report.Created),
		"enrolled":   len(report.Enrolled),
		"skipped":    len(report.Skipped),
	}).Info("roster imported")

	return report, nil
}
