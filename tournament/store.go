/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament

import "context"

// Store persists tournaments and players. Get methods return an error
// wrapping ErrNotFound on a miss. Implementations need not be safe for
// concurrent writers; the Service serializes its own writes.
type Store interface {
	GetTournament(ctx context.Context, id string) (*Tournament, error)
	PutTournament(ctx context.Context, t *Tournament) error
	DeleteTournament(ctx context.Context, id string) error
	ListTournaments(ctx context.Context) ([]*Tournament, error)

	GetPlayer(ctx context.Context, id string) (*Player, error)
	PutPlayer(ctx context.Context, p *Player) error
	ListPlayers(ctx context.Context) ([]*Player, error)
}

// Recorder receives coordinator events for instrumentation.
type Recorder interface {
	PairingsGenerated(policy string, boards int, byes int)
	ResultRecorded(code string)
	RoundCompleted(forced bool)
	RatingsUpdated(players int)
	TournamentCompleted(policy string)
}

type nopRecorder struct{}

func (nopRecorder) PairingsGenerated(string, int, int) {}
func (nopRecorder) ResultRecorded(string)              {}
func (nopRecorder) RoundCompleted(bool)                {}
func (nopRecorder) RatingsUpdated(int)                 {}
func (nopRecorder) TournamentCompleted(string)         {}
