/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package store persists tournaments and players as JSON documents on a
// Backend: memory for tests, a local directory for the CLI, or S3 for the
// shared deployment.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/gregjones/httpcache"
	"github.com/sirupsen/logrus"

	"github.com/mikeb26/baduk-td/internal"
	"github.com/mikeb26/baduk-td/s3cache"
	"github.com/mikeb26/baduk-td/tournament"
)

const (
	tournamentIndexKey = "index/tournaments"
	playerIndexKey     = "index/players"
)

// ErrIndexLost is returned when an id index this store has already read or
// written comes back absent. Writing a fresh index then would drop every
// entry it held.
var ErrIndexLost = errors.New("store: id index went missing")

// Store implements tournament.Store. Listing relies on an id index kept
// next to the documents since a backend cannot enumerate its keys.
type Store struct {
	mu      sync.Mutex
	be      Backend
	log     logrus.FieldLogger
	indexed map[string]bool
}

var _ tournament.Store = (*Store)(nil)

func New(be Backend, log logrus.FieldLogger) *Store {
	if log == nil {
		log = internal.DiscardLogger()
	}

	return &Store{be: be, log: log, indexed: make(map[string]bool)}
}

func NewMemory() *Store {
	return New(CacheBackend(httpcache.NewMemoryCache()), nil)
}

func NewDisk(dir string, log logrus.FieldLogger) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("store: cannot create %v: %w", dir, err)
	}

	return New(newDiskBackend(dir), log), nil
}

func NewS3(ctx context.Context, bucket string,
	log logrus.FieldLogger) (*Store, error) {

	cache := s3cache.New(ctx, bucket, internal.StorePrefix, true, log)
	if err := cache.Init(); err != nil {
		return nil, err
	}

	return New(cache, log), nil
}

// Open builds the backend selected by cfg.
func Open(ctx context.Context, cfg *internal.Config,
	log logrus.FieldLogger) (*Store, error) {

	switch cfg.Store {
	case internal.StoreMemory:
		return New(CacheBackend(httpcache.NewMemoryCache()), log), nil
	case internal.StoreDisk:
		dir, err := cfg.DataPath()
		if err != nil {
			return nil, err
		}
		return NewDisk(dir, log)
	case internal.StoreS3:
		return NewS3(ctx, cfg.Bucket, log)
	}

	return nil, fmt.Errorf("store: unknown backend %q", cfg.Store)
}

func tournamentKey(id string) string { return "tournament/" + id }
func playerKey(id string) string     { return "player/" + id }

func (s *Store) GetTournament(_ context.Context,
	id string) (*tournament.Tournament, error) {

	t := &tournament.Tournament{}
	if err := s.get(tournamentKey(id), t); err != nil {
		return nil, fmt.Errorf("tournament %v: %w", id, err)
	}

	return t, nil
}

func (s *Store) PutTournament(_ context.Context,
	t *tournament.Tournament) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.putIndexed(tournamentIndexKey, t.ID, tournamentKey(t.ID), t)
}

func (s *Store) DeleteTournament(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.index(tournamentIndexKey)
	if err != nil {
		return err
	}
	if err := s.be.Remove(tournamentKey(id)); err != nil {
		return err
	}
	i := sort.SearchStrings(ids, id)
	if i == len(ids) || ids[i] != id {
		return nil
	}

	return s.putIndex(tournamentIndexKey, append(ids[:i], ids[i+1:]...))
}

func (s *Store) ListTournaments(ctx context.Context) ([]*tournament.Tournament,
	error) {

	ids, err := s.lockedIndex(tournamentIndexKey)
	if err != nil {
		return nil, err
	}

	var out []*tournament.Tournament
	for _, id := range ids {
		t, err := s.GetTournament(ctx, id)
		if errors.Is(err, tournament.ErrNotFound) {
			s.log.WithField("tournament", id).
				Warn("store: indexed tournament missing")
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, nil
}

func (s *Store) GetPlayer(_ context.Context,
	id string) (*tournament.Player, error) {

	p := &tournament.Player{}
	if err := s.get(playerKey(id), p); err != nil {
		return nil, fmt.Errorf("player %v: %w", id, err)
	}

	return p, nil
}

func (s *Store) PutPlayer(_ context.Context, p *tournament.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.putIndexed(playerIndexKey, p.ID, playerKey(p.ID), p)
}

func (s *Store) ListPlayers(ctx context.Context) ([]*tournament.Player, error) {
	ids, err := s.lockedIndex(playerIndexKey)
	if err != nil {
		return nil, err
	}

	var out []*tournament.Player
	for _, id := range ids {
		p, err := s.GetPlayer(ctx, id)
		if errors.Is(err, tournament.ErrNotFound) {
			s.log.WithField("player", id).Warn("store: indexed player missing")
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, nil
}

func (s *Store) get(key string, v any) error {
	data, found, err := s.be.Load(key)
	if err != nil {
		return err
	}
	if !found {
		return tournament.ErrNotFound
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("store: corrupt document %v: %w", key, err)
	}

	return nil
}

func (s *Store) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: cannot encode %v: %w", key, err)
	}

	return s.be.Save(key, data)
}

// putIndexed writes a document and then its index entry. The index is read
// first so an unreadable index fails the write before anything changes.
// Must be called with s.mu held.
func (s *Store) putIndexed(indexKey, id, key string, v any) error {
	ids, err := s.index(indexKey)
	if err != nil {
		return err
	}
	if err := s.put(key, v); err != nil {
		return err
	}

	i := sort.SearchStrings(ids, id)
	if i < len(ids) && ids[i] == id {
		return nil
	}
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id

	return s.putIndex(indexKey, ids)
}

func (s *Store) putIndex(key string, ids []string) error {
	if err := s.put(key, ids); err != nil {
		return err
	}
	s.indexed[key] = true

	return nil
}

func (s *Store) lockedIndex(key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.index(key)
}

// index reads an id index. An index that was never written is empty; one
// that is unreadable, corrupt, or gone after this store saw it is an error.
// Must be called with s.mu held.
func (s *Store) index(key string) ([]string, error) {
	var ids []string
	err := s.get(key, &ids)
	switch {
	case err == nil:
		s.indexed[key] = true
		return ids, nil
	case errors.Is(err, tournament.ErrNotFound) && !s.indexed[key]:
		return nil, nil
	case errors.Is(err, tournament.ErrNotFound):
		return nil, fmt.Errorf("%w: %v", ErrIndexLost, key)
	}

	return nil, fmt.Errorf("store: cannot read index %v: %w", key, err)
}
