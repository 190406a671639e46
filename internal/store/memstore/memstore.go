// Package memstore is an in-memory store.Store used by tests and as a
// development fallback when no database is configured.
package memstore

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
)

// Store holds every table in maps guarded by one mutex, so conditional
// operations are atomic.
type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	users    map[uuid.UUID]*models.User
	profiles map[uuid.UUID]*models.Profile
	lists    map[uuid.UUID]*models.List
	items    map[uuid.UUID]*models.ListItem
	shares   map[uuid.UUID]*models.ListShare
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[uuid.UUID]*models.User),
		profiles: make(map[uuid.UUID]*models.Profile),
		lists:    make(map[uuid.UUID]*models.List),
		items:    make(map[uuid.UUID]*models.ListItem),
		shares:   make(map[uuid.UUID]*models.ListShare),
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// Stats returns aggregate counts.
func (s *Store) Stats(ctx context.Context) (*models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &models.Stats{
		Users: int64(len(s.users)),
		Lists: int64(len(s.lists)),
		Items: int64(len(s.items)),
	}
	for _, it := range s.items {
		if it.IsAdjudicated {
			st.ClaimedItems++
		}
	}
	for _, sh := range s.shares {
		if sh.IsPending() {
			st.PendingShares++
		} else {
			st.BoundShares++
		}
	}
	return st, nil
}

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

func sortByCreated[T any](rows []T, created func(*T) time.Time) {
	sort.SliceStable(rows, func(i, j int) bool {
		return created(&rows[i]).After(created(&rows[j]))
	})
}

func copyStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}
