package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ignite/open-tracker/internal/domain"
)

// MemoryStore keeps tracking events in a mutex-guarded map. It is the
// default backend: a single instance is constructed at process start and
// shared by every request handler, and all data is gone when the process
// exits.
type MemoryStore struct {
	mu     sync.RWMutex
	events  map[string]*domain.TrackingEvent
	seq     map[string]uint64
	nextSeq uint64

	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[string]*domain.TrackingEvent),
		seq:    make(map[string]uint64),
		now:    time.Now,
	}
}

// RecordOpen updates or creates the record for id under a single lock, so
// two concurrent first opens of the same id can never produce two records.
func (s *MemoryStore) RecordOpen(ctx context.Context, id, ip, userAgent string) (domain.TrackingEvent, error) {
	now := s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	evt, ok := s.events[id]
	if !ok {
		evt = &domain.TrackingEvent{
			ID:       id,
			Email:    domain.UnknownEmail,
			SentTime: now,
		}
		s.events[id] = evt
		s.nextSeq++
		s.seq[id] = s.nextSeq
	}

	openTime := now
	evt.Opened = true
	evt.OpenTime = &openTime
	evt.IPAddress = ip
	evt.UserAgent = userAgent

	return *evt, nil
}

// Register pre-creates a record for an outbound send. Re-registering an
// existing id only refreshes the recipient email; open state is untouched.
func (s *MemoryStore) Register(ctx context.Context, id, email string) (domain.TrackingEvent, error) {
	now := s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	evt, ok := s.events[id]
	if !ok {
		evt = &domain.TrackingEvent{
			ID:       id,
			Email:    email,
			SentTime: now,
		}
		s.events[id] = evt
		s.nextSeq++
		s.seq[id] = s.nextSeq
		return *evt, nil
	}

	evt.Email = email
	return *evt, nil
}

// Get returns the record for id, or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, id string) (domain.TrackingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evt, ok := s.events[id]
	if !ok {
		return domain.TrackingEvent{}, ErrNotFound
	}
	return *evt, nil
}

// GetAll returns every record, most recently created first. Records sharing
// a SentTime are ordered by insertion, newest first.
func (s *MemoryStore) GetAll(ctx context.Context) ([]domain.TrackingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.TrackingEvent, 0, len(s.events))
	for _, evt := range s.events {
		out = append(out, *evt)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].SentTime.Equal(out[j].SentTime) {
			return out[i].SentTime.After(out[j].SentTime)
		}
		return s.seq[out[i].ID] > s.seq[out[j].ID]
	})

	return out, nil
}
