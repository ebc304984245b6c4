// Package store persists the ticket collection as a single JSON blob in a
// key/value store, loaded and saved whole. All mutation goes through
// read-modify-write of one ticket under a single writer mutex.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hugh/appsec-portal/internal/models"
)

const (
	ticketsKey    = "appsec:tickets"
	ingestLockKey = "appsec:tickets:ingest:"

	// ingestLockTTL bounds how long a crashed worker can keep a ticket
	// busy.
	ingestLockTTL = 15 * time.Minute
)

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrDuplicateID    = errors.New("ticket id already exists")

	// ErrNoChange can be returned by an Update callback to skip the
	// write-back when the ticket turned out to be unchanged.
	ErrNoChange = errors.New("no change")
)

// TicketStore owns the persisted ticket collection.
type TicketStore struct {
	kv     KVStore
	logger *slog.Logger

	mu sync.Mutex
}

func NewTicketStore(kv KVStore, logger *slog.Logger) *TicketStore {
	return &TicketStore{kv: kv, logger: logger}
}

// List returns the full collection. An empty or unparsable persisted value
// falls back to the built-in seed dataset rather than an empty collection.
func (s *TicketStore) List(ctx context.Context) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Get returns one ticket by id.
func (s *TicketStore) Get(ctx context.Context, id string) (models.Ticket, error) {
	tickets, err := s.List(ctx)
	if err != nil {
		return models.Ticket{}, err
	}
	for _, t := range tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Ticket{}, ErrTicketNotFound
}

// Insert prepends a new ticket to the collection.
func (s *TicketStore) Insert(ctx context.Context, t models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load(ctx)
	if err != nil {
		return err
	}
	for _, existing := range tickets {
		if existing.ID == t.ID {
			return ErrDuplicateID
		}
	}
	return s.save(ctx, append([]models.Ticket{t}, tickets...))
}

// Update applies fn to the matching ticket and persists the whole-ticket
// replacement atomically with respect to other writers. If fn returns an
// error nothing is saved.
func (s *TicketStore) Update(ctx context.Context, id string, fn func(*models.Ticket) error) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load(ctx)
	if err != nil {
		return models.Ticket{}, err
	}
	for i := range tickets {
		if tickets[i].ID != id {
			continue
		}
		if err := fn(&tickets[i]); err != nil {
			if errors.Is(err, ErrNoChange) {
				return tickets[i], nil
			}
			return models.Ticket{}, err
		}
		if err := s.save(ctx, tickets); err != nil {
			return models.Ticket{}, err
		}
		return tickets[i], nil
	}
	return models.Ticket{}, ErrTicketNotFound
}

// TryLockIngest marks a ticket busy for report ingestion. Returns false when
// an ingestion is already in flight for it.
func (s *TicketStore) TryLockIngest(ctx context.Context, id string) (bool, error) {
	return s.kv.SetNX(ctx, ingestLockKey+id, "1", ingestLockTTL)
}

// UnlockIngest releases the ingestion lock.
func (s *TicketStore) UnlockIngest(ctx context.Context, id string) {
	if err := s.kv.Delete(ctx, ingestLockKey+id); err != nil {
		s.logger.Error("failed to release ingest lock", "ticket_id", id, "error", err)
	}
}

// IngestLocked reports whether a report ingestion is in flight for the
// ticket.
func (s *TicketStore) IngestLocked(ctx context.Context, id string) bool {
	_, err := s.kv.Get(ctx, ingestLockKey+id)
	return err == nil
}

func (s *TicketStore) load(ctx context.Context) ([]models.Ticket, error) {
	raw, err := s.kv.Get(ctx, ticketsKey)
	if errors.Is(err, ErrKeyNotFound) {
		return SeedTickets(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading tickets: %w", err)
	}

	var tickets []models.Ticket
	if err := json.Unmarshal([]byte(raw), &tickets); err != nil {
		s.logger.Warn("persisted ticket collection is unreadable, using seed data", "error", err)
		return SeedTickets(), nil
	}
	if len(tickets) == 0 {
		return SeedTickets(), nil
	}
	return tickets, nil
}

func (s *TicketStore) save(ctx context.Context, tickets []models.Ticket) error {
	raw, err := json.Marshal(tickets)
	if err != nil {
		return fmt.Errorf("encoding tickets: %w", err)
	}
	if err := s.kv.Set(ctx, ticketsKey, string(raw)); err != nil {
		return fmt.Errorf("saving tickets: %w", err)
	}
	return nil
}
