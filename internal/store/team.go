package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/hugh/appsec-portal/internal/models"
)

const teamKey = "appsec:team"

var ErrMemberNotFound = errors.New("team member not found")

// TeamStore holds the security team directory under its own key, same
// load-all/save-all shape as the ticket collection.
type TeamStore struct {
	kv     KVStore
	logger *slog.Logger

	mu sync.Mutex
}

func NewTeamStore(kv KVStore, logger *slog.Logger) *TeamStore {
	return &TeamStore{kv: kv, logger: logger}
}

func (s *TeamStore) Members(ctx context.Context) ([]models.TeamMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// MemberName resolves a member id to a display name, or returns fallback.
func (s *TeamStore) MemberName(ctx context.Context, id, fallback string) string {
	if id == "" {
		return fallback
	}
	members, err := s.Members(ctx)
	if err != nil {
		return fallback
	}
	for _, m := range members {
		if m.ID == id {
			return m.Name
		}
	}
	return fallback
}

func (s *TeamStore) Add(ctx context.Context, name string) (models.TeamMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := s.load(ctx)
	if err != nil {
		return models.TeamMember{}, err
	}
	member := models.TeamMember{ID: uuid.NewString(), Name: name}
	if err := s.save(ctx, append(members, member)); err != nil {
		return models.TeamMember{}, err
	}
	return member, nil
}

func (s *TeamStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := members[:0]
	for _, m := range members {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(members) {
		return ErrMemberNotFound
	}
	return s.save(ctx, kept)
}

func (s *TeamStore) load(ctx context.Context) ([]models.TeamMember, error) {
	raw, err := s.kv.Get(ctx, teamKey)
	if errors.Is(err, ErrKeyNotFound) {
		return SeedTeam(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading team: %w", err)
	}
	var members []models.TeamMember
	if err := json.Unmarshal([]byte(raw), &members); err != nil {
		s.logger.Warn("persisted team directory is unreadable, using seed data", "error", err)
		return SeedTeam(), nil
	}
	if len(members) == 0 {
		return SeedTeam(), nil
	}
	return members, nil
}

func (s *TeamStore) save(ctx context.Context, members []models.TeamMember) error {
	raw, err := json.Marshal(members)
	if err != nil {
		return fmt.Errorf("encoding team: %w", err)
	}
	if err := s.kv.Set(ctx, teamKey, string(raw)); err != nil {
		return fmt.Errorf("saving team: %w", err)
	}
	return nil
}
