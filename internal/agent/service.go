package agent

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator generates unique IDs for agents
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles agent operations
type Service struct {
	db          DB
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with UUID ids and the wall clock
func NewService(db DB) *Service {
	return NewServiceWithDeps(db, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// CreateAgent validates and registers a new active agent
func (s *Service) CreateAgent(name, location string) (*Agent, error) {
	now := s.timeSource.Now()
	agent := &Agent{
		ID:        s.idGenerator.Generate(),
		Name:      strings.TrimSpace(name),
		Location:  strings.TrimSpace(location),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := Validate(*agent); err != nil {
		return nil, err
	}

	if err := s.db.SaveAgent(agent); err != nil {
		return nil, fmt.Errorf("saving agent: %w", err)
	}

	slog.Info("Agent created", "id", agent.ID, "name", agent.Name)
	return agent, nil
}

// GetAgent retrieves an agent by ID
func (s *Service) GetAgent(id string) (*Agent, error) {
	agent, err := s.db.GetAgent(id)
	if err != nil {
		return nil, fmt.Errorf("getting agent: %w", err)
	}
	return agent, nil
}

// ListAgents returns all agents sorted by name
func (s *Service) ListAgents() ([]*Agent, error) {
	agents, err := s.db.ListAgents()
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	sort.SliceStable(agents, func(i, j int) bool {
		return strings.ToLower(agents[i].Name) < strings.ToLower(agents[j].Name)
	})
	return agents, nil
}

// DeactivateAgent marks an agent inactive, recording why. Callers gate this behind a
// confirmation that guarantees a non-blank reason.
func (s *Service) DeactivateAgent(id, reason string) (*Agent, error) {
	agent, err := s.db.GetAgent(id)
	if err != nil {
		return nil, fmt.Errorf("getting agent for deactivation: %w", err)
	}

	agent.Active = false
	agent.DeactivationReason = reason
	agent.UpdatedAt = s.timeSource.Now()

	if err := s.db.SaveAgent(agent); err != nil {
		return nil, fmt.Errorf("saving agent: %w", err)
	}

	slog.Info("Agent deactivated", "id", agent.ID, "reason", reason)
	return agent, nil
}
