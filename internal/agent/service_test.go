package agent

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAgent(t *testing.T) {
	// Disable logging during tests
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	RegisterFailHandler(Fail)
	RunSpecs(t, "Agent Suite")
}

// mockDB is a mock implementation of DB
type mockDB struct {
	agents  map[string]*Agent
	saveErr error
	getErr  error
	listErr error
}

func newMockDB() *mockDB {
	return &mockDB{agents: make(map[string]*Agent)}
}

func (m *mockDB) SaveAgent(agent *Agent) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.agents[agent.ID] = agent
	return nil
}

func (m *mockDB) GetAgent(id string) (*Agent, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	agent, ok := m.agents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return agent, nil
}

func (m *mockDB) ListAgents() ([]*Agent, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	agents := make([]*Agent, 0, len(m.agents))
	for _, a := range m.agents {
		agents = append(agents, a)
	}
	return agents, nil
}

func (m *mockDB) Close() error {
	return nil
}

type sequenceIDGenerator struct {
	next int
}

func (g *sequenceIDGenerator) Generate() string {
	g.next++
	return fmt.Sprintf("agent-%d", g.next)
}

type fixedTimeSource struct {
	now time.Time
}

func (t *fixedTimeSource) Now() time.Time {
	return t.now
}

var _ = Describe("Service", func() {
	var (
		db      *mockDB
		clock   *fixedTimeSource
		service *Service
	)

	BeforeEach(func() {
		db = newMockDB()
		clock = &fixedTimeSource{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
		service = NewServiceWithDeps(db, &sequenceIDGenerator{}, clock)
	})

	Describe("CreateAgent", func() {
		var (
			name     string
			location string
			agent    *Agent
			err      error
		)

		BeforeEach(func() {
			name = "  Jane Doe "
			location = "Nairobi West"
		})

		JustBeforeEach(func() {
			agent, err = service.CreateAgent(name, location)
		})

		When("the input is valid", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should assign an ID and trim the name", func() {
				Expect(agent.ID).To(Equal("agent-1"))
				Expect(agent.Name).To(Equal("Jane Doe"))
			})

			It("should create the agent active with timestamps", func() {
				Expect(agent.Active).To(BeTrue())
				Expect(agent.CreatedAt).To(Equal(clock.now))
				Expect(agent.UpdatedAt).To(Equal(clock.now))
			})

			It("should persist the agent", func() {
				Expect(db.agents).To(HaveKey("agent-1"))
			})
		})

		When("the name is blank", func() {
			BeforeEach(func() {
				name = "   "
			})

			It("should return a validation error naming the field", func() {
				var verr *ValidationError
				Expect(errors.As(err, &verr)).To(BeTrue())
				Expect(verr.Fields).To(HaveKey("name"))
			})

			It("should not persist anything", func() {
				Expect(db.agents).To(BeEmpty())
			})
		})

		When("the location is missing", func() {
			BeforeEach(func() {
				location = ""
			})

			It("should report the location field", func() {
				var verr *ValidationError
				Expect(errors.As(err, &verr)).To(BeTrue())
				Expect(verr.Fields).To(HaveKey("location"))
				Expect(verr.Error()).To(ContainSubstring("location"))
			})
		})

		When("saving fails", func() {
			BeforeEach(func() {
				db.saveErr = errors.New("disk full")
			})

			It("should wrap the error", func() {
				Expect(err).To(MatchError(ContainSubstring("saving agent")))
			})
		})
	})

	Describe("ListAgents", func() {
		BeforeEach(func() {
			db.agents["b"] = &Agent{ID: "b", Name: "zeno"}
			db.agents["a"] = &Agent{ID: "a", Name: "Amina"}
			db.agents["c"] = &Agent{ID: "c", Name: "baraka"}
		})

		It("should sort agents by name ignoring case", func() {
			agents, err := service.ListAgents()
			Expect(err).NotTo(HaveOccurred())
			Expect(agents).To(HaveLen(3))
			Expect(agents[0].Name).To(Equal("Amina"))
			Expect(agents[1].Name).To(Equal("baraka"))
			Expect(agents[2].Name).To(Equal("zeno"))
		})

		When("the database fails", func() {
			BeforeEach(func() {
				db.listErr = errors.New("boom")
			})

			It("returns the error", func() {
				_, err := service.ListAgents()
				Expect(err).To(MatchError(ContainSubstring("listing agents")))
			})
		})
	})

	Describe("GetAgent", func() {
		When("the agent does not exist", func() {
			It("should return ErrNotFound", func() {
				_, err := service.GetAgent("missing")
				Expect(errors.Is(err, ErrNotFound)).To(BeTrue())
			})
		})
	})

	Describe("DeactivateAgent", func() {
		BeforeEach(func() {
			db.agents["a"] = &Agent{ID: "a", Name: "Amina", Location: "Kisumu", Active: true}
			clock.now = clock.now.Add(time.Hour)
		})

		It("should mark the agent inactive with the reason", func() {
			agent, err := service.DeactivateAgent("a", "left the company")
			Expect(err).NotTo(HaveOccurred())
			Expect(agent.Active).To(BeFalse())
			Expect(agent.DeactivationReason).To(Equal("left the company"))
			Expect(agent.UpdatedAt).To(Equal(clock.now))
			Expect(db.agents["a"].Active).To(BeFalse())
		})

		When("the agent does not exist", func() {
			It("should return ErrNotFound", func() {
				_, err := service.DeactivateAgent("missing", "reason")
				Expect(errors.Is(err, ErrNotFound)).To(BeTrue())
			})
		})
	})
})
