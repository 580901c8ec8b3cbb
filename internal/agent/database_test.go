package agent

import (
	"errors"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/paydesk/internal/auth"
)

var _ = Describe("BoltDB", func() {
	var db *BoltDB

	BeforeEach(func() {
		var err error
		db, err = NewBoltDB(filepath.Join(GinkgoT().TempDir(), "test.db"))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("agents", func() {
		var agent *Agent

		BeforeEach(func() {
			agent = &Agent{
				ID:        "agent-1",
				Name:      "Jane Doe",
				Location:  "Nairobi",
				Active:    true,
				CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			}
			Expect(db.SaveAgent(agent)).To(Succeed())
		})

		It("should read back a saved agent", func() {
			saved, err := db.GetAgent("agent-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Name).To(Equal("Jane Doe"))
			Expect(saved.Location).To(Equal("Nairobi"))
			Expect(saved.Active).To(BeTrue())
		})

		It("should overwrite an agent saved twice", func() {
			agent.Location = "Mombasa"
			Expect(db.SaveAgent(agent)).To(Succeed())

			agents, err := db.ListAgents()
			Expect(err).NotTo(HaveOccurred())
			Expect(agents).To(HaveLen(1))
			Expect(agents[0].Location).To(Equal("Mombasa"))
		})

		It("should return ErrNotFound for unknown IDs", func() {
			_, err := db.GetAgent("nope")
			Expect(errors.Is(err, ErrNotFound)).To(BeTrue())
		})
	})

	Describe("session", func() {
		When("nothing is stored", func() {
			It("should return ErrNoSession", func() {
				_, err := db.LoadSession()
				Expect(errors.Is(err, auth.ErrNoSession)).To(BeTrue())
			})
		})

		When("a session is stored", func() {
			BeforeEach(func() {
				Expect(db.SaveSession(&auth.Session{Token: "first"})).To(Succeed())
				Expect(db.SaveSession(&auth.Session{Token: "second"})).To(Succeed())
			})

			It("should keep only the latest token", func() {
				session, err := db.LoadSession()
				Expect(err).NotTo(HaveOccurred())
				Expect(session.Token).To(Equal("second"))
			})
		})
	})
})
