package agent

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/zombor/paydesk/internal/auth"
)

const (
	agentBucketName   = "agents"
	sessionBucketName = "session"
	sessionKey        = "user"
)

// DB defines the interface for agent persistence
type DB interface {
	// SaveAgent inserts or replaces an agent
	SaveAgent(agent *Agent) error

	// GetAgent retrieves an agent by ID
	GetAgent(id string) (*Agent, error)

	// ListAgents returns all agents
	ListAgents() ([]*Agent, error)

	// Close closes the database connection
	Close() error
}

// BoltDB implements DB and auth.SessionStore on a single bbolt file
type BoltDB struct {
	db *bbolt.DB
}

var _ auth.SessionStore = (*BoltDB)(nil)

// NewBoltDB opens (or creates) the database file and its buckets
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(agentBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(sessionBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveAgent saves an agent to the database
func (b *BoltDB) SaveAgent(agent *Agent) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(agentBucketName))
		data, err := json.Marshal(agent)
		if err != nil {
			return fmt.Errorf("marshaling agent: %w", err)
		}
		return bucket.Put([]byte(agent.ID), data)
	})
}

// GetAgent retrieves an agent by ID
func (b *BoltDB) GetAgent(id string) (*Agent, error) {
	var agent *Agent
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(agentBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &agent)
	})
	if err != nil {
		return nil, err
	}
	return agent, nil
}

// ListAgents returns all agents ordered by ID
func (b *BoltDB) ListAgents() ([]*Agent, error) {
	agents := make([]*Agent, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(agentBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var agent Agent
			if err := json.Unmarshal(v, &agent); err != nil {
				return fmt.Errorf("unmarshaling agent: %w", err)
			}
			agents = append(agents, &agent)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return agents, nil
}

// SaveSession stores the session under the single session key
func (b *BoltDB) SaveSession(session *auth.Session) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucketName))
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshaling session: %w", err)
		}
		return bucket.Put([]byte(sessionKey), data)
	})
}

// LoadSession returns the stored session
func (b *BoltDB) LoadSession() (*auth.Session, error) {
	var session *auth.Session
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucketName))
		data := bucket.Get([]byte(sessionKey))
		if data == nil {
			return auth.ErrNoSession
		}
		return json.Unmarshal(data, &session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
