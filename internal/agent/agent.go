package agent

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no agent exists for an ID
var ErrNotFound = errors.New("agent not found")

// Agent is a field representative who onboards customers through a QR-coded link
type Agent struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name" validate:"required,notblank,max=100"`
	Location           string    `json:"location" validate:"required,notblank,max=200"`
	Active             bool      `json:"active"`
	DeactivationReason string    `json:"deactivation_reason,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
