package search

import (
	"time"

	"github.com/rpggio/nestly/internal/domain/property"
)

// SavedSearch is a named set of filter criteria a user can be alerted on.
type SavedSearch struct {
	ID            string                  `json:"id"`
	UserID        string                  `json:"user_id"`
	Name          string                  `json:"name"`
	Criteria      property.FilterCriteria `json:"criteria"`
	AlertsEnabled bool                    `json:"alerts_enabled"`
	CreatedAt     time.Time               `json:"created_at"`
}

// CreateRequest defines saved search creation inputs.
type CreateRequest struct {
	Name          string                  `json:"name"`
	Criteria      property.FilterCriteria `json:"criteria"`
	AlertsEnabled bool                    `json:"alerts_enabled"`
}
