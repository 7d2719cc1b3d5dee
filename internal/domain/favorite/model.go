package favorite

import (
	"time"

	"github.com/rpggio/nestly/internal/domain/property"
)

// Favorite is a property saved by a user.
type Favorite struct {
	ID         string             `json:"id"`
	UserID     string             `json:"user_id"`
	PropertyID string             `json:"property_id"`
	CreatedAt  time.Time          `json:"created_at"`
	Property   *property.Property `json:"property,omitempty"`
}
