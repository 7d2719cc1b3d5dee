package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypePropertySaved    ActivityType = "property_saved"
	TypeSearchCreated    ActivityType = "search_created"
	TypeAgentContacted   ActivityType = "agent_contacted"
	TypeViewingScheduled ActivityType = "viewing_scheduled"
	TypePropertyViewed   ActivityType = "property_viewed"
	TypePropertyListed   ActivityType = "property_listed"
)

// Icon returns the symbolic icon name a client renders for t.
func (t ActivityType) Icon() string {
	switch t {
	case TypePropertySaved:
		return "heart"
	case TypeSearchCreated:
		return "search"
	case TypeAgentContacted:
		return "message-circle"
	case TypeViewingScheduled:
		return "calendar"
	case TypePropertyViewed:
		return "eye"
	case TypePropertyListed:
		return "home"
	default:
		return "activity"
	}
}

// Activity is one entry of a user's feed. Entries are built on every fetch
// and never stored.
type Activity struct {
	ID          string       `json:"id"`
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	OccurredAt  time.Time    `json:"occurred_at"`
	Time        string       `json:"time"`
	PropertyID  string       `json:"property_id,omitempty"`
	AgentID     string       `json:"agent_id,omitempty"`
}
