package activity

import (
	"fmt"

	"github.com/rpggio/nestly/internal/domain/property"
	"github.com/rpggio/nestly/internal/domain/search"
	"github.com/rpggio/nestly/internal/store"
)

// source is one collection contributing to the feed.
type source struct {
	name   string
	query  func(userID string) store.Query
	render func(store.Row) Activity
}

var propertyTitle = store.Embed{Collection: property.Collection, LocalKey: "property_id", As: "property", Columns: []string{"title"}}

var agentName = store.Embed{Collection: "agents", LocalKey: "agent_id", As: "agent", Columns: []string{"name"}}

func recent(collection, userID string, embeds ...store.Embed) store.Query {
	q := store.From(collection).
		Filter(store.Eq("user_id", userID)).
		OrderBy("created_at", true).
		Take(perSourceLimit)
	for _, e := range embeds {
		q = q.With(e)
	}
	return q
}

var sources = []source{
	{
		name:  "favorites",
		query: func(userID string) store.Query { return recent("favorites", userID, propertyTitle) },
		render: func(r store.Row) Activity {
			return Activity{
				ID:         "fav-" + r.String("id"),
				Type:       TypePropertySaved,
				Title:      "Saved " + embeddedOr(r, "property", "title", "a property"),
				PropertyID: r.String("property_id"),
			}
		},
	},
	{
		name:  "saved_searches",
		query: func(userID string) store.Query { return recent(search.Collection, userID) },
		render: func(r store.Row) Activity {
			saved := search.FromRow(r)
			return Activity{
				ID:          "search-" + saved.ID,
				Type:        TypeSearchCreated,
				Title:       fmt.Sprintf("Created saved search %q", saved.Name),
				Description: saved.Criteria.Summary(),
			}
		},
	},
	{
		name:  "inquiries",
		query: func(userID string) store.Query { return recent("inquiries", userID, agentName) },
		render: func(r store.Row) Activity {
			return Activity{
				ID:          "inquiry-" + r.String("id"),
				Type:        TypeAgentContacted,
				Title:       "Contacted " + embeddedOr(r, "agent", "name", "an agent"),
				Description: r.String("message"),
				PropertyID:  r.String("property_id"),
				AgentID:     r.String("agent_id"),
			}
		},
	},
	{
		name:  "viewings",
		query: func(userID string) store.Query { return recent("viewings", userID, propertyTitle) },
		render: func(r store.Row) Activity {
			a := Activity{
				ID:         "viewing-" + r.String("id"),
				Type:       TypeViewingScheduled,
				Title:      "Scheduled a viewing of " + embeddedOr(r, "property", "title", "a property"),
				PropertyID: r.String("property_id"),
				AgentID:    r.String("agent_id"),
			}
			if at := r.Time("scheduled_at"); !at.IsZero() {
				a.Description = "For " + at.UTC().Format("Mon, Jan 2 2006 at 3:04 PM")
			}
			return a
		},
	},
}

func embeddedOr(r store.Row, alias, field, fallback string) string {
	if v := r.Embedded(alias).String(field); v != "" {
		return v
	}
	return fallback
}
