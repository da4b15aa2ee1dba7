// internal/app/store/audit/store.go
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/influencerhub/internal/app/store/docstore"
)

// Collection holds audit events.
const Collection = "audit_events"

// IndexEventType backs filtering by event type.
const IndexEventType = "idx_audit_events_event_type"

// Event categories
const (
	CategoryAuth   = "auth"
	CategoryRoster = "roster"
)

// Auth event types
const (
	EventLoginSuccess             = "login_success"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLoginFailedUserDisabled  = "login_failed_user_disabled"
	EventLoginFailedRateLimit     = "login_failed_rate_limit"
	EventLogout                   = "logout"
)

// Roster event types
const (
	EventInfluencerCreated = "influencer_created"
	EventInfluencerUpdated = "influencer_updated"
	EventInfluencerDeleted = "influencer_deleted"
	EventBackfillRun       = "backfill_run"
)

// Event represents an audit event.
type Event struct {
	ID        string    `bson:"-" json:"id"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`

	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"event_type"`

	ActorID  string `bson:"actor_id,omitempty" json:"actor_id,omitempty"`   // operator who acted
	TargetID string `bson:"target_id,omitempty" json:"target_id,omitempty"` // record acted on

	IP        string `bson:"ip" json:"ip"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`

	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	// Additional details (varies by event type)
	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter narrows Query. Zero fields do not filter.
type QueryFilter struct {
	EventType string
	Limit     int
}

// DefaultLimit applies when a filter has no limit.
const DefaultLimit = 100

// Store manages audit event records.
type Store struct {
	c docstore.Collection
}

// New creates a new audit Store.
func New(db docstore.Store) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	doc := docstore.Doc{
		"timestamp":  event.Timestamp,
		"category":   event.Category,
		"event_type": event.EventType,
		"ip":         event.IP,
		"success":    event.Success,
	}
	for k, v := range map[string]string{
		"actor_id":       event.ActorID,
		"target_id":      event.TargetID,
		"user_agent":     event.UserAgent,
		"failure_reason": event.FailureReason,
	} {
		if v != "" {
			doc[k] = v
		}
	}
	if len(event.Details) > 0 {
		details := make(map[string]any, len(event.Details))
		for k, v := range event.Details {
			details[k] = v
		}
		doc["details"] = details
	}
	_, err := s.c.Insert(ctx, doc)
	return err
}

// Query returns matching events, newest first. Ids are time-ordered, so id
// order is insertion order.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := docstore.Query{Descending: true, Limit: limit}
	if filter.EventType != "" {
		q.Where = docstore.Equal("event_type", filter.EventType)
	}

	snaps, err := s.c.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(snaps))
	for _, snap := range snaps {
		var e Event
		if err := snap.Decode(&e); err != nil {
			return nil, fmt.Errorf("decode audit event %s: %w", snap.ID(), err)
		}
		e.ID = snap.ID()
		events = append(events, e)
	}
	return events, nil
}

// GetRecent retrieves the most recent audit events.
func (s *Store) GetRecent(ctx context.Context, limit int) ([]Event, error) {
	return s.Query(ctx, QueryFilter{Limit: limit})
}
