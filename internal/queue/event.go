// Package queue defines message payloads exchanged over the message broker.
package queue

// PortalEventsQueue is the durable queue domain events are published to.
const PortalEventsQueue = "portal.events"

// Event types.
const (
	EventUserRegistered = "user.registered"
	EventPortalCreated  = "portal.created"
	EventPortalUpdated  = "portal.updated"
	EventPortalDeleted  = "portal.deleted"
)

// PortalEvent is published after a successful mutation. It contains enough
// information for downstream consumers to log or audit the change without
// querying the primary database.
type PortalEvent struct {
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id"`
	PortalID   uint64 `json:"portal_id,omitempty"`
	Category   string `json:"category,omitempty"`
	Link       string `json:"link,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
