package types

import (
	"time"

	"github.com/google/uuid"
)

// NodeID represents a UUIDv7 repository node identifier.
// String alias enables type safety while maintaining JSON string serialization.
// UUIDv7 time-ordering ensures sequential inserts cluster in B-tree pages.
type NodeID string

// NewNodeID generates a UUIDv7 node identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewNodeID() NodeID {
	return NodeID(uuid.Must(uuid.NewV7()).String())
}

// ParseNodeID validates and converts a string to NodeID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseNodeID(s string) (NodeID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return NodeID(s), nil
}

// NodeIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Enables creation-time queries without a database lookup.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func NodeIDTime(id NodeID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}

// NewRequestID generates a UUIDv4 request correlation identifier.
// Random IDs are fine here; request IDs are never indexed.
func NewRequestID() string {
	return uuid.NewString()
}
