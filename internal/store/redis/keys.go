package redis

import "strings"

const (
	// KeyPrefix namespaces every key the service writes.
	KeyPrefix = "cardshelf:"
	// DefaultAuditStream holds moderation events.
	DefaultAuditStream = KeyPrefix + "moderation"
)

// StreamKey returns the namespaced key for a stream name, leaving keys that
// already carry the prefix untouched.
func StreamKey(name string) string {
	if strings.HasPrefix(name, KeyPrefix) {
		return name
	}
	return KeyPrefix + name
}
