package store

import "time"

// Message roles understood by the history formatter. Anything else is
// preserved in storage but dropped from model input.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one stored conversation turn. The timestamp is kept as an
// RFC 3339 string so a load/save round trip is byte-stable regardless of
// the driver.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// NowTimestamp returns the timestamp format shared by the two records of a
// chat turn.
func NowTimestamp() string {
	return time.Now().Format(time.RFC3339)
}
