package domain

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderAgent  Sender = "agent"
	SenderSystem Sender = "system"
)

// Message is a single chat turn within a topic. Messages are unique by ID
// within their topic and append-only from the client's point of view.
type Message struct {
	ID        string `json:"id"`
	TopicID   string `json:"topic_id"`
	Sender    Sender `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"` // ISO 8601, as sent by the backend
}

// TaskResult is a secondary artifact associated with a topic, kept in its
// own per-topic sequence with the same uniqueness contract as Message.
type TaskResult struct {
	ID        string `json:"id"`
	TopicID   string `json:"topic_id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// InvalidDate is returned by FormatTimestamp for unparsable input.
const InvalidDate = "Invalid Date"

const clockLayout = "3:04 PM"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// FormatTimestamp renders an ISO timestamp as a short local time such as
// "3:45 PM". Empty input yields "".
func FormatTimestamp(iso string) string {
	return formatTimestampIn(iso, time.Local)
}

func formatTimestampIn(iso string, loc *time.Location) string {
	if iso == "" {
		return ""
	}
	for _, layout := range timestampLayouts {
		// Timestamps without a zone are taken as local time.
		t, err := time.ParseInLocation(layout, iso, loc)
		if err == nil {
			return t.In(loc).Format(clockLayout)
		}
	}
	return InvalidDate
}
