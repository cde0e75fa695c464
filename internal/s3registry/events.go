package s3registry

import "time"

// maxRecentEvents bounds the per-bucket notification ring buffer
// (SPEC_FULL.md §4 "S3 bucket notification / event queue"): once full, the
// oldest event is dropped to make room for the newest.
const maxRecentEvents = 100

// Event is one recorded mutating operation against a bucket, giving the
// notification configuration slot (GetNotification/PutNotification above)
// an observable effect without a real SNS/SQS/Lambda delivery path.
// Grounded on the teacher's domain/events.BaseEvent shape
// (AggregateID/EventType/Timestamp), with Key standing in for the
// aggregate id of an S3 object.
type Event struct {
	EventType string // "Put" | "Delete" | "CompleteMultipartUpload"
	Key       string
	VersionID string
	Timestamp time.Time
}

// RecordEvent appends a mutating-operation event to the bucket's bounded
// ring buffer, dropping the oldest entry once maxRecentEvents is exceeded.
func (b *Bucket) RecordEvent(eventType, key, versionID string, at time.Time) {
	b.eventsMu.Lock()
	defer b.eventsMu.Unlock()
	b.events = append(b.events, Event{EventType: eventType, Key: key, VersionID: versionID, Timestamp: at})
	if over := len(b.events) - maxRecentEvents; over > 0 {
		b.events = b.events[over:]
	}
}

// RecentEvents is a debug-only accessor returning a copy of the last N
// recorded mutating events, oldest first.
func (b *Bucket) RecentEvents() []Event {
	b.eventsMu.Lock()
	defer b.eventsMu.Unlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}
