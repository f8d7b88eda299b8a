package telegram

import (
	"sync"
	"time"
)

// AuditCapacity is the number of webhook events kept for inspection.
const AuditCapacity = 20

type Outcome string

const (
	OutcomeStored  Outcome = "stored"
	OutcomeNoMatch Outcome = "no_match"
	OutcomeCommand Outcome = "command"
	OutcomeEmpty   Outcome = "empty"
	OutcomeError   Outcome = "error"
)

// WebhookEvent records one received update for debugging.
type WebhookEvent struct {
	Timestamp time.Time `json:"timestamp"`
	UpdateID  int64     `json:"update_id,omitempty"`
	Text      string    `json:"text"`
	ChatID    *int64    `json:"chat_id"`
	Stored    bool      `json:"stored"`
	Outcome   Outcome   `json:"outcome"`
}

// AuditLog is a fixed size ring of webhook events. The oldest event is
// evicted when a new one arrives at capacity.
type AuditLog struct {
	mu     sync.Mutex
	events []WebhookEvent
	next   int
	full   bool
}

func NewAuditLog(capacity int) *AuditLog {
	if capacity <= 0 {
		capacity = AuditCapacity
	}
	return &AuditLog{events: make([]WebhookEvent, capacity)}
}

func (a *AuditLog) Record(ev WebhookEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.events[a.next] = ev
	a.next = (a.next + 1) % len(a.events)
	if a.next == 0 {
		a.full = true
	}
}

// Snapshot returns the recorded events newest first.
func (a *AuditLog) Snapshot() []WebhookEvent {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := a.next
	if a.full {
		n = len(a.events)
	}
	out := make([]WebhookEvent, 0, n)
	for i := 1; i <= n; i++ {
		idx := (a.next - i + len(a.events)) % len(a.events)
		out = append(out, a.events[idx])
	}
	return out
}

func (a *AuditLog) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.full {
		return len(a.events)
	}
	return a.next
}
