// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// IntakeCreatedEvent is published after an intake aggregate commits.
// It carries enough for downstream consumers to journal or notify
// without querying the primary database.
type IntakeCreatedEvent struct {
	IntakeID    uint64   `json:"intake_id"`
	BlockID     *uint64  `json:"block_id,omitempty"`
	CreatedByID uint64   `json:"created_by_id"`
	WeightKG    *float64 `json:"weight_kg,omitempty"`
	Components  int      `json:"components"`
	Additions   int      `json:"additions"`
	Fruits      int      `json:"fruits"`
	LabResults  int      `json:"lab_results"`
	CreatedAt   string   `json:"created_at"`
}
