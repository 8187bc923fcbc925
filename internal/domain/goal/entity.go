package goal

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type GoalStatus string

const (
	StatusDraft         GoalStatus = "draft"
	StatusPendingFirst  GoalStatus = "pending_first"
	StatusApprovedFirst GoalStatus = "approved_first"
	StatusPendingFinal  GoalStatus = "pending_final"
	StatusCompleted     GoalStatus = "completed"
	StatusRejected      GoalStatus = "rejected"
)

type GoalLevel string

const (
	LevelLow    GoalLevel = "low"
	LevelMedium GoalLevel = "medium"
	LevelHigh   GoalLevel = "high"
)

func AllLevels() []string {
	return []string{string(LevelLow), string(LevelMedium), string(LevelHigh)}
}

// GoalAction is the code recorded in the history log for each transition.
type GoalAction string

const (
	ActionSubmit       GoalAction = "submit"
	ActionApproveFirst GoalAction = "approve_first"
	ActionRejectFirst  GoalAction = "reject_first"
	ActionEvaluate     GoalAction = "evaluate"
	ActionApproveFinal GoalAction = "approve_final"
	ActionRejectFinal  GoalAction = "reject_final"
)

// HistoryEntry is one immutable record of a goal transition. Entries are
// only ever appended, never edited or removed.
type HistoryEntry struct {
	ID        string     `json:"id"`
	Action    GoalAction `json:"action"`
	ActorID   string     `json:"actor_id"`
	Comment   *string    `json:"comment,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// HistoryEntries is stored as a JSONB column on the goals table.
type HistoryEntries []HistoryEntry

// Value implements driver.Valuer for database storage
func (h HistoryEntries) Value() (driver.Value, error) {
	if h == nil {
		return json.Marshal(HistoryEntries{})
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner for database retrieval
func (h *HistoryEntries) Scan(value interface{}) error {
	if value == nil {
		*h = HistoryEntries{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan HistoryEntries: invalid type")
	}

	return json.Unmarshal(bytes, h)
}

// Goal is a performance objective under a two-approver sign-off workflow.
// CurrentApproverID is always set while the goal is pending; it is
// reassigned at the evaluate step.
type Goal struct {
	ID                string
	OwnerID           string
	Title             string
	Description       *string
	Progress          int
	Grade             *string
	Deadline          *time.Time
	Level             GoalLevel
	ActionPlan        *string
	Status            GoalStatus
	CurrentApproverID *string
	History           HistoryEntries
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// DTO
	OwnerName    *string
	ApproverName *string
}

// Editable reports whether the owner may still change business fields.
func (g *Goal) Editable() bool {
	switch g.Status {
	case StatusDraft, StatusApprovedFirst, StatusRejected:
		return true
	}
	return false
}

// Pending reports whether the goal is waiting on an approver.
func (g *Goal) Pending() bool {
	return g.Status == StatusPendingFirst || g.Status == StatusPendingFinal
}
