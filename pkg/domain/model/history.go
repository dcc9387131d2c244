package model

import (
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
)

// History log actions
const (
	ActionCreated          = "created"
	ActionDefectRecorded   = "defect_recorded"
	ActionTallyReset       = "tally_reset"
	ActionSubmitted        = "submitted"
	ActionRaised           = "raised"
	ActionEscalated        = "escalated"
	ActionStatusChanged    = "status_changed"
	ActionResolved         = "resolved"
	ActionApprovalOpened   = "approval_opened"
	ActionApprovalApproved = "approval_approved"
	ActionApprovalRejected = "approval_rejected"
)

// HistoryEntry is one record of the append-only history log
type HistoryEntry struct {
	ID        types.HistoryEntryID `json:"id"`
	Timestamp time.Time            `json:"timestamp"`
	Action    string               `json:"action"`
	Actor     types.ActorID        `json:"actor"`
	Details   string               `json:"details,omitempty"`
}

// NewHistoryEntry creates a history entry
func NewHistoryEntry(action string, actor types.ActorID, details string, at time.Time) (HistoryEntry, error) {
	if action == "" {
		return HistoryEntry{}, goerr.New("history action is required")
	}
	if actor == "" {
		return HistoryEntry{}, goerr.New("history actor is required")
	}
	if at.IsZero() {
		return HistoryEntry{}, goerr.New("history timestamp is required")
	}
	return HistoryEntry{
		ID:        types.NewHistoryEntryID(),
		Timestamp: at,
		Action:    action,
		Actor:     actor,
		Details:   details,
	}, nil
}

// HistoryLog is an append-only ordered sequence of history entries.
// Entries can be appended and read but never rewritten or truncated.
type HistoryLog struct {
	entries []HistoryEntry
}

// NewHistoryLog rebuilds a log from persisted entries
func NewHistoryLog(entries []HistoryEntry) *HistoryLog {
	copied := make([]HistoryEntry, len(entries))
	copy(copied, entries)
	return &HistoryLog{entries: copied}
}

// Append adds one entry to the end of the log
func (l *HistoryLog) Append(entry HistoryEntry) {
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of all entries in order
func (l *HistoryLog) Entries() []HistoryEntry {
	entries := make([]HistoryEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// Last returns the most recent entry
func (l *HistoryLog) Last() (HistoryEntry, bool) {
	if len(l.entries) == 0 {
		return HistoryEntry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Len returns the number of entries
func (l *HistoryLog) Len() int {
	return len(l.entries)
}

// Clone returns a deep copy of the log
func (l *HistoryLog) Clone() *HistoryLog {
	return NewHistoryLog(l.entries)
}

// MarshalJSON serializes the log as a plain entry array
func (l *HistoryLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.entries)
}

// UnmarshalJSON rebuilds the log from a plain entry array
func (l *HistoryLog) UnmarshalJSON(data []byte) error {
	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return goerr.Wrap(err, "failed to unmarshal history log")
	}
	l.entries = entries
	return nil
}
