package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
)

// NCInput carries the details of a newly detected non-conformity
type NCInput struct {
	InspectionID           types.InspectionID `json:"inspectionId"`
	Severity               types.SeverityTier `json:"severity"`
	Category               string             `json:"category"`
	DefectType             string             `json:"defectType"`
	Priority               types.NCPriority   `json:"priority"`
	AutoEscalate           bool               `json:"autoEscalate"`
	EscalationDelayMinutes int                `json:"escalationDelayMinutes"`
	Recipients             []string           `json:"recipients"`
}

// Validate validates the input
func (in NCInput) Validate() error {
	if in.InspectionID == "" {
		return goerr.New("inspection ID is required")
	}
	if !in.Severity.IsValid() {
		return goerr.New("invalid severity tier", goerr.V("severity", in.Severity))
	}
	if in.Category == "" {
		return goerr.New("category is required")
	}
	if !in.Priority.IsValid() {
		return goerr.New("invalid priority", goerr.V("priority", in.Priority))
	}
	if in.AutoEscalate && in.EscalationDelayMinutes < 1 {
		return goerr.New("escalation delay must be positive when auto-escalation is enabled",
			goerr.V("delayMinutes", in.EscalationDelayMinutes))
	}
	return nil
}

// NCNotification tracks a detected non-conformity through time-boxed
// escalation levels. State transitions are guarded by the repository's
// compare-and-swap on Revision.
type NCNotification struct {
	ID                     types.NotificationID `json:"id"`
	InspectionID           types.InspectionID   `json:"inspectionId"`
	Severity               types.SeverityTier   `json:"severity"`
	Category               string               `json:"category"`
	DefectType             string               `json:"defectType,omitempty"`
	Priority               types.NCPriority     `json:"priority"`
	Status                 types.NCStatus       `json:"status"`
	EscalationLevel        int                  `json:"escalationLevel"`
	AutoEscalate           bool                 `json:"autoEscalate"`
	EscalationDelayMinutes int                  `json:"escalationDelayMinutes"`
	Recipients             []string             `json:"recipients"`
	History                *HistoryLog          `json:"history"`
	Revision               int64                `json:"revision"`
	CreatedAt              time.Time            `json:"createdAt"`
	ResolvedAt             *time.Time           `json:"resolvedAt,omitempty"`
	ResolutionNotes        string               `json:"resolutionNotes,omitempty"`
}

// NewNCNotification creates a pending notification at escalation level 1
func NewNCNotification(input NCInput, actor types.ActorID, now time.Time) (*NCNotification, error) {
	if err := input.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid non-conformity input")
	}
	if actor == "" {
		return nil, goerr.New("actor is required")
	}

	n := &NCNotification{
		ID:                     types.NewNotificationID(),
		InspectionID:           input.InspectionID,
		Severity:               input.Severity,
		Category:               input.Category,
		DefectType:             input.DefectType,
		Priority:               input.Priority,
		Status:                 types.NCStatusPending,
		EscalationLevel:        1,
		AutoEscalate:           input.AutoEscalate,
		EscalationDelayMinutes: input.EscalationDelayMinutes,
		Recipients:             append([]string(nil), input.Recipients...),
		History:                NewHistoryLog(nil),
		Revision:               0,
		CreatedAt:              now,
	}
	if err := n.appendHistory(ActionRaised, actor, input.Category, now); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *NCNotification) appendHistory(action string, actor types.ActorID, details string, at time.Time) error {
	entry, err := NewHistoryEntry(action, actor, details, at)
	if err != nil {
		return goerr.Wrap(err, "failed to create history entry")
	}
	n.History.Append(entry)
	return nil
}

// Escalate raises the escalation level by one and appends a history
// entry. Terminal notifications cannot be escalated.
func (n *NCNotification) Escalate(actor types.ActorID, now time.Time) error {
	if n.Status.IsTerminal() {
		return goerr.Wrap(ErrInvalidState, "cannot escalate terminal notification",
			goerr.V("notificationID", n.ID),
			goerr.V("status", n.Status))
	}
	n.EscalationLevel++
	return n.appendHistory(ActionEscalated, actor, "", now)
}

// Resolve transitions the notification to resolved. Resolving twice
// fails with ErrInvalidState rather than silently succeeding.
func (n *NCNotification) Resolve(actor types.ActorID, notes string, now time.Time) error {
	if n.Status.IsTerminal() {
		return goerr.Wrap(ErrInvalidState, "notification is already terminal",
			goerr.V("notificationID", n.ID),
			goerr.V("status", n.Status))
	}
	n.Status = types.NCStatusResolved
	n.ResolutionNotes = notes
	n.ResolvedAt = &now
	return n.appendHistory(ActionResolved, actor, notes, now)
}

// UpdateStatus moves the notification to a non-initial workflow status
// (in_review, approved, rejected). Terminal states are final.
func (n *NCNotification) UpdateStatus(status types.NCStatus, actor types.ActorID, note string, now time.Time) error {
	if !status.IsValid() {
		return goerr.New("invalid notification status", goerr.V("status", status))
	}
	if n.Status.IsTerminal() {
		return goerr.Wrap(ErrInvalidState, "notification is already terminal",
			goerr.V("notificationID", n.ID),
			goerr.V("status", n.Status))
	}
	if status == n.Status {
		return goerr.Wrap(ErrInvalidState, "status is already set",
			goerr.V("status", status))
	}

	n.Status = status
	if status.IsTerminal() {
		n.ResolvedAt = &now
	}
	return n.appendHistory(ActionStatusChanged, actor, status.String(), now)
}

// EscalationDelay returns the configured delay as a duration
func (n *NCNotification) EscalationDelay() time.Duration {
	return time.Duration(n.EscalationDelayMinutes) * time.Minute
}

// LastActivity returns the timestamp of the most recent history entry
func (n *NCNotification) LastActivity() time.Time {
	if last, ok := n.History.Last(); ok {
		return last.Timestamp
	}
	return n.CreatedAt
}

// EligibleForAutoEscalation reports whether the scheduler should
// escalate this notification at the given instant
func (n *NCNotification) EligibleForAutoEscalation(now time.Time) bool {
	if !n.AutoEscalate || n.Status.IsTerminal() {
		return false
	}
	return now.Sub(n.LastActivity()) >= n.EscalationDelay()
}

// Clone returns a deep copy of the notification
func (n *NCNotification) Clone() *NCNotification {
	clone := *n
	clone.Recipients = append([]string(nil), n.Recipients...)
	clone.History = n.History.Clone()
	if n.ResolvedAt != nil {
		at := *n.ResolvedAt
		clone.ResolvedAt = &at
	}
	return &clone
}
