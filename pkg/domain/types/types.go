package types

import (
	"github.com/google/uuid"
)

// InspectionID represents an inspection identifier
type InspectionID string

// String returns the string representation
func (id InspectionID) String() string {
	return string(id)
}

// NewInspectionID creates a new InspectionID
func NewInspectionID() InspectionID {
	return InspectionID(uuid.New().String())
}

// NotificationID represents a non-conformity notification identifier
type NotificationID string

// String returns the string representation
func (id NotificationID) String() string {
	return string(id)
}

// NewNotificationID creates a new NotificationID
func NewNotificationID() NotificationID {
	return NotificationID(uuid.New().String())
}

// ApprovalID represents a conditional approval identifier
type ApprovalID string

// String returns the string representation
func (id ApprovalID) String() string {
	return string(id)
}

// NewApprovalID creates a new ApprovalID
func NewApprovalID() ApprovalID {
	return ApprovalID(uuid.New().String())
}

// HistoryEntryID represents a history log entry identifier (UUID v7 so
// entries sort by creation time)
type HistoryEntryID string

// String returns the string representation
func (id HistoryEntryID) String() string {
	return string(id)
}

// NewHistoryEntryID creates a new HistoryEntryID
func NewHistoryEntryID() HistoryEntryID {
	id, err := uuid.NewV7()
	if err != nil {
		// crypto/rand failure; fall back to a v4 ID rather than failing the append
		id = uuid.New()
	}
	return HistoryEntryID(id.String())
}

// ActorID identifies the user performing an operation
type ActorID string

// String returns the string representation
func (id ActorID) String() string {
	return string(id)
}

// SeverityTier classifies a defect by severity
type SeverityTier string

const (
	TierCritical SeverityTier = "critical"
	TierMajor    SeverityTier = "major"
	TierMinor    SeverityTier = "minor"
)

// Tiers returns all severity tiers ordered by strictness (critical first)
func Tiers() []SeverityTier {
	return []SeverityTier{TierCritical, TierMajor, TierMinor}
}

// String returns the string representation
func (t SeverityTier) String() string {
	return string(t)
}

// IsValid checks if the severity tier is valid
func (t SeverityTier) IsValid() bool {
	switch t {
	case TierCritical, TierMajor, TierMinor:
		return true
	default:
		return false
	}
}

// InspectionLevel represents a general inspection level (NBR 5426 / ISO 2859)
type InspectionLevel string

const (
	LevelI   InspectionLevel = "I"
	LevelII  InspectionLevel = "II"
	LevelIII InspectionLevel = "III"
)

// String returns the string representation
func (l InspectionLevel) String() string {
	return string(l)
}

// IsValid checks if the inspection level is valid
func (l InspectionLevel) IsValid() bool {
	switch l {
	case LevelI, LevelII, LevelIII:
		return true
	default:
		return false
	}
}

// TierVerdict is the per-tier outcome of the acceptance decision
type TierVerdict string

const (
	TierPass TierVerdict = "pass"
	TierFail TierVerdict = "fail"
)

// String returns the string representation
func (v TierVerdict) String() string {
	return string(v)
}

// OverallVerdict is the composed outcome of the acceptance decision
type OverallVerdict string

const (
	VerdictApproved            OverallVerdict = "approved"
	VerdictRejected            OverallVerdict = "rejected"
	VerdictConditionalApproval OverallVerdict = "conditional_approval"
)

// String returns the string representation
func (v OverallVerdict) String() string {
	return string(v)
}

// NCPriority represents the handling priority of a non-conformity
type NCPriority string

const (
	PriorityLow    NCPriority = "low"
	PriorityMedium NCPriority = "medium"
	PriorityHigh   NCPriority = "high"
	PriorityUrgent NCPriority = "urgent"
)

// String returns the string representation
func (p NCPriority) String() string {
	return string(p)
}

// IsValid checks if the priority is valid
func (p NCPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}
