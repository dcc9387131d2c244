package types

// InspectionStatus represents the lifecycle status of an inspection
type InspectionStatus string

const (
	InspectionStatusInProgress            InspectionStatus = "in_progress"
	InspectionStatusSubmitted             InspectionStatus = "submitted"
	InspectionStatusApproved              InspectionStatus = "approved"
	InspectionStatusRejected              InspectionStatus = "rejected"
	InspectionStatusConditionallyApproved InspectionStatus = "conditionally_approved"
)

// String returns the string representation of the status
func (s InspectionStatus) String() string {
	return string(s)
}

// IsValid checks if the status is valid
func (s InspectionStatus) IsValid() bool {
	switch s {
	case InspectionStatusInProgress, InspectionStatusSubmitted,
		InspectionStatusApproved, InspectionStatusRejected,
		InspectionStatusConditionallyApproved:
		return true
	default:
		return false
	}
}

// IsFinal checks if the status is a terminal inspection outcome
func (s InspectionStatus) IsFinal() bool {
	switch s {
	case InspectionStatusApproved, InspectionStatusRejected, InspectionStatusConditionallyApproved:
		return true
	default:
		return false
	}
}

// NCStatus represents the status of a non-conformity notification
type NCStatus string

const (
	NCStatusPending  NCStatus = "pending"
	NCStatusInReview NCStatus = "in_review"
	NCStatusApproved NCStatus = "approved"
	NCStatusRejected NCStatus = "rejected"
	NCStatusResolved NCStatus = "resolved"
)

// String returns the string representation of the status
func (s NCStatus) String() string {
	return string(s)
}

// IsValid checks if the status is valid
func (s NCStatus) IsValid() bool {
	switch s {
	case NCStatusPending, NCStatusInReview, NCStatusApproved, NCStatusRejected, NCStatusResolved:
		return true
	default:
		return false
	}
}

// IsTerminal checks if the status forbids further transitions.
// Resolved and rejected notifications can no longer be escalated.
func (s NCStatus) IsTerminal() bool {
	return s == NCStatusResolved || s == NCStatusRejected
}

// ApprovalStatus represents the status of a conditional approval request
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// String returns the string representation of the status
func (s ApprovalStatus) String() string {
	return string(s)
}

// IsValid checks if the status is valid
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal checks if the approval has been decided
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

// NotificationEvent identifies the lifecycle event delivered to a Notifier
type NotificationEvent string

const (
	EventRaised    NotificationEvent = "raised"
	EventEscalated NotificationEvent = "escalated"
	EventResolved  NotificationEvent = "resolved"
)

// String returns the string representation of the event
func (e NotificationEvent) String() string {
	return string(e)
}
