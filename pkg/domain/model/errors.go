package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for domain operations. Callers classify failures with
// errors.Is against these values.
var (
	// ErrConfiguration indicates a malformed sampling table or inspection
	// plan. It is fatal at startup and never recovered silently.
	ErrConfiguration = goerr.New("invalid configuration")

	// ErrOutOfRange indicates a lot size outside the sampling table domain
	ErrOutOfRange = goerr.New("lot size outside sampling table range")

	// ErrInvalidState indicates an operation attempted against an entity
	// whose current state forbids it
	ErrInvalidState = goerr.New("operation not allowed in current state")

	// ErrConflict indicates an attempt to create a second pending
	// conditional approval for the same inspection
	ErrConflict = goerr.New("conflicting pending request")

	// ErrRevisionMismatch indicates a compare-and-swap failure
	ErrRevisionMismatch = goerr.New("entity revision mismatch")

	ErrInspectionNotFound   = goerr.New("inspection not found")
	ErrNotificationNotFound = goerr.New("notification not found")
	ErrApprovalNotFound     = goerr.New("conditional approval not found")
)
