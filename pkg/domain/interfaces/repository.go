package interfaces

import (
	"context"

	"github.com/qassure-lab/lotgate/pkg/domain/model"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
)

// Repository defines the interface for data persistence.
//
// Put operations create entities and fail on duplicates. CompareAndSwap
// operations replace an entity only when the stored revision matches
// expectedRevision, assigning expectedRevision+1 on success; a mismatch
// fails with model.ErrRevisionMismatch and no write occurs.
type Repository interface {
	// Inspection operations
	PutInspection(ctx context.Context, inspection *model.Inspection) error
	GetInspection(ctx context.Context, id types.InspectionID) (*model.Inspection, error)
	CompareAndSwapInspection(ctx context.Context, inspection *model.Inspection, expectedRevision int64) error

	// Conditional approval operations. PutApproval enforces at most one
	// pending approval per inspection and fails with model.ErrConflict.
	PutApproval(ctx context.Context, approval *model.ConditionalApproval) error
	GetApproval(ctx context.Context, id types.ApprovalID) (*model.ConditionalApproval, error)
	GetPendingApprovalByInspection(ctx context.Context, inspectionID types.InspectionID) (*model.ConditionalApproval, error)
	CompareAndSwapApproval(ctx context.Context, approval *model.ConditionalApproval, expectedRevision int64) error

	// Non-conformity notification operations
	PutNotification(ctx context.Context, notification *model.NCNotification) error
	GetNotification(ctx context.Context, id types.NotificationID) (*model.NCNotification, error)
	ListOpenNotifications(ctx context.Context) ([]*model.NCNotification, error)
	CompareAndSwapNotification(ctx context.Context, notification *model.NCNotification, expectedRevision int64) error

	// Close closes the repository connection
	Close() error
}
