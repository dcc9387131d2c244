package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/qassure-lab/lotgate/pkg/domain/interfaces"
	"github.com/qassure-lab/lotgate/pkg/domain/model"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
)

// Memory implements Repository interface with in-memory storage
type Memory struct {
	mu            sync.RWMutex
	inspections   map[types.InspectionID]*model.Inspection
	approvals     map[types.ApprovalID]*model.ConditionalApproval
	notifications map[types.NotificationID]*model.NCNotification
}

// NewMemory creates a new memory repository
func NewMemory() *Memory {
	return &Memory{
		inspections:   make(map[types.InspectionID]*model.Inspection),
		approvals:     make(map[types.ApprovalID]*model.ConditionalApproval),
		notifications: make(map[types.NotificationID]*model.NCNotification),
	}
}

// PutInspection creates an inspection in memory
func (m *Memory) PutInspection(ctx context.Context, inspection *model.Inspection) error {
	if inspection == nil {
		return goerr.New("inspection is nil")
	}
	if inspection.ID == "" {
		return goerr.New("inspection ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.inspections[inspection.ID]; exists {
		return goerr.Wrap(model.ErrConflict, "inspection already exists",
			goerr.V("inspectionID", inspection.ID))
	}

	m.inspections[inspection.ID] = inspection.Clone()
	return nil
}

// GetInspection retrieves an inspection by ID
func (m *Memory) GetInspection(ctx context.Context, id types.InspectionID) (*model.Inspection, error) {
	if id == "" {
		return nil, goerr.New("inspection ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	inspection, exists := m.inspections[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrInspectionNotFound, "failed to get inspection",
			goerr.V("inspectionID", id))
	}

	// Return a copy to prevent external modification
	return inspection.Clone(), nil
}

// CompareAndSwapInspection replaces an inspection when the stored
// revision matches
func (m *Memory) CompareAndSwapInspection(ctx context.Context, inspection *model.Inspection, expectedRevision int64) error {
	if inspection == nil {
		return goerr.New("inspection is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, exists := m.inspections[inspection.ID]
	if !exists {
		return goerr.Wrap(model.ErrInspectionNotFound, "failed to update inspection",
			goerr.V("inspectionID", inspection.ID))
	}
	if stored.Revision != expectedRevision {
		return goerr.Wrap(model.ErrRevisionMismatch, "inspection was modified concurrently",
			goerr.V("inspectionID", inspection.ID),
			goerr.V("expected", expectedRevision),
			goerr.V("stored", stored.Revision))
	}

	updated := inspection.Clone()
	updated.Revision = expectedRevision + 1
	m.inspections[inspection.ID] = updated
	inspection.Revision = updated.Revision
	return nil
}

// PutApproval creates a conditional approval. At most one pending
// approval may exist per inspection.
func (m *Memory) PutApproval(ctx context.Context, approval *model.ConditionalApproval) error {
	if approval == nil {
		return goerr.New("approval is nil")
	}
	if approval.ID == "" {
		return goerr.New("approval ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.approvals[approval.ID]; exists {
		return goerr.Wrap(model.ErrConflict, "approval already exists",
			goerr.V("approvalID", approval.ID))
	}
	if approval.IsPending() {
		for _, existing := range m.approvals {
			if existing.InspectionID == approval.InspectionID && existing.IsPending() {
				return goerr.Wrap(model.ErrConflict, "pending approval already exists for inspection",
					goerr.V("inspectionID", approval.InspectionID),
					goerr.V("existingID", existing.ID))
			}
		}
	}

	m.approvals[approval.ID] = approval.Clone()
	return nil
}

// GetApproval retrieves an approval by ID
func (m *Memory) GetApproval(ctx context.Context, id types.ApprovalID) (*model.ConditionalApproval, error) {
	if id == "" {
		return nil, goerr.New("approval ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	approval, exists := m.approvals[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrApprovalNotFound, "failed to get approval",
			goerr.V("approvalID", id))
	}

	return approval.Clone(), nil
}

// GetPendingApprovalByInspection finds the pending approval for an
// inspection, if any
func (m *Memory) GetPendingApprovalByInspection(ctx context.Context, inspectionID types.InspectionID) (*model.ConditionalApproval, error) {
	if inspectionID == "" {
		return nil, goerr.New("inspection ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, approval := range m.approvals {
		if approval.InspectionID == inspectionID && approval.IsPending() {
			return approval.Clone(), nil
		}
	}

	return nil, goerr.Wrap(model.ErrApprovalNotFound, "no pending approval for inspection",
		goerr.V("inspectionID", inspectionID))
}

// CompareAndSwapApproval replaces an approval when the stored revision
// matches
func (m *Memory) CompareAndSwapApproval(ctx context.Context, approval *model.ConditionalApproval, expectedRevision int64) error {
	if approval == nil {
		return goerr.New("approval is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, exists := m.approvals[approval.ID]
	if !exists {
		return goerr.Wrap(model.ErrApprovalNotFound, "failed to update approval",
			goerr.V("approvalID", approval.ID))
	}
	if stored.Revision != expectedRevision {
		return goerr.Wrap(model.ErrRevisionMismatch, "approval was modified concurrently",
			goerr.V("approvalID", approval.ID),
			goerr.V("expected", expectedRevision),
			goerr.V("stored", stored.Revision))
	}

	updated := approval.Clone()
	updated.Revision = expectedRevision + 1
	m.approvals[approval.ID] = updated
	approval.Revision = updated.Revision
	return nil
}

// PutNotification creates a notification in memory
func (m *Memory) PutNotification(ctx context.Context, notification *model.NCNotification) error {
	if notification == nil {
		return goerr.New("notification is nil")
	}
	if notification.ID == "" {
		return goerr.New("notification ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.notifications[notification.ID]; exists {
		return goerr.Wrap(model.ErrConflict, "notification already exists",
			goerr.V("notificationID", notification.ID))
	}

	m.notifications[notification.ID] = notification.Clone()
	return nil
}

// GetNotification retrieves a notification by ID
func (m *Memory) GetNotification(ctx context.Context, id types.NotificationID) (*model.NCNotification, error) {
	if id == "" {
		return nil, goerr.New("notification ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	notification, exists := m.notifications[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotificationNotFound, "failed to get notification",
			goerr.V("notificationID", id))
	}

	return notification.Clone(), nil
}

// ListOpenNotifications retrieves all non-terminal notifications,
// oldest first
func (m *Memory) ListOpenNotifications(ctx context.Context) ([]*model.NCNotification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	notifications := make([]*model.NCNotification, 0)
	for _, notification := range m.notifications {
		if !notification.Status.IsTerminal() {
			notifications = append(notifications, notification.Clone())
		}
	}

	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.Before(notifications[j].CreatedAt)
	})

	return notifications, nil
}

// CompareAndSwapNotification replaces a notification when the stored
// revision matches. Two concurrent escalations cannot both succeed from
// the same revision.
func (m *Memory) CompareAndSwapNotification(ctx context.Context, notification *model.NCNotification, expectedRevision int64) error {
	if notification == nil {
		return goerr.New("notification is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, exists := m.notifications[notification.ID]
	if !exists {
		return goerr.Wrap(model.ErrNotificationNotFound, "failed to update notification",
			goerr.V("notificationID", notification.ID))
	}
	if stored.Revision != expectedRevision {
		return goerr.Wrap(model.ErrRevisionMismatch, "notification was modified concurrently",
			goerr.V("notificationID", notification.ID),
			goerr.V("expected", expectedRevision),
			goerr.V("stored", stored.Revision))
	}

	updated := notification.Clone()
	updated.Revision = expectedRevision + 1
	m.notifications[notification.ID] = updated
	notification.Revision = updated.Revision
	return nil
}

// Close does nothing for memory repository
func (m *Memory) Close() error {
	return nil
}

// Clear clears all data (useful for testing)
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inspections = make(map[types.InspectionID]*model.Inspection)
	m.approvals = make(map[types.ApprovalID]*model.ConditionalApproval)
	m.notifications = make(map[types.NotificationID]*model.NCNotification)
}

var _ interfaces.Repository = (*Memory)(nil) // Compile-time interface check
