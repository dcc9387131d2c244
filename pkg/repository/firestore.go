package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/qassure-lab/lotgate/pkg/domain/interfaces"
	"github.com/qassure-lab/lotgate/pkg/domain/model"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// Collection names
	inspectionsCollection   = "inspections"
	approvalsCollection     = "conditional_approvals"
	notificationsCollection = "nc_notifications"

	// Field names used in queries
	fieldInspectionID = "inspection_id"
	fieldStatus       = "status"
	fieldRevision     = "revision"
)

// Firestore implements Repository interface with Firestore
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	// Test connection by attempting to read from a collection.
	// This fails fast on an invalid project ID or missing permissions.
	_, err = client.Collection(notificationsCollection).Limit(1).Documents(ctx).Next()
	if err != nil && err != iterator.Done {
		if status.Code(err) == codes.PermissionDenied || status.Code(err) == codes.Unauthenticated {
			_ = client.Close()
			return nil, goerr.Wrap(err, "failed to connect to firestore project",
				goerr.V("firestore error code", status.Code(err).String()),
			)
		}
		logger.Debug("Firestore connection test returned error (may be empty collection)",
			"error", err,
			"errorCode", status.Code(err).String(),
		)
	}

	logger.Info("Firestore repository initialized successfully",
		"projectID", projectID,
		"databaseID", databaseID,
	)

	return &Firestore{client: client}, nil
}

// Document types with explicit field names. History logs and tallies are
// flattened so Firestore never serializes unexported fields.

type historyEntryDoc struct {
	ID        string    `firestore:"id"`
	Timestamp time.Time `firestore:"timestamp"`
	Action    string    `firestore:"action"`
	Actor     string    `firestore:"actor"`
	Details   string    `firestore:"details"`
}

func historyToDocs(log *model.HistoryLog) []historyEntryDoc {
	entries := log.Entries()
	docs := make([]historyEntryDoc, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, historyEntryDoc{
			ID:        e.ID.String(),
			Timestamp: e.Timestamp,
			Action:    e.Action,
			Actor:     e.Actor.String(),
			Details:   e.Details,
		})
	}
	return docs
}

func historyFromDocs(docs []historyEntryDoc) *model.HistoryLog {
	entries := make([]model.HistoryEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, model.HistoryEntry{
			ID:        types.HistoryEntryID(d.ID),
			Timestamp: d.Timestamp,
			Action:    d.Action,
			Actor:     types.ActorID(d.Actor),
			Details:   d.Details,
		})
	}
	return model.NewHistoryLog(entries)
}

type verdictDoc struct {
	Critical string `firestore:"critical"`
	Major    string `firestore:"major"`
	Minor    string `firestore:"minor"`
	Overall  string `firestore:"overall"`
}

type inspectionDoc struct {
	ID             string            `firestore:"id"`
	PlanID         string            `firestore:"plan_id"`
	LotSize        int               `firestore:"lot_size"`
	Level          string            `firestore:"level"`
	Status         string            `firestore:"status"`
	CountCritical  int               `firestore:"count_critical"`
	CountMajor     int               `firestore:"count_major"`
	CountMinor     int               `firestore:"count_minor"`
	TallySubmitted bool              `firestore:"tally_submitted"`
	Verdict        *verdictDoc       `firestore:"verdict"`
	History        []historyEntryDoc `firestore:"history"`
	Revision       int64             `firestore:"revision"`
	CreatedBy      string            `firestore:"created_by"`
	CreatedAt      time.Time         `firestore:"created_at"`
	UpdatedAt      time.Time         `firestore:"updated_at"`
}

func inspectionToDoc(i *model.Inspection) *inspectionDoc {
	snapshot := i.Tally.Snapshot()
	doc := &inspectionDoc{
		ID:             i.ID.String(),
		PlanID:         i.PlanID,
		LotSize:        i.LotSize,
		Level:          i.Level.String(),
		Status:         i.Status.String(),
		CountCritical:  snapshot.Count(types.TierCritical),
		CountMajor:     snapshot.Count(types.TierMajor),
		CountMinor:     snapshot.Count(types.TierMinor),
		TallySubmitted: i.Tally.Submitted(),
		History:        historyToDocs(i.History),
		Revision:       i.Revision,
		CreatedBy:      i.CreatedBy.String(),
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
	if i.Verdict != nil {
		doc.Verdict = &verdictDoc{
			Critical: i.Verdict.TierOutcome(types.TierCritical).String(),
			Major:    i.Verdict.TierOutcome(types.TierMajor).String(),
			Minor:    i.Verdict.TierOutcome(types.TierMinor).String(),
			Overall:  i.Verdict.Overall.String(),
		}
	}
	return doc
}

func inspectionFromDoc(doc *inspectionDoc) *model.Inspection {
	snapshot := model.TallySnapshot{
		types.TierCritical: doc.CountCritical,
		types.TierMajor:    doc.CountMajor,
		types.TierMinor:    doc.CountMinor,
	}
	inspection := &model.Inspection{
		ID:        types.InspectionID(doc.ID),
		PlanID:    doc.PlanID,
		LotSize:   doc.LotSize,
		Level:     types.InspectionLevel(doc.Level),
		Status:    types.InspectionStatus(doc.Status),
		Tally:     model.RestoreDefectTally(snapshot, doc.TallySubmitted),
		History:   historyFromDocs(doc.History),
		Revision:  doc.Revision,
		CreatedBy: types.ActorID(doc.CreatedBy),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	if doc.Verdict != nil {
		inspection.Verdict = &model.AcceptanceVerdict{
			Tiers: map[types.SeverityTier]types.TierVerdict{
				types.TierCritical: types.TierVerdict(doc.Verdict.Critical),
				types.TierMajor:    types.TierVerdict(doc.Verdict.Major),
				types.TierMinor:    types.TierVerdict(doc.Verdict.Minor),
			},
			Overall: types.OverallVerdict(doc.Verdict.Overall),
		}
	}
	return inspection
}

type approvalDoc struct {
	ID           string     `firestore:"id"`
	InspectionID string     `firestore:"inspection_id"`
	Status       string     `firestore:"status"`
	Requester    string     `firestore:"requester"`
	Reason       string     `firestore:"reason"`
	Approver     string     `firestore:"approver"`
	Comments     string     `firestore:"comments"`
	Revision     int64      `firestore:"revision"`
	CreatedAt    time.Time  `firestore:"created_at"`
	ResolvedAt   *time.Time `firestore:"resolved_at"`
}

func approvalToDoc(a *model.ConditionalApproval) *approvalDoc {
	return &approvalDoc{
		ID:           a.ID.String(),
		InspectionID: a.InspectionID.String(),
		Status:       a.Status.String(),
		Requester:    a.Requester.String(),
		Reason:       a.Reason,
		Approver:     a.Approver.String(),
		Comments:     a.Comments,
		Revision:     a.Revision,
		CreatedAt:    a.CreatedAt,
		ResolvedAt:   a.ResolvedAt,
	}
}

func approvalFromDoc(doc *approvalDoc) *model.ConditionalApproval {
	return &model.ConditionalApproval{
		ID:           types.ApprovalID(doc.ID),
		InspectionID: types.InspectionID(doc.InspectionID),
		Status:       types.ApprovalStatus(doc.Status),
		Requester:    types.ActorID(doc.Requester),
		Reason:       doc.Reason,
		Approver:     types.ActorID(doc.Approver),
		Comments:     doc.Comments,
		Revision:     doc.Revision,
		CreatedAt:    doc.CreatedAt,
		ResolvedAt:   doc.ResolvedAt,
	}
}

type notificationDoc struct {
	ID                     string            `firestore:"id"`
	InspectionID           string            `firestore:"inspection_id"`
	Severity               string            `firestore:"severity"`
	Category               string            `firestore:"category"`
	DefectType             string            `firestore:"defect_type"`
	Priority               string            `firestore:"priority"`
	Status                 string            `firestore:"status"`
	EscalationLevel        int               `firestore:"escalation_level"`
	AutoEscalate           bool              `firestore:"auto_escalate"`
	EscalationDelayMinutes int               `firestore:"escalation_delay_minutes"`
	Recipients             []string          `firestore:"recipients"`
	History                []historyEntryDoc `firestore:"history"`
	Revision               int64             `firestore:"revision"`
	CreatedAt              time.Time         `firestore:"created_at"`
	ResolvedAt             *time.Time        `firestore:"resolved_at"`
	ResolutionNotes        string            `firestore:"resolution_notes"`
}

func notificationToDoc(n *model.NCNotification) *notificationDoc {
	return &notificationDoc{
		ID:                     n.ID.String(),
		InspectionID:           n.InspectionID.String(),
		Severity:               n.Severity.String(),
		Category:               n.Category,
		DefectType:             n.DefectType,
		Priority:               n.Priority.String(),
		Status:                 n.Status.String(),
		EscalationLevel:        n.EscalationLevel,
		AutoEscalate:           n.AutoEscalate,
		EscalationDelayMinutes: n.EscalationDelayMinutes,
		Recipients:             append([]string(nil), n.Recipients...),
		History:                historyToDocs(n.History),
		Revision:               n.Revision,
		CreatedAt:              n.CreatedAt,
		ResolvedAt:             n.ResolvedAt,
		ResolutionNotes:        n.ResolutionNotes,
	}
}

func notificationFromDoc(doc *notificationDoc) *model.NCNotification {
	return &model.NCNotification{
		ID:                     types.NotificationID(doc.ID),
		InspectionID:           types.InspectionID(doc.InspectionID),
		Severity:               types.SeverityTier(doc.Severity),
		Category:               doc.Category,
		DefectType:             doc.DefectType,
		Priority:               types.NCPriority(doc.Priority),
		Status:                 types.NCStatus(doc.Status),
		EscalationLevel:        doc.EscalationLevel,
		AutoEscalate:           doc.AutoEscalate,
		EscalationDelayMinutes: doc.EscalationDelayMinutes,
		Recipients:             doc.Recipients,
		History:                historyFromDocs(doc.History),
		Revision:               doc.Revision,
		CreatedAt:              doc.CreatedAt,
		ResolvedAt:             doc.ResolvedAt,
		ResolutionNotes:        doc.ResolutionNotes,
	}
}

// PutInspection creates an inspection document
func (f *Firestore) PutInspection(ctx context.Context, inspection *model.Inspection) error {
	if inspection == nil {
		return goerr.New("inspection is nil")
	}
	if inspection.ID == "" {
		return goerr.New("inspection ID is empty")
	}

	ref := f.client.Collection(inspectionsCollection).Doc(inspection.ID.String())
	if _, err := ref.Create(ctx, inspectionToDoc(inspection)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(model.ErrConflict, "inspection already exists",
				goerr.V("inspectionID", inspection.ID))
		}
		return goerr.Wrap(err, "failed to save inspection to firestore")
	}
	return nil
}

// GetInspection retrieves an inspection by ID
func (f *Firestore) GetInspection(ctx context.Context, id types.InspectionID) (*model.Inspection, error) {
	if id == "" {
		return nil, goerr.New("inspection ID is empty")
	}

	doc, err := f.client.Collection(inspectionsCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrInspectionNotFound, "failed to get inspection",
				goerr.V("inspectionID", id))
		}
		return nil, goerr.Wrap(err, "failed to get inspection from firestore")
	}

	var data inspectionDoc
	if err := doc.DataTo(&data); err != nil {
		return nil, goerr.Wrap(err, "failed to decode inspection")
	}
	return inspectionFromDoc(&data), nil
}

// CompareAndSwapInspection updates an inspection within a transaction
// guarded by the stored revision
func (f *Firestore) CompareAndSwapInspection(ctx context.Context, inspection *model.Inspection, expectedRevision int64) error {
	if inspection == nil {
		return goerr.New("inspection is nil")
	}

	ref := f.client.Collection(inspectionsCollection).Doc(inspection.ID.String())
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrInspectionNotFound, "failed to update inspection",
					goerr.V("inspectionID", inspection.ID))
			}
			return goerr.Wrap(err, "failed to read inspection in transaction")
		}

		stored, err := doc.DataAt(fieldRevision)
		if err != nil {
			return goerr.Wrap(err, "failed to read inspection revision")
		}
		if rev, ok := stored.(int64); !ok || rev != expectedRevision {
			return goerr.Wrap(model.ErrRevisionMismatch, "inspection was modified concurrently",
				goerr.V("inspectionID", inspection.ID),
				goerr.V("expected", expectedRevision),
				goerr.V("stored", stored))
		}

		updated := inspectionToDoc(inspection)
		updated.Revision = expectedRevision + 1
		return tx.Set(ref, updated)
	})
	if err != nil {
		return err
	}

	inspection.Revision = expectedRevision + 1
	return nil
}

// PutApproval creates a conditional approval, enforcing at most one
// pending approval per inspection inside a transaction
func (f *Firestore) PutApproval(ctx context.Context, approval *model.ConditionalApproval) error {
	if approval == nil {
		return goerr.New("approval is nil")
	}
	if approval.ID == "" {
		return goerr.New("approval ID is empty")
	}

	ref := f.client.Collection(approvalsCollection).Doc(approval.ID.String())
	query := f.client.Collection(approvalsCollection).
		Where(fieldInspectionID, "==", approval.InspectionID.String()).
		Where(fieldStatus, "==", types.ApprovalStatusPending.String()).
		Limit(1)

	return f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if approval.IsPending() {
			iter := tx.Documents(query)
			defer iter.Stop()
			if _, err := iter.Next(); err != iterator.Done {
				if err != nil {
					return goerr.Wrap(err, "failed to query pending approvals")
				}
				return goerr.Wrap(model.ErrConflict, "pending approval already exists for inspection",
					goerr.V("inspectionID", approval.InspectionID))
			}
		}
		if err := tx.Create(ref, approvalToDoc(approval)); err != nil {
			if status.Code(err) == codes.AlreadyExists {
				return goerr.Wrap(model.ErrConflict, "approval already exists",
					goerr.V("approvalID", approval.ID))
			}
			return goerr.Wrap(err, "failed to save approval to firestore")
		}
		return nil
	})
}

// GetApproval retrieves an approval by ID
func (f *Firestore) GetApproval(ctx context.Context, id types.ApprovalID) (*model.ConditionalApproval, error) {
	if id == "" {
		return nil, goerr.New("approval ID is empty")
	}

	doc, err := f.client.Collection(approvalsCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrApprovalNotFound, "failed to get approval",
				goerr.V("approvalID", id))
		}
		return nil, goerr.Wrap(err, "failed to get approval from firestore")
	}

	var data approvalDoc
	if err := doc.DataTo(&data); err != nil {
		return nil, goerr.Wrap(err, "failed to decode approval")
	}
	return approvalFromDoc(&data), nil
}

// GetPendingApprovalByInspection finds the pending approval for an
// inspection, if any
func (f *Firestore) GetPendingApprovalByInspection(ctx context.Context, inspectionID types.InspectionID) (*model.ConditionalApproval, error) {
	if inspectionID == "" {
		return nil, goerr.New("inspection ID is empty")
	}

	iter := f.client.Collection(approvalsCollection).
		Where(fieldInspectionID, "==", inspectionID.String()).
		Where(fieldStatus, "==", types.ApprovalStatusPending.String()).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(model.ErrApprovalNotFound, "no pending approval for inspection",
			goerr.V("inspectionID", inspectionID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query pending approvals")
	}

	var data approvalDoc
	if err := doc.DataTo(&data); err != nil {
		return nil, goerr.Wrap(err, "failed to decode approval")
	}
	return approvalFromDoc(&data), nil
}

// CompareAndSwapApproval updates an approval within a transaction
// guarded by the stored revision
func (f *Firestore) CompareAndSwapApproval(ctx context.Context, approval *model.ConditionalApproval, expectedRevision int64) error {
	if approval == nil {
		return goerr.New("approval is nil")
	}

	ref := f.client.Collection(approvalsCollection).Doc(approval.ID.String())
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrApprovalNotFound, "failed to update approval",
					goerr.V("approvalID", approval.ID))
			}
			return goerr.Wrap(err, "failed to read approval in transaction")
		}

		stored, err := doc.DataAt(fieldRevision)
		if err != nil {
			return goerr.Wrap(err, "failed to read approval revision")
		}
		if rev, ok := stored.(int64); !ok || rev != expectedRevision {
			return goerr.Wrap(model.ErrRevisionMismatch, "approval was modified concurrently",
				goerr.V("approvalID", approval.ID),
				goerr.V("expected", expectedRevision),
				goerr.V("stored", stored))
		}

		updated := approvalToDoc(approval)
		updated.Revision = expectedRevision + 1
		return tx.Set(ref, updated)
	})
	if err != nil {
		return err
	}

	approval.Revision = expectedRevision + 1
	return nil
}

// PutNotification creates a notification document
func (f *Firestore) PutNotification(ctx context.Context, notification *model.NCNotification) error {
	if notification == nil {
		return goerr.New("notification is nil")
	}
	if notification.ID == "" {
		return goerr.New("notification ID is empty")
	}

	ref := f.client.Collection(notificationsCollection).Doc(notification.ID.String())
	if _, err := ref.Create(ctx, notificationToDoc(notification)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(model.ErrConflict, "notification already exists",
				goerr.V("notificationID", notification.ID))
		}
		return goerr.Wrap(err, "failed to save notification to firestore")
	}
	return nil
}

// GetNotification retrieves a notification by ID
func (f *Firestore) GetNotification(ctx context.Context, id types.NotificationID) (*model.NCNotification, error) {
	if id == "" {
		return nil, goerr.New("notification ID is empty")
	}

	doc, err := f.client.Collection(notificationsCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotificationNotFound, "failed to get notification",
				goerr.V("notificationID", id))
		}
		return nil, goerr.Wrap(err, "failed to get notification from firestore")
	}

	var data notificationDoc
	if err := doc.DataTo(&data); err != nil {
		return nil, goerr.Wrap(err, "failed to decode notification")
	}
	return notificationFromDoc(&data), nil
}

// ListOpenNotifications retrieves all non-terminal notifications
func (f *Firestore) ListOpenNotifications(ctx context.Context) ([]*model.NCNotification, error) {
	// Single-field filter to avoid requiring a composite index; sorted
	// in memory like the other list queries
	iter := f.client.Collection(notificationsCollection).
		Where(fieldStatus, "not-in", []string{
			types.NCStatusResolved.String(),
			types.NCStatusRejected.String(),
		}).
		Documents(ctx)
	defer iter.Stop()

	var notifications []*model.NCNotification
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate notifications")
		}

		var data notificationDoc
		if err := doc.DataTo(&data); err != nil {
			return nil, goerr.Wrap(err, "failed to decode notification")
		}
		notifications = append(notifications, notificationFromDoc(&data))
	}

	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.Before(notifications[j].CreatedAt)
	})

	return notifications, nil
}

// CompareAndSwapNotification updates a notification within a transaction
// guarded by the stored revision
func (f *Firestore) CompareAndSwapNotification(ctx context.Context, notification *model.NCNotification, expectedRevision int64) error {
	if notification == nil {
		return goerr.New("notification is nil")
	}

	ref := f.client.Collection(notificationsCollection).Doc(notification.ID.String())
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotificationNotFound, "failed to update notification",
					goerr.V("notificationID", notification.ID))
			}
			return goerr.Wrap(err, "failed to read notification in transaction")
		}

		stored, err := doc.DataAt(fieldRevision)
		if err != nil {
			return goerr.Wrap(err, "failed to read notification revision")
		}
		if rev, ok := stored.(int64); !ok || rev != expectedRevision {
			return goerr.Wrap(model.ErrRevisionMismatch, "notification was modified concurrently",
				goerr.V("notificationID", notification.ID),
				goerr.V("expected", expectedRevision),
				goerr.V("stored", stored))
		}

		updated := notificationToDoc(notification)
		updated.Revision = expectedRevision + 1
		return tx.Set(ref, updated)
	})
	if err != nil {
		return err
	}

	notification.Revision = expectedRevision + 1
	return nil
}

// Close closes the Firestore client
func (f *Firestore) Close() error {
	if err := f.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}

var _ interfaces.Repository = (*Firestore)(nil) // Compile-time interface check
