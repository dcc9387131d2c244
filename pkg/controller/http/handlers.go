package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/qassure-lab/lotgate/pkg/domain/model"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
	"github.com/qassure-lab/lotgate/pkg/usecase"
)

type handler struct {
	acceptance *usecase.Acceptance
	approval   *usecase.Approval
	escalation *usecase.Escalation
}

func newHandler(acceptanceUC *usecase.Acceptance, approvalUC *usecase.Approval, escalationUC *usecase.Escalation) *handler {
	return &handler{
		acceptance: acceptanceUC,
		approval:   approvalUC,
		escalation: escalationUC,
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps domain sentinel errors to HTTP status codes
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, model.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, model.ErrRevisionMismatch):
		status = http.StatusConflict
	case errors.Is(err, model.ErrOutOfRange):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrInspectionNotFound),
		errors.Is(err, model.ErrApprovalNotFound),
		errors.Is(err, model.ErrNotificationNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		ctxlog.From(r.Context()).Error("request failed", "error", err)
	}
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

type createInspectionRequest struct {
	PlanID  string `json:"planId"`
	LotSize int    `json:"lotSize"`
	Level   string `json:"level"`
	Actor   string `json:"actor"`
}

func (h *handler) handleCreateInspection(w http.ResponseWriter, r *http.Request) {
	var req createInspectionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	inspection, err := h.acceptance.CreateInspection(r.Context(), req.PlanID, req.LotSize,
		types.InspectionLevel(req.Level), types.ActorID(req.Actor))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, inspection)
}

func (h *handler) handleGetInspection(w http.ResponseWriter, r *http.Request) {
	id := types.InspectionID(chi.URLParam(r, "inspectionID"))
	inspection, err := h.acceptance.GetInspection(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, inspection)
}

func (h *handler) handlePreviewVerdict(w http.ResponseWriter, r *http.Request) {
	id := types.InspectionID(chi.URLParam(r, "inspectionID"))
	verdict, err := h.acceptance.PreviewVerdict(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, verdict)
}

type recordDefectRequest struct {
	Tier  string `json:"tier"`
	Actor string `json:"actor"`
}

func (h *handler) handleRecordDefect(w http.ResponseWriter, r *http.Request) {
	id := types.InspectionID(chi.URLParam(r, "inspectionID"))
	var req recordDefectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	inspection, err := h.acceptance.RecordDefect(r.Context(), id,
		types.SeverityTier(req.Tier), types.ActorID(req.Actor))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, inspection)
}

type actorRequest struct {
	Actor string `json:"actor"`
}

func (h *handler) handleResetTally(w http.ResponseWriter, r *http.Request) {
	id := types.InspectionID(chi.URLParam(r, "inspectionID"))
	var req actorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	inspection, err := h.acceptance.ResetTally(r.Context(), id, types.ActorID(req.Actor))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, inspection)
}

func (h *handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id := types.InspectionID(chi.URLParam(r, "inspectionID"))
	var req actorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	inspection, err := h.acceptance.Submit(r.Context(), id, types.ActorID(req.Actor))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, inspection)
}

type openApprovalRequest struct {
	InspectionID string `json:"inspectionId"`
	Reason       string `json:"reason"`
	Requester    string `json:"requester"`
}

func (h *handler) handleOpenApproval(w http.ResponseWriter, r *http.Request) {
	var req openApprovalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	approval, err := h.approval.Open(r.Context(),
		types.InspectionID(req.InspectionID), req.Reason, types.ActorID(req.Requester))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, approval)
}

type resolveApprovalRequest struct {
	Decision string `json:"decision"`
	Approver string `json:"approver"`
	Comments string `json:"comments"`
}

func (h *handler) handleResolveApproval(w http.ResponseWriter, r *http.Request) {
	id := types.ApprovalID(chi.URLParam(r, "approvalID"))
	var req resolveApprovalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	approval, err := h.approval.Resolve(r.Context(), id,
		types.ApprovalStatus(req.Decision), types.ActorID(req.Approver), req.Comments)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, approval)
}

type raiseNotificationRequest struct {
	model.NCInput
	Actor string `json:"actor"`
}

func (h *handler) handleRaiseNotification(w http.ResponseWriter, r *http.Request) {
	var req raiseNotificationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	notification, err := h.escalation.Raise(r.Context(), req.NCInput, types.ActorID(req.Actor))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, notification)
}

func (h *handler) handleListOpenNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.escalation.ListOpen(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

func (h *handler) handleGetNotification(w http.ResponseWriter, r *http.Request) {
	id := types.NotificationID(chi.URLParam(r, "notificationID"))
	notification, err := h.escalation.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, notification)
}

func (h *handler) handleEscalate(w http.ResponseWriter, r *http.Request) {
	id := types.NotificationID(chi.URLParam(r, "notificationID"))
	var req actorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	notification, err := h.escalation.Escalate(r.Context(), id, types.ActorID(req.Actor))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, notification)
}

type resolveNotificationRequest struct {
	Notes string `json:"notes"`
	Actor string `json:"actor"`
}

func (h *handler) handleResolveNotification(w http.ResponseWriter, r *http.Request) {
	id := types.NotificationID(chi.URLParam(r, "notificationID"))
	var req resolveNotificationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	notification, err := h.escalation.Resolve(r.Context(), id, req.Notes, types.ActorID(req.Actor))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, notification)
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
	Note   string `json:"note"`
}

func (h *handler) handleUpdateNotificationStatus(w http.ResponseWriter, r *http.Request) {
	id := types.NotificationID(chi.URLParam(r, "notificationID"))
	var req updateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	notification, err := h.escalation.UpdateStatus(r.Context(), id,
		types.NCStatus(req.Status), types.ActorID(req.Actor), req.Note)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, notification)
}
