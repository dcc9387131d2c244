package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	controller "github.com/qassure-lab/lotgate/pkg/controller/http"
	"github.com/qassure-lab/lotgate/pkg/domain/model"
	"github.com/qassure-lab/lotgate/pkg/repository"
	"github.com/qassure-lab/lotgate/pkg/usecase"
)

func testServer(t *testing.T) *httptest.Server {
	table, err := model.NewSamplingTable([]model.SamplingRow{
		{
			LotLow: 1, LotHigh: 500, SampleSize: 20,
			LevelI:   model.AcceptancePair{Acc: 1, Rej: 2},
			LevelII:  model.AcceptancePair{Acc: 2, Rej: 3},
			LevelIII: model.AcceptancePair{Acc: 3, Rej: 4},
		},
	})
	gt.NoError(t, err)

	plans := &model.PlanConfig{Plans: []model.InspectionPlan{
		{ID: "plan-std", Name: "Standard", AQLMajor: 1.0, AQLMinor: 2.5},
	}}
	gt.NoError(t, plans.Validate())

	repo := repository.NewMemory()
	acceptanceUC := usecase.NewAcceptance(repo, table, plans, nil)
	approvalUC := usecase.NewApproval(repo, nil)
	escalationUC := usecase.NewEscalation(repo, nil, nil)

	server := controller.NewServer(context.Background(), "localhost:0", acceptanceUC, approvalUC, escalationUC)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	data, err := json.Marshal(body)
	gt.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	gt.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, url string) *http.Response {
	resp, err := http.Get(url)
	gt.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

type inspectionResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Verdict *struct {
		Overall string `json:"overall"`
	} `json:"verdict"`
}

func createInspection(t *testing.T, ts *httptest.Server) inspectionResponse {
	resp := postJSON(t, ts.URL+"/api/inspections", map[string]any{
		"planId":  "plan-std",
		"lotSize": 200,
		"level":   "II",
		"actor":   "inspector",
	})
	gt.Equal(t, http.StatusCreated, resp.StatusCode)

	var insp inspectionResponse
	decode(t, resp, &insp)
	gt.NotEqual(t, "", insp.ID)
	return insp
}

func TestHealthEndpoint(t *testing.T) {
	ts := testServer(t)
	resp := getJSON(t, ts.URL+"/health")
	gt.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInspectionEndpoints(t *testing.T) {
	t.Run("full acceptance flow", func(t *testing.T) {
		ts := testServer(t)
		insp := createInspection(t, ts)

		base := fmt.Sprintf("%s/api/inspections/%s", ts.URL, insp.ID)

		for i := 0; i < 3; i++ {
			resp := postJSON(t, base+"/defects", map[string]any{
				"tier":  "major",
				"actor": "inspector",
			})
			gt.Equal(t, http.StatusOK, resp.StatusCode)
		}

		resp := getJSON(t, base+"/verdict")
		gt.Equal(t, http.StatusOK, resp.StatusCode)
		var verdict struct {
			Overall string `json:"overall"`
		}
		decode(t, resp, &verdict)
		gt.Equal(t, "conditional_approval", verdict.Overall)

		resp = postJSON(t, base+"/submit", map[string]any{"actor": "inspector"})
		gt.Equal(t, http.StatusOK, resp.StatusCode)
		var submitted inspectionResponse
		decode(t, resp, &submitted)
		gt.Equal(t, "submitted", submitted.Status)
		gt.V(t, submitted.Verdict).NotNil()
		gt.Equal(t, "conditional_approval", submitted.Verdict.Overall)
	})

	t.Run("reset tally", func(t *testing.T) {
		ts := testServer(t)
		insp := createInspection(t, ts)
		base := fmt.Sprintf("%s/api/inspections/%s", ts.URL, insp.ID)

		resp := postJSON(t, base+"/defects", map[string]any{"tier": "critical", "actor": "inspector"})
		gt.Equal(t, http.StatusOK, resp.StatusCode)

		resp = postJSON(t, base+"/reset", map[string]any{"actor": "inspector"})
		gt.Equal(t, http.StatusOK, resp.StatusCode)

		resp = getJSON(t, base+"/verdict")
		var verdict struct {
			Overall string `json:"overall"`
		}
		decode(t, resp, &verdict)
		gt.Equal(t, "approved", verdict.Overall)
	})

	t.Run("error mapping", func(t *testing.T) {
		ts := testServer(t)

		// Unknown inspection
		resp := getJSON(t, ts.URL+"/api/inspections/no-such-id")
		gt.Equal(t, http.StatusNotFound, resp.StatusCode)

		// Lot size outside the sampling table domain
		resp = postJSON(t, ts.URL+"/api/inspections", map[string]any{
			"planId":  "plan-std",
			"lotSize": 9999,
			"level":   "II",
			"actor":   "inspector",
		})
		gt.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		// Unknown plan is a configuration error
		resp = postJSON(t, ts.URL+"/api/inspections", map[string]any{
			"planId":  "no-such-plan",
			"lotSize": 200,
			"level":   "II",
			"actor":   "inspector",
		})
		gt.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		// Mutating a submitted inspection conflicts
		insp := createInspection(t, ts)
		base := fmt.Sprintf("%s/api/inspections/%s", ts.URL, insp.ID)
		postJSON(t, base+"/submit", map[string]any{"actor": "inspector"})
		resp = postJSON(t, base+"/defects", map[string]any{"tier": "major", "actor": "inspector"})
		gt.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestApprovalEndpoints(t *testing.T) {
	ts := testServer(t)

	// Drive an inspection to a conditional_approval verdict
	insp := createInspection(t, ts)
	base := fmt.Sprintf("%s/api/inspections/%s", ts.URL, insp.ID)
	for i := 0; i < 3; i++ {
		postJSON(t, base+"/defects", map[string]any{"tier": "minor", "actor": "inspector"})
	}
	resp := postJSON(t, base+"/submit", map[string]any{"actor": "inspector"})
	gt.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/approvals", map[string]any{
		"inspectionId": insp.ID,
		"reason":       "tolerable minor defects",
		"requester":    "inspector",
	})
	gt.Equal(t, http.StatusCreated, resp.StatusCode)
	var approval struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, resp, &approval)
	gt.Equal(t, "pending", approval.Status)

	// Second open conflicts
	resp = postJSON(t, ts.URL+"/api/approvals", map[string]any{
		"inspectionId": insp.ID,
		"reason":       "again",
		"requester":    "inspector",
	})
	gt.Equal(t, http.StatusConflict, resp.StatusCode)

	// Resolve the approval
	resp = postJSON(t, fmt.Sprintf("%s/api/approvals/%s/resolve", ts.URL, approval.ID), map[string]any{
		"decision": "approved",
		"approver": "manager",
		"comments": "accepted",
	})
	gt.Equal(t, http.StatusOK, resp.StatusCode)

	resp = getJSON(t, base)
	var updated inspectionResponse
	decode(t, resp, &updated)
	gt.Equal(t, "conditionally_approved", updated.Status)

	// Second resolve conflicts
	resp = postJSON(t, fmt.Sprintf("%s/api/approvals/%s/resolve", ts.URL, approval.ID), map[string]any{
		"decision": "rejected",
		"approver": "manager",
	})
	gt.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestNotificationEndpoints(t *testing.T) {
	ts := testServer(t)

	raise := map[string]any{
		"inspectionId":           "insp-1",
		"severity":               "major",
		"category":               "dimensional",
		"defectType":             "out-of-tolerance bore",
		"priority":               "high",
		"autoEscalate":           true,
		"escalationDelayMinutes": 120,
		"recipients":             []string{"C012345"},
		"actor":                  "inspector",
	}

	resp := postJSON(t, ts.URL+"/api/notifications", raise)
	gt.Equal(t, http.StatusCreated, resp.StatusCode)
	var notification struct {
		ID              string `json:"id"`
		Status          string `json:"status"`
		EscalationLevel int    `json:"escalationLevel"`
	}
	decode(t, resp, &notification)
	gt.Equal(t, "pending", notification.Status)
	gt.Equal(t, 1, notification.EscalationLevel)

	base := fmt.Sprintf("%s/api/notifications/%s", ts.URL, notification.ID)

	resp = postJSON(t, base+"/escalate", map[string]any{"actor": "supervisor"})
	gt.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &notification)
	gt.Equal(t, 2, notification.EscalationLevel)

	resp = postJSON(t, base+"/status", map[string]any{
		"status": "in_review",
		"actor":  "qa",
	})
	gt.Equal(t, http.StatusOK, resp.StatusCode)

	resp = getJSON(t, ts.URL+"/api/notifications")
	gt.Equal(t, http.StatusOK, resp.StatusCode)
	var list []json.RawMessage
	decode(t, resp, &list)
	gt.Equal(t, 1, len(list))

	resp = postJSON(t, base+"/resolve", map[string]any{
		"notes": "rework complete",
		"actor": "qa",
	})
	gt.Equal(t, http.StatusOK, resp.StatusCode)

	// Escalating a resolved notification conflicts
	resp = postJSON(t, base+"/escalate", map[string]any{"actor": "supervisor"})
	gt.Equal(t, http.StatusConflict, resp.StatusCode)

	// Resolved notifications drop out of the open list
	resp = getJSON(t, ts.URL+"/api/notifications")
	decode(t, resp, &list)
	gt.Equal(t, 0, len(list))

	// Unknown notification
	resp = getJSON(t, ts.URL+"/api/notifications/no-such-id")
	gt.Equal(t, http.StatusNotFound, resp.StatusCode)
}
