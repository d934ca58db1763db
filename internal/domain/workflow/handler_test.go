package workflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/homehealth/intake/pkg/pagination"
)

func newTestHandler(t *testing.T) (*Handler, *Engine) {
	t.Helper()
	r, err := NewRegistry(Catalog())
	if err != nil {
		t.Fatalf("NewRegistry error: %v", err)
	}
	engine := NewEngineWithOptions(r, &stubDispatcher{}, "test-signing-key", zerolog.Nop(), EngineOptions{Clock: testClock()})
	return NewHandler(engine), engine
}

func doRequest(t *testing.T, h echo.HandlerFunc, method, target, body string, pathParams map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range pathParams {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandler_ListWorkflows(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(t, h.ListWorkflows, http.MethodGet, "/api/v1/workflows", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var defs []Definition
	if err := json.Unmarshal(rec.Body.Bytes(), &defs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(defs) != 5 {
		t.Errorf("expected 5 workflows, got %d", len(defs))
	}
}

func TestHandler_GetWorkflow(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h.GetWorkflow, http.MethodGet, "/api/v1/workflows/employee-onboarding", "", map[string]string{"id": "employee-onboarding"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = doRequest(t, h.GetWorkflow, http.MethodGet, "/api/v1/workflows/nope", "", map[string]string{"id": "nope"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandler_StartExecution(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h.StartExecution, http.MethodPost, "/api/v1/workflows/document-verification/executions",
		`{"context":{"source":"fax"}}`, map[string]string{"id": "document-verification"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var ex Execution
	if err := json.Unmarshal(rec.Body.Bytes(), &ex); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ex.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", ex.Status)
	}
	if ex.Context["source"] != "fax" {
		t.Error("expected caller context carried into the execution")
	}
}

func TestHandler_StartExecution_UnknownWorkflow(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(t, h.StartExecution, http.MethodPost, "/api/v1/workflows/nope/executions", `{}`, map[string]string{"id": "nope"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandler_GetExecution(t *testing.T) {
	h, engine := newTestHandler(t)
	ex, err := engine.StartWorkflow(context.Background(), "compliance-monitoring", nil)
	if err != nil {
		t.Fatalf("StartWorkflow error: %v", err)
	}

	rec := doRequest(t, h.GetExecution, http.MethodGet, "/api/v1/executions/"+ex.ID, "", map[string]string{"id": ex.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = doRequest(t, h.GetExecution, http.MethodGet, "/api/v1/executions/missing", "", map[string]string{"id": "missing"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandler_SubmitApproval(t *testing.T) {
	h, engine := newTestHandler(t)
	ex, err := engine.StartWorkflow(context.Background(), "employee-onboarding", nil)
	if err != nil {
		t.Fatalf("StartWorkflow error: %v", err)
	}

	body := `{"approverType":"qa_rn","approverId":"rn-1","approverName":"Dana RN","approverCredentials":"RN","comments":"looks good"}`
	rec := doRequest(t, h.SubmitApproval, http.MethodPost, "/api/v1/executions/"+ex.ID+"/approvals", body, map[string]string{"id": ex.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp SubmitApprovalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Advanced {
		t.Error("expected execution to advance")
	}
	if len(resp.Execution.Approvals) != 1 {
		t.Fatalf("expected 1 approval record, got %d", len(resp.Execution.Approvals))
	}
	rec0 := resp.Execution.Approvals[0]
	if rec0.DigitalSignature == "" {
		t.Error("expected digital signature on record")
	}
	if rec0.IPAddress == "" {
		t.Error("expected IP address filled from request")
	}
}

func TestHandler_SubmitApproval_Validation(t *testing.T) {
	h, engine := newTestHandler(t)
	ex, err := engine.StartWorkflow(context.Background(), "employee-onboarding", nil)
	if err != nil {
		t.Fatalf("StartWorkflow error: %v", err)
	}

	rec := doRequest(t, h.SubmitApproval, http.MethodPost, "/api/v1/executions/"+ex.ID+"/approvals",
		`{"approverType":"qa_rn"}`, map[string]string{"id": ex.ID})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing identity: status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, h.SubmitApproval, http.MethodPost, "/api/v1/executions/"+ex.ID+"/approvals",
		`{"approverType":"janitor","approverId":"x","approverName":"X"}`, map[string]string{"id": ex.ID})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid role: status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, h.SubmitApproval, http.MethodPost, "/api/v1/executions/missing/approvals",
		`{"approverType":"qa_rn","approverId":"x","approverName":"X"}`, map[string]string{"id": "missing"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown execution: status = %d, want 404", rec.Code)
	}
}

func TestHandler_PendingApprovals(t *testing.T) {
	h, engine := newTestHandler(t)
	if _, err := engine.StartWorkflow(context.Background(), "employee-onboarding", nil); err != nil {
		t.Fatalf("StartWorkflow error: %v", err)
	}

	rec := doRequest(t, h.PendingApprovals, http.MethodGet, "/api/v1/approvals/pending", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp pagination.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1", resp.Total)
	}

	rec = doRequest(t, h.PendingApprovals, http.MethodGet, "/api/v1/approvals/pending?approver_type=clinical_director", "", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 0 {
		t.Errorf("filtered total = %d, want 0", resp.Total)
	}

	rec = doRequest(t, h.PendingApprovals, http.MethodGet, "/api/v1/approvals/pending?approver_type=janitor", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid filter: status = %d, want 400", rec.Code)
	}
}
