package referral

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func postDecision(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/referrals/decision", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := NewHandler(newTestEngine())
	if err := h.Decide(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandler_Decide(t *testing.T) {
	body := `{"referral":{
		"patient_name":"Ruth Vega",
		"diagnosis":"CHF exacerbation",
		"insurance_provider":"Medicare",
		"insurance_id":"1EG4-TE5-MK72",
		"referral_source":"Mercy General",
		"service_requested":["skilled_nursing"],
		"urgency":"routine",
		"estimated_episode_length":45,
		"geographic_location":{"address":"12 Elm St","zip_code":"30301","distance":6},
		"hospital_rating":4,
		"physician_orders":true
	}}`
	rec := postDecision(t, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var decision AutomationDecision
	if err := json.Unmarshal(rec.Body.Bytes(), &decision); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decision.Action != ActionAccept {
		t.Errorf("action = %q, want accept", decision.Action)
	}
	if _, ok := decision.DecisionFactors[FactorOverall]; !ok {
		t.Error("expected overall entry in decision factors")
	}
}

func TestHandler_Decide_WeightOverrides(t *testing.T) {
	body := `{
		"referral":{
			"patient_name":"Sam Ortiz",
			"diagnosis":"COPD",
			"insurance_provider":"Self Pay",
			"geographic_location":{"distance":5},
			"hospital_rating":5,
			"physician_orders":true
		},
		"weights":{"geography":1}
	}`
	rec := postDecision(t, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var decision AutomationDecision
	if err := json.Unmarshal(rec.Body.Bytes(), &decision); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decision.Action != ActionAccept {
		t.Errorf("action = %q, want accept with geography-only weighting", decision.Action)
	}
}

func TestHandler_Decide_BadBody(t *testing.T) {
	rec := postDecision(t, `{"referral":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandler_Decide_EmptyReferral(t *testing.T) {
	rec := postDecision(t, `{"referral":{}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: decision endpoint is total", rec.Code)
	}
	var decision AutomationDecision
	if err := json.Unmarshal(rec.Body.Bytes(), &decision); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decision.Action != ActionReject {
		t.Errorf("action = %q, want reject for empty referral", decision.Action)
	}
}
