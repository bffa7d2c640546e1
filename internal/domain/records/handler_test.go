package records

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medichain/medichain/internal/platform/auth"
	"github.com/medichain/medichain/pkg/pagination"
)

func doRequest(t *testing.T, h func(echo.Context) error, method, path, account, body string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if account != "" {
		req = req.WithContext(auth.WithAccount(req.Context(), account))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) >= 2 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}

	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandler_Append(t *testing.T) {
	svc, patients, _ := newTestService(t)
	patientID := registerPatient(t, patients)
	h := NewHandler(svc)

	body := `{"patient_id":"` + patientID + `","content_hash":"c0ffee","record_type":"discharge_summary","checksum":"deadbeef"}`
	rec := doRequest(t, h.Append, http.MethodPost, "/api/v1/records", "DOC-001", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var ref Reference
	if err := json.Unmarshal(rec.Body.Bytes(), &ref); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ref.PatientID != patientID || ref.RecordType != "discharge_summary" {
		t.Errorf("unexpected reference: %+v", ref)
	}
}

func TestHandler_AppendErrors(t *testing.T) {
	svc, patients, _ := newTestService(t)
	patientID := registerPatient(t, patients)
	h := NewHandler(svc)

	valid := `{"patient_id":"` + patientID + `","content_hash":"c0ffee","checksum":"deadbeef"}`
	tests := []struct {
		name    string
		account string
		body    string
		want    int
	}{
		{"no identity", "", valid, http.StatusUnauthorized},
		{"lab tech cannot edit", "LAB-TECH-001", valid, http.StatusForbidden},
		{"missing hashes", "DOC-001", `{"patient_id":"` + patientID + `"}`, http.StatusBadRequest},
		{"unknown patient", "DOC-001", `{"patient_id":"PAT-NOPE","content_hash":"c0ffee","checksum":"deadbeef"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h.Append, http.MethodPost, "/api/v1/records", tt.account, tt.body)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandler_List(t *testing.T) {
	svc, patients, _ := newTestService(t)
	patientID := registerPatient(t, patients)
	h := NewHandler(svc)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		req := validAppend(patientID)
		req.ContentHash = string(rune('a' + i))
		if _, err := svc.Append(ctx, "DOC-001", req); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	rec := doRequest(t, h.List, http.MethodGet, "/api/v1/records/"+patientID+"?limit=2", patientID, "",
		"patient", patientID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp pagination.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 3 || !resp.HasMore {
		t.Errorf("expected total 3 with more pages, got %+v", resp)
	}

	rec = doRequest(t, h.List, http.MethodGet, "/api/v1/records/"+patientID, "PAT-OTHER", "",
		"patient", patientID)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for unrelated caller, got %d", rec.Code)
	}
}
