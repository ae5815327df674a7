package intake

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fixitsanclemente/quote-intake/internal/business"
)

const callUs = "Please call Paul directly at (619) 727-7975."

func newTestHandler(repo *fakeRepo, sender *fakeSender, opts ...Option) *Handler {
	return NewHandler(NewService(repo, sender, business.Default(), nil, opts...), nil)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return body
}

func TestContact_Success(t *testing.T) {
	repo := newFakeRepo()
	h := newTestHandler(repo, &fakeSender{})

	payload, _ := json.Marshal(validSubmission())
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(string(payload)))
	rr := httptest.NewRecorder()
	h.Contact(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["success"] != true || body["emailSent"] != true || body["confirmationEmailSent"] != true {
		t.Fatalf("unexpected body %v", body)
	}
	leadID, _ := body["leadId"].(string)
	if leadID == "" {
		t.Fatalf("expected leadId, got %v", body["leadId"])
	}
	if _, err := repo.GetByID(req.Context(), leadID); err != nil {
		t.Fatalf("response lead id not stored: %v", err)
	}
	if body["message"] != "Quote request received! Paul will contact you soon." {
		t.Fatalf("unexpected message %v", body["message"])
	}
}

func TestContact_MissingFields(t *testing.T) {
	repo := newFakeRepo()
	h := newTestHandler(repo, &fakeSender{})

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":"Jane","description":"  "}`))
	rr := httptest.NewRecorder()
	h.Contact(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["success"] != false {
		t.Fatalf("expected success=false, got %v", body["success"])
	}
	missing, _ := body["missingFields"].([]any)
	if len(missing) != 3 || missing[0] != "phone" || missing[1] != "email" || missing[2] != "description" {
		t.Fatalf("unexpected missingFields %v", body["missingFields"])
	}
	if msg, _ := body["error"].(string); !strings.Contains(msg, callUs) {
		t.Fatalf("expected call-us fallback in %q", msg)
	}
	if repo.creates != 0 {
		t.Fatalf("expected no store writes, got %d", repo.creates)
	}
}

func TestContact_InvalidJSON(t *testing.T) {
	h := newTestHandler(newFakeRepo(), &fakeSender{})
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":`))
	rr := httptest.NewRecorder()
	h.Contact(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestContact_BodyTooLarge(t *testing.T) {
	h := newTestHandler(newFakeRepo(), &fakeSender{})
	big := `{"description":"` + strings.Repeat("a", maxContactBody+1) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(big))
	rr := httptest.NewRecorder()
	h.Contact(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestContact_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(newFakeRepo(), &fakeSender{})
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/api/contact", nil)
		rr := httptest.NewRecorder()
		h.Contact(rr, req)

		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: expected 405, got %d", method, rr.Code)
		}
		if got := rr.Header().Get("Allow"); got != "POST, OPTIONS" {
			t.Fatalf("%s: unexpected Allow header %q", method, got)
		}
	}
}

func TestContact_Options(t *testing.T) {
	h := newTestHandler(newFakeRepo(), &fakeSender{})
	req := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	rr := httptest.NewRecorder()
	h.Contact(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
}

func TestContact_StoreFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = errors.New("pq: password authentication failed for user admin")
	h := newTestHandler(repo, &fakeSender{})

	payload, _ := json.Marshal(validSubmission())
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(string(payload)))
	rr := httptest.NewRecorder()
	h.Contact(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "password") {
		t.Fatalf("raw store error leaked: %s", rr.Body.String())
	}
	body := decodeBody(t, rr)
	if msg, _ := body["error"].(string); msg != "Failed to save your request. "+callUs {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestContact_BestEffortReturnsNullLeadID(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = errors.New("down")
	h := newTestHandler(repo, &fakeSender{}, WithStorePolicy(StorePolicyBestEffort))

	payload, _ := json.Marshal(validSubmission())
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(string(payload)))
	rr := httptest.NewRecorder()
	h.Contact(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"leadId":null`) {
		t.Fatalf("expected null leadId, got %s", rr.Body.String())
	}
}
