package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

func newAdminRouter(repo Repository) http.Handler {
	h := NewHandler(repo, logging.Default())
	r := chi.NewRouter()
	r.Get("/admin/leads", h.ListLeads)
	r.Get("/admin/leads/{leadID}", h.GetLead)
	r.Patch("/admin/leads/{leadID}", h.UpdateStatus)
	return r
}

func seedLead(t *testing.T, repo *InMemoryRepository) *Record {
	t.Helper()
	rec, err := repo.Create(context.Background(), NewRecord(sampleSubmission()))
	if err != nil {
		t.Fatalf("seed lead: %v", err)
	}
	return rec
}

func TestListLeads_Success(t *testing.T) {
	repo := NewInMemoryRepository()
	seedLead(t, repo)
	seedLead(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/admin/leads?limit=1", nil)
	w := httptest.NewRecorder()
	newAdminRouter(repo).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp ListLeadsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || resp.Limit != 1 {
		t.Fatalf("expected one lead with limit 1, got %+v", resp)
	}
}

func TestListLeads_EmptyIsArray(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/leads?status=lost", nil)
	w := httptest.NewRecorder()
	newAdminRouter(NewInMemoryRepository()).ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), `"leads":[]`) {
		t.Fatalf("expected empty leads array, got %s", w.Body.String())
	}
}

func TestListLeads_UnknownStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/leads?status=pending", nil)
	w := httptest.NewRecorder()
	newAdminRouter(NewInMemoryRepository()).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestGetLead(t *testing.T) {
	repo := NewInMemoryRepository()
	lead := seedLead(t, repo)
	router := newAdminRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/admin/leads/"+lead.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var got Record
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ID != lead.ID || got.AICategory != "Plumbing" {
		t.Fatalf("unexpected lead %+v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/leads/missing", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestUpdateStatus(t *testing.T) {
	repo := NewInMemoryRepository()
	lead := seedLead(t, repo)
	router := newAdminRouter(repo)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"forward", `{"status":"contacted"}`, http.StatusOK},
		{"backward", `{"status":"new"}`, http.StatusConflict},
		{"unknown", `{"status":"archived"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
		{"lost", `{"status":"lost"}`, http.StatusOK},
		{"after terminal", `{"status":"quoted"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/admin/leads/"+lead.ID, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("expected status %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

type failingRepo struct{ Repository }

func (failingRepo) List(context.Context, ListFilter) ([]*Record, error) {
	return nil, errors.New("db down")
}

func TestListLeads_RepositoryError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
	w := httptest.NewRecorder()
	newAdminRouter(failingRepo{}).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if strings.Contains(w.Body.String(), "db down") {
		t.Fatalf("raw error leaked to client: %s", w.Body.String())
	}
}
