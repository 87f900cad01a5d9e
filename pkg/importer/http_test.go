package importer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func testRouter(t *testing.T) *mux.Router {
	t.Helper()
	svc, _ := testService(t)
	router := mux.NewRouter()
	NewHTTPHandler(svc, 1<<20).Register(router)
	return router
}

func TestLeadsCSVEndpoint(t *testing.T) {
	router := testRouter(t)

	body := "email,created_at,mql_yes\na@x.com,2024-01-01,yes\n"
	req := httptest.NewRequest(http.MethodPost, "/imports/leads/csv", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result["kind"] != "leads_csv" {
		t.Fatalf("unexpected payload: %v", result)
	}
	stats, _ := result["stats"].(map[string]interface{})
	if stats["inserted"] != float64(1) {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestEmptyUploadRejected(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/imports/bookings/csv", strings.NewReader(""))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSyncWithoutRemoteReturns503(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/imports/leads/sync", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestLastRunUnknownKindReturns404(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/imports/last/leads_csv", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
