package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"visitor-registration/internal/config"
	"visitor-registration/internal/nonce"
	"visitor-registration/internal/storage"
	"visitor-registration/internal/visitors"
)

// memProvider is a minimal in-memory storage.Provider for route tests.
type memProvider struct {
	visitors []storage.Visitor
	nextID   int64
}

func (m *memProvider) Close() error                                      { return nil }
func (m *memProvider) GetSchemaVersion(ctx context.Context) (int, error) { return 2, nil }

func (m *memProvider) CreateVisitor(ctx context.Context, v storage.Visitor) (int64, error) {
	m.nextID++
	v.ID = m.nextID
	v.Status = storage.StatusPresent
	m.visitors = append(m.visitors, v)
	return v.ID, nil
}

func (m *memProvider) ListPresent(ctx context.Context) ([]storage.Visitor, error) {
	var present []storage.Visitor
	for _, v := range m.visitors {
		if v.Status == storage.StatusPresent {
			present = append(present, v)
		}
	}
	return present, nil
}

func (m *memProvider) ListAll(ctx context.Context) ([]storage.Visitor, error) {
	return append([]storage.Visitor(nil), m.visitors...), nil
}

func (m *memProvider) SetDeparted(ctx context.Context, id int64, at time.Time) (int64, error) {
	for i, v := range m.visitors {
		if v.ID == id && v.Status == storage.StatusPresent {
			m.visitors[i].Status = storage.StatusDeparted
			m.visitors[i].CheckedOutAt = &at
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memProvider) DeleteDeparted(ctx context.Context) (int64, error) {
	var kept []storage.Visitor
	var deleted int64
	for _, v := range m.visitors {
		if v.Status == storage.StatusDeparted {
			deleted++
			continue
		}
		kept = append(kept, v)
	}
	m.visitors = kept
	return deleted, nil
}

func (m *memProvider) CreateNonce(ctx context.Context, n string, expiresAt time.Time) error {
	return nil
}
func (m *memProvider) ExistsNonce(ctx context.Context, n string) (bool, error)  { return false, nil }
func (m *memProvider) ConsumeNonce(ctx context.Context, n string) (bool, error) { return false, nil }
func (m *memProvider) ExpireNonces(ctx context.Context, now time.Time) error    { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *memProvider) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.Cfg = &config.Config{
		Secret:       "route-test-secret",
		BadgeTTL:     60,
		BadgeTTLSkew: 5,
	}
	nonce.Store = nonce.NewMemoryStore()

	store := &memProvider{}
	engine := visitors.NewEngine(store)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("Engine", engine)
		c.Next()
	})
	r.Use(ErrorHandler())

	api := r.Group("/api")
	StatsRoute(api)
	VisitorRoutes(api.Group("/visitors"))

	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Accept", "application/json")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
		}
	}
	return w, decoded
}

const registerBody = `{
	"name": "Jan Jansen",
	"email": "jan@voorbeeld.nl",
	"phone": "0612345678",
	"company": "Acme BV",
	"host": "Pieters",
	"reason": "Meeting"
}`

func TestRegisterEndpoint(t *testing.T) {
	r, store := newTestRouter(t)

	w, resp := doJSON(t, r, http.MethodPost, "/api/visitors", registerBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if resp["name"] != "Jan Jansen" {
		t.Errorf("unexpected name %v", resp["name"])
	}
	if url, _ := resp["checkout_url"].(string); !strings.Contains(url, "/checkout/") {
		t.Errorf("expected self-checkout URL, got %v", resp["checkout_url"])
	}
	if len(store.visitors) != 1 {
		t.Fatalf("expected 1 stored visitor, got %d", len(store.visitors))
	}
}

func TestRegisterValidationFailure(t *testing.T) {
	r, store := newTestRouter(t)

	w, resp := doJSON(t, r, http.MethodPost, "/api/visitors", `{"name": "X"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	problems, _ := resp["problems"].([]any)
	if len(problems) < 5 {
		t.Errorf("expected every violation reported, got %v", resp["problems"])
	}
	if len(store.visitors) != 0 {
		t.Error("invalid registration must not be stored")
	}
}

func TestListPresentEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/visitors", registerBody)

	w, resp := doJSON(t, r, http.MethodGet, "/api/visitors", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp["count"].(float64) != 1 {
		t.Errorf("expected count 1, got %v", resp["count"])
	}
}

func TestSearchEndpointShortQuery(t *testing.T) {
	r, _ := newTestRouter(t)

	w, resp := doJSON(t, r, http.MethodGet, "/api/visitors/search?q=a", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short query, got %d", w.Code)
	}
	if msg, _ := resp["message"].(string); !strings.Contains(msg, "2 characters") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestCheckoutEndpoint(t *testing.T) {
	r, store := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/visitors", registerBody)
	id := store.visitors[0].ID

	w, resp := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/visitors/%d/checkout", id), `{"name": "Jan Jansen"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp["name"] != "Jan Jansen" {
		t.Errorf("expected carried name in response, got %v", resp["name"])
	}

	// Second checkout is a conflict, not a success
	w, _ = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/visitors/%d/checkout", id), `{"name": "Jan Jansen"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 on repeat checkout, got %d", w.Code)
	}
}

func TestCheckoutEndpointBadID(t *testing.T) {
	r, _ := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/api/visitors/abc/checkout", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric id, got %d", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	r, store := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/visitors", registerBody)
	doJSON(t, r, http.MethodPost, "/api/visitors", registerBody)
	doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/visitors/%d/checkout", store.visitors[0].ID), "")

	w, resp := doJSON(t, r, http.MethodGet, "/api/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp["total"].(float64) != 2 || resp["active"].(float64) != 1 || resp["departed"].(float64) != 1 {
		t.Errorf("unexpected stats: %v", resp)
	}
}

func TestExportEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/visitors", registerBody)

	req := httptest.NewRequest(http.MethodGet, "/api/visitors/export.csv", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "attachment") {
		t.Error("expected attachment disposition")
	}
	if !strings.Contains(w.Body.String(), "Jan Jansen") {
		t.Error("expected visitor row in export")
	}
}

func TestPurgeEndpoint(t *testing.T) {
	r, store := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/visitors", registerBody)
	doJSON(t, r, http.MethodPost, "/api/visitors", registerBody)
	doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/visitors/%d/checkout", store.visitors[0].ID), "")

	w, resp := doJSON(t, r, http.MethodDelete, "/api/visitors/departed", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp["deleted"].(float64) != 1 {
		t.Errorf("expected 1 deleted, got %v", resp["deleted"])
	}
	if len(store.visitors) != 1 {
		t.Errorf("expected 1 remaining visitor, got %d", len(store.visitors))
	}
}
