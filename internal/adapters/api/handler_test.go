package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/guestgate/guestgate/internal/core/domain"
)

type mockPassService struct {
	passes    map[string]*domain.Pass
	logs      []domain.AccessLog
	healthErr error
}

func newMockService() *mockPassService {
	return &mockPassService{passes: map[string]*domain.Pass{}}
}

func (m *mockPassService) Issue(ctx context.Context, params domain.PassParams) (*domain.Pass, error) {
	pass, err := domain.NewPass(params, time.Now(), time.Hour)
	if err != nil {
		return nil, err
	}
	pass.ID = "pass-123"
	m.passes[pass.Token] = pass
	return pass, nil
}

func (m *mockPassService) Consume(ctx context.Context, token string) (*domain.Pass, error) {
	pass, ok := m.passes[token]
	if !ok {
		return nil, domain.ErrPassNotFound
	}
	if err := pass.Validate(time.Now()); err != nil {
		return nil, err
	}
	if pass.MaxUses != nil {
		*pass.UsesRemaining--
	}
	return pass, nil
}

func (m *mockPassService) Deactivate(ctx context.Context, pass *domain.Pass) error {
	pass.IsActive = false
	return nil
}

func (m *mockPassService) Reactivate(ctx context.Context, pass *domain.Pass) error {
	pass.IsActive = true
	return nil
}

func (m *mockPassService) AccessURL(pass *domain.Pass, baseURL string) (string, error) {
	return baseURL + "?vuid=" + pass.Token, nil
}

func (m *mockPassService) GetByToken(ctx context.Context, token string) (*domain.Pass, error) {
	pass, ok := m.passes[token]
	if !ok {
		return nil, domain.ErrPassNotFound
	}
	return pass, nil
}

func (m *mockPassService) ListPasses(ctx context.Context, email string) ([]domain.Pass, error) {
	var res []domain.Pass
	for _, p := range m.passes {
		res = append(res, *p)
	}
	return res, nil
}

func (m *mockPassService) RecordAccess(ctx context.Context, entry *domain.AccessLog) error {
	m.logs = append(m.logs, *entry)
	return nil
}

func (m *mockPassService) ListAccessLogs(ctx context.Context, passID string) ([]domain.AccessLog, error) {
	return m.logs, nil
}

func (m *mockPassService) HealthCheck(ctx context.Context) map[string]error {
	return map[string]error{"database": m.healthErr}
}

func newTestMux(svc *mockPassService) *http.ServeMux {
	handler := NewAPIHandler(svc, nil, MiddlewareConfig{})
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux
}

func TestCreatePass(t *testing.T) {
	svc := newMockService()
	mux := newTestMux(svc)

	body, _ := json.Marshal(createPassRequest{
		Email: "ada@example.com", Scope: "reports", BaseURL: "https://x.test/r",
	})
	req := httptest.NewRequest("POST", "/passes", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}

	var resp createPassResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Token == "" {
		t.Errorf("Expected token in response")
	}
	if resp.AccessURL == "" {
		t.Errorf("Expected tokenised access URL in response")
	}
}

func TestCreatePassRejectsMissingScope(t *testing.T) {
	mux := newTestMux(newMockService())

	body, _ := json.Marshal(createPassRequest{Email: "ada@example.com"})
	req := httptest.NewRequest("POST", "/passes", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestGetPass(t *testing.T) {
	svc := newMockService()
	pass, _ := svc.Issue(context.Background(), domain.PassParams{Email: "a@example.com", Scope: "s"})
	mux := newTestMux(svc)

	req := httptest.NewRequest("GET", "/passes/"+pass.Token, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/passes/unknown-token", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown token, got %d", w.Code)
	}
}

func TestDeactivatePass(t *testing.T) {
	svc := newMockService()
	pass, _ := svc.Issue(context.Background(), domain.PassParams{Email: "a@example.com", Scope: "s"})
	mux := newTestMux(svc)

	req := httptest.NewRequest("POST", "/passes/"+pass.Token+"/deactivate", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", w.Code)
	}
	if pass.IsActive {
		t.Errorf("Expected pass to be deactivated")
	}
}

func TestVisitConsumesPass(t *testing.T) {
	svc := newMockService()
	one := 1
	pass, _ := svc.Issue(context.Background(), domain.PassParams{Email: "a@example.com", Scope: "s", MaxUses: &one})
	mux := newTestMux(svc)

	req := httptest.NewRequest("GET", "/visit?vuid="+pass.Token, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (%s)", w.Code, w.Body.String())
	}

	var data map[string]interface{}
	json.NewDecoder(w.Body).Decode(&data)
	if data["token"] != pass.Token || data["full_name"] == nil {
		t.Errorf("Unexpected visit projection: %v", data)
	}

	// Second visit without a session: the single use is gone.
	req = httptest.NewRequest("GET", "/visit?vuid="+pass.Token, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for exhausted pass, got %d", w.Code)
	}
}

func TestVisitWithoutToken(t *testing.T) {
	svc := newMockService()
	mux := newTestMux(svc)

	req := httptest.NewRequest("GET", "/visit", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 without token, got %d", w.Code)
	}
	if len(svc.logs) != 1 || svc.logs[0].StatusCode != http.StatusNotFound {
		t.Errorf("Expected failed attempt to be access-logged, got %+v", svc.logs)
	}
}

func TestHealthCheckEndpoint(t *testing.T) {
	svc := newMockService()
	mux := newTestMux(svc)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}
