package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/guestgate/guestgate/internal/core/domain"
	"github.com/guestgate/guestgate/internal/core/ports"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIHandler handles HTTP requests for pass management and visits.
type APIHandler struct {
	svc   ports.PassService
	cache ports.SessionCache
	cfg   MiddlewareConfig
}

// NewAPIHandler creates and returns a new APIHandler instance.
func NewAPIHandler(svc ports.PassService, cache ports.SessionCache, cfg MiddlewareConfig) *APIHandler {
	cfg = cfg.withDefaults()
	return &APIHandler{svc: svc, cache: cache, cfg: cfg}
}

// RegisterRoutes registers the API routes with the provided ServeMux.
func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /metrics", h.Metrics)

	// Pass management
	mux.HandleFunc("POST /passes", h.CreatePass)
	mux.HandleFunc("GET /passes", h.ListPasses)
	mux.HandleFunc("GET /passes/{token}", h.GetPass)
	mux.HandleFunc("POST /passes/{token}/deactivate", h.DeactivatePass)
	mux.HandleFunc("POST /passes/{token}/reactivate", h.ReactivatePass)
	mux.HandleFunc("GET /passes/{token}/accesses", h.ListAccesses)

	// Visit endpoint: consumes the pass carried by the token query parameter
	// (or an existing session binding).
	visitor := VisitorMiddleware(h.svc, h.cache, h.cfg)
	mux.Handle("GET /visit", visitor(http.HandlerFunc(h.Visit)))
}

// Metrics handles Prometheus metrics scraping requests.
func (h *APIHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// HealthCheck handles health check requests.
func (h *APIHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "UP"
	details := make(map[string]string)
	checks := h.svc.HealthCheck(r.Context())

	for name, checkErr := range checks {
		if checkErr != nil {
			status = "DEGRADED"
			details[name] = checkErr.Error()
		} else {
			details[name] = "OK"
		}
	}

	resp := map[string]interface{}{
		"status":  status,
		"details": details,
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "DEGRADED" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("failed to encode health check response: %v", err)
	}
}

type createPassRequest struct {
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Email     string          `json:"email"`
	Scope     string          `json:"scope"`
	Context   json.RawMessage `json:"context,omitempty"`
	ExpiresAt time.Time       `json:"expires_at,omitempty"`
	MaxUses   *int            `json:"max_uses,omitempty"`
	// BaseURL, when present, is tokenised and returned as access_url.
	BaseURL string `json:"base_url,omitempty"`
}

type createPassResponse struct {
	*domain.Pass
	AccessURL string `json:"access_url,omitempty"`
}

func (h *APIHandler) CreatePass(w http.ResponseWriter, r *http.Request) {
	var req createPassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pass, err := h.svc.Issue(r.Context(), domain.PassParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Scope:     req.Scope,
		Context:   req.Context,
		ExpiresAt: req.ExpiresAt,
		MaxUses:   req.MaxUses,
	})
	if err != nil {
		http.Error(w, "Invalid pass: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp := createPassResponse{Pass: pass}
	if req.BaseURL != "" {
		accessURL, errURL := h.svc.AccessURL(pass, req.BaseURL)
		if errURL != nil {
			http.Error(w, "Invalid base URL: "+errURL.Error(), http.StatusBadRequest)
			return
		}
		resp.AccessURL = accessURL
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("failed to encode pass response: %v", err)
	}
}

func (h *APIHandler) ListPasses(w http.ResponseWriter, r *http.Request) {
	passes, err := h.svc.ListPasses(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(passes); err != nil {
		log.Printf("failed to encode passes response: %v", err)
	}
}

func (h *APIHandler) GetPass(w http.ResponseWriter, r *http.Request) {
	pass, err := h.svc.GetByToken(r.Context(), r.PathValue("token"))
	if err != nil {
		writePassError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(pass); err != nil {
		log.Printf("failed to encode pass response: %v", err)
	}
}

func (h *APIHandler) DeactivatePass(w http.ResponseWriter, r *http.Request) {
	pass, err := h.svc.GetByToken(r.Context(), r.PathValue("token"))
	if err != nil {
		writePassError(w, err)
		return
	}

	if err := h.svc.Deactivate(r.Context(), pass); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) ReactivatePass(w http.ResponseWriter, r *http.Request) {
	pass, err := h.svc.GetByToken(r.Context(), r.PathValue("token"))
	if err != nil {
		writePassError(w, err)
		return
	}

	if err := h.svc.Reactivate(r.Context(), pass); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(pass); err != nil {
		log.Printf("failed to encode pass response: %v", err)
	}
}

func (h *APIHandler) ListAccesses(w http.ResponseWriter, r *http.Request) {
	pass, err := h.svc.GetByToken(r.Context(), r.PathValue("token"))
	if err != nil {
		writePassError(w, err)
		return
	}

	logs, err := h.svc.ListAccessLogs(r.Context(), pass.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(logs); err != nil {
		log.Printf("failed to encode access logs response: %v", err)
	}
}

// Visit returns the serialized projection of the pass resolved by
// VisitorMiddleware.
func (h *APIHandler) Visit(w http.ResponseWriter, r *http.Request) {
	pass, ok := PassFromContext(r.Context())
	if !ok {
		http.Error(w, domain.ErrPassNotFound.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(pass.Serialize()); err != nil {
		log.Printf("failed to encode visit response: %v", err)
	}
}

// writePassError maps the typed pass errors to HTTP statuses while keeping
// the distinct per-kind messages intact.
func writePassError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPassNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrPassInactive),
		errors.Is(err, domain.ErrPassExpired),
		errors.Is(err, domain.ErrPassExhausted):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
