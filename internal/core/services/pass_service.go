package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/guestgate/guestgate/internal/core/domain"
	"github.com/guestgate/guestgate/internal/core/ports"
	"github.com/guestgate/guestgate/internal/infrastructure/metrics"
)

// Config carries the recognized pass options.
type Config struct {
	// DefaultExpiry is the fallback expiry window applied when a pass is
	// issued without an explicit expires_at.
	DefaultExpiry time.Duration
	// QueryKey is the query-string parameter carrying the token in
	// tokenised URLs.
	QueryKey string
}

const (
	DefaultExpiry = 5 * time.Minute
	// DefaultQueryKey deliberately avoids common parameter names.
	DefaultQueryKey = "vuid"
)

type passService struct {
	repo  ports.PassRepository
	cache ports.SessionCache
	cfg   Config
	now   func() time.Time
}

// NewPassService creates the pass lifecycle orchestrator. cache may be nil
// when session binding is not wired.
func NewPassService(repo ports.PassRepository, cache ports.SessionCache, cfg Config) ports.PassService {
	if cfg.DefaultExpiry <= 0 {
		cfg.DefaultExpiry = DefaultExpiry
	}
	if cfg.QueryKey == "" {
		cfg.QueryKey = DefaultQueryKey
	}
	return &passService{repo: repo, cache: cache, cfg: cfg, now: time.Now}
}

func (s *passService) Issue(ctx context.Context, params domain.PassParams) (*domain.Pass, error) {
	pass, err := domain.NewPass(params, s.now(), s.cfg.DefaultExpiry)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, pass); err != nil {
		return nil, fmt.Errorf("failed to create pass: %w", err)
	}
	metrics.PassesIssued.Inc()
	return pass, nil
}

// Consume validates the pass for token and burns exactly one use on success.
// All concurrent consumers of one token are linearized by the repository's
// row lock; a failed validation never decrements.
func (s *passService) Consume(ctx context.Context, token string) (*domain.Pass, error) {
	pass, err := s.repo.ConsumeByToken(ctx, token, s.now())
	metrics.Validations.WithLabelValues(outcomeLabel(err)).Inc()
	if err != nil {
		return nil, err
	}
	return pass, nil
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "valid"
	case errors.Is(err, domain.ErrPassNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrPassInactive):
		return "inactive"
	case errors.Is(err, domain.ErrPassExpired):
		return "expired"
	case errors.Is(err, domain.ErrPassExhausted):
		return "exhausted"
	default:
		return "error"
	}
}

// Deactivate disables the pass so it can no longer be used.
func (s *passService) Deactivate(ctx context.Context, pass *domain.Pass) error {
	pass.IsActive = false
	return s.repo.UpdateFields(ctx, pass, "is_active")
}

// Reactivate resets the pass to a fresh, fully usable state: active again,
// expiry window restarted, use counter restored to the maximum. It applies
// regardless of how the pass became invalid.
func (s *passService) Reactivate(ctx context.Context, pass *domain.Pass) error {
	pass.IsActive = true
	pass.ExpiresAt = s.now().Add(s.cfg.DefaultExpiry)
	if pass.MaxUses != nil {
		remaining := *pass.MaxUses
		pass.UsesRemaining = &remaining
	}
	return s.repo.UpdateFields(ctx, pass, "is_active", "expires_at", "uses_remaining")
}

// AccessURL combines baseURL with the token query parameter. Re-tokenising an
// already tokenised URL replaces the parameter rather than duplicating it.
func (s *passService) AccessURL(pass *domain.Pass, baseURL string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}
	query := parsed.Query()
	query.Set(s.cfg.QueryKey, pass.Token)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (s *passService) GetByToken(ctx context.Context, token string) (*domain.Pass, error) {
	return s.repo.GetByToken(ctx, token)
}

func (s *passService) ListPasses(ctx context.Context, email string) ([]domain.Pass, error) {
	return s.repo.ListByEmail(ctx, email)
}

func (s *passService) RecordAccess(ctx context.Context, entry *domain.AccessLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	return s.repo.SaveAccessLog(ctx, entry)
}

func (s *passService) ListAccessLogs(ctx context.Context, passID string) ([]domain.AccessLog, error) {
	return s.repo.ListAccessLogs(ctx, passID)
}

func (s *passService) HealthCheck(ctx context.Context) map[string]error {
	checks := map[string]error{
		"database": s.repo.Ping(ctx),
	}
	if s.cache != nil {
		checks["session_cache"] = s.cache.Ping(ctx)
	}
	return checks
}
