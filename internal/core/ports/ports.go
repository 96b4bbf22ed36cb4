package ports

import (
	"context"
	"time"

	"github.com/guestgate/guestgate/internal/core/domain"
)

// PassRepository is the sole writer of pass state. Every mutation goes
// through it, and the consume path must hold a row lock for the duration of
// its transaction.
type PassRepository interface {
	Create(ctx context.Context, pass *domain.Pass) error
	GetByToken(ctx context.Context, token string) (*domain.Pass, error)
	// ConsumeByToken atomically validates the pass against now and, on
	// success, decrements uses_remaining by exactly one. A failed validation
	// rolls back and consumes nothing.
	ConsumeByToken(ctx context.Context, token string, now time.Time) (*domain.Pass, error)
	// UpdateFields persists only the named columns, always also touching
	// last_updated_at.
	UpdateFields(ctx context.Context, pass *domain.Pass, fields ...string) error
	ListByEmail(ctx context.Context, email string) ([]domain.Pass, error)
	SaveAccessLog(ctx context.Context, entry *domain.AccessLog) error
	ListAccessLogs(ctx context.Context, passID string) ([]domain.AccessLog, error)
	Ping(ctx context.Context) error
}

type PassService interface {
	Issue(ctx context.Context, params domain.PassParams) (*domain.Pass, error)
	Consume(ctx context.Context, token string) (*domain.Pass, error)
	Deactivate(ctx context.Context, pass *domain.Pass) error
	Reactivate(ctx context.Context, pass *domain.Pass) error
	AccessURL(pass *domain.Pass, baseURL string) (string, error)
	GetByToken(ctx context.Context, token string) (*domain.Pass, error)
	ListPasses(ctx context.Context, email string) ([]domain.Pass, error)
	RecordAccess(ctx context.Context, entry *domain.AccessLog) error
	ListAccessLogs(ctx context.Context, passID string) ([]domain.AccessLog, error)
	HealthCheck(ctx context.Context) map[string]error
}

// SessionCache binds a session key to a validated token so repeat requests
// within one session skip re-consuming the pass. It only ever stores the
// token string; mutable pass fields are always re-read under the row lock.
type SessionCache interface {
	Get(ctx context.Context, sessionKey string) (string, bool)
	Set(ctx context.Context, sessionKey, token string, ttl time.Duration)
	Delete(ctx context.Context, sessionKey string)
	Ping(ctx context.Context) error
}
