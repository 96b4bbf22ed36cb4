package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/guestgate/guestgate/internal/core/domain"
)

// PostgresRepository implements ports.PassRepository using PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates and returns a new PostgresRepository instance.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const passColumns = `id, token, first_name, last_name, email, scope, context, created_at, last_updated_at, expires_at, is_active, max_uses, uses_remaining`

func scanPass(row interface{ Scan(...interface{}) error }) (*domain.Pass, error) {
	var p domain.Pass
	var ctxData []byte
	var maxUses, usesRemaining sql.NullInt32
	err := row.Scan(&p.ID, &p.Token, &p.FirstName, &p.LastName, &p.Email, &p.Scope,
		&ctxData, &p.CreatedAt, &p.LastUpdatedAt, &p.ExpiresAt, &p.IsActive, &maxUses, &usesRemaining)
	if err != nil {
		return nil, err
	}
	p.Context = ctxData
	if maxUses.Valid {
		m := int(maxUses.Int32)
		p.MaxUses = &m
	}
	if usesRemaining.Valid {
		u := int(usesRemaining.Int32)
		p.UsesRemaining = &u
	}
	return &p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, pass *domain.Pass) error {
	query := `INSERT INTO visitor_passes (` + passColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	var ctxData interface{}
	if len(pass.Context) > 0 {
		ctxData = []byte(pass.Context)
	}
	_, err := r.db.ExecContext(ctx, query, pass.ID, pass.Token, pass.FirstName, pass.LastName,
		pass.Email, pass.Scope, ctxData, pass.CreatedAt, pass.LastUpdatedAt, pass.ExpiresAt,
		pass.IsActive, pass.MaxUses, pass.UsesRemaining)
	return err
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*domain.Pass, error) {
	query := `SELECT ` + passColumns + ` FROM visitor_passes WHERE token = $1`
	pass, err := scanPass(r.db.QueryRowContext(ctx, query, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPassNotFound
	}
	if err != nil {
		return nil, err
	}
	return pass, nil
}

// ConsumeByToken fetches the pass under an exclusive row lock, validates it
// against now, and decrements uses_remaining by exactly one when a use limit
// is set. The lock is mandatory: without it two concurrent consumers of a
// max_uses=1 pass could both observe uses_remaining=1 and both succeed. A
// failed validation rolls back without consuming a use.
func (r *PostgresRepository) ConsumeByToken(ctx context.Context, token string, now time.Time) (*domain.Pass, error) {
	tx, errTx := r.db.BeginTx(ctx, nil)
	if errTx != nil {
		return nil, errTx
	}
	defer func() {
		if errRollback := tx.Rollback(); errRollback != nil && !errors.Is(errRollback, sql.ErrTxDone) {
			log.Printf("failed to rollback transaction: %v", errRollback)
		}
	}()

	query := `SELECT ` + passColumns + ` FROM visitor_passes WHERE token = $1 FOR UPDATE`
	pass, errScan := scanPass(tx.QueryRowContext(ctx, query, token))
	if errors.Is(errScan, sql.ErrNoRows) {
		return nil, domain.ErrPassNotFound
	}
	if errScan != nil {
		return nil, errScan
	}

	if errValidate := pass.Validate(now); errValidate != nil {
		return nil, errValidate
	}

	if pass.MaxUses != nil {
		*pass.UsesRemaining--
		pass.LastUpdatedAt = now
		update := `UPDATE visitor_passes SET uses_remaining = $1, last_updated_at = $2 WHERE id = $3`
		if _, errExec := tx.ExecContext(ctx, update, *pass.UsesRemaining, now, pass.ID); errExec != nil {
			return nil, errExec
		}
	}

	if errCommit := tx.Commit(); errCommit != nil {
		return nil, errCommit
	}
	return pass, nil
}

// updatableColumns whitelists the fields UpdateFields may persist.
var updatableColumns = map[string]struct{}{
	"first_name":     {},
	"last_name":      {},
	"context":        {},
	"expires_at":     {},
	"is_active":      {},
	"uses_remaining": {},
}

// UpdateFields persists only the named fields, always also touching
// last_updated_at.
func (r *PostgresRepository) UpdateFields(ctx context.Context, pass *domain.Pass, fields ...string) error {
	if len(fields) == 0 {
		return fmt.Errorf("no fields to update")
	}

	setClauses := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+2)
	for _, field := range fields {
		if _, ok := updatableColumns[field]; !ok {
			return fmt.Errorf("field %q is not updatable", field)
		}
		args = append(args, passFieldValue(pass, field))
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field, len(args)))
	}

	pass.LastUpdatedAt = time.Now()
	args = append(args, pass.LastUpdatedAt)
	setClauses = append(setClauses, fmt.Sprintf("last_updated_at = $%d", len(args)))

	args = append(args, pass.ID)
	query := fmt.Sprintf(`UPDATE visitor_passes SET %s WHERE id = $%d`,
		strings.Join(setClauses, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if affected, errRows := res.RowsAffected(); errRows == nil && affected == 0 {
		return domain.ErrPassNotFound
	}
	return nil
}

func passFieldValue(pass *domain.Pass, field string) interface{} {
	switch field {
	case "first_name":
		return pass.FirstName
	case "last_name":
		return pass.LastName
	case "context":
		if len(pass.Context) == 0 {
			return nil
		}
		return []byte(pass.Context)
	case "expires_at":
		return pass.ExpiresAt
	case "is_active":
		return pass.IsActive
	case "uses_remaining":
		return pass.UsesRemaining
	default:
		return nil
	}
}

func (r *PostgresRepository) ListByEmail(ctx context.Context, email string) ([]domain.Pass, error) {
	query := `SELECT ` + passColumns + ` FROM visitor_passes`
	var rows *sql.Rows
	var errQuery error

	if email != "" {
		query += ` WHERE email = $1 ORDER BY created_at DESC`
		rows, errQuery = r.db.QueryContext(ctx, query, email)
	} else {
		query += ` ORDER BY created_at DESC`
		rows, errQuery = r.db.QueryContext(ctx, query)
	}

	if errQuery != nil {
		return nil, errQuery
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("failed to close rows: %v", errClose)
		}
	}()

	var passes []domain.Pass
	for rows.Next() {
		pass, errScan := scanPass(rows)
		if errScan != nil {
			return nil, errScan
		}
		passes = append(passes, *pass)
	}
	return passes, rows.Err()
}

func (r *PostgresRepository) SaveAccessLog(ctx context.Context, entry *domain.AccessLog) error {
	query := `INSERT INTO visitor_access_logs (id, pass_id, session_key, http_method, request_uri, query_string, user_agent, referer, remote_addr, status_code, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	// Failed attempts may not resolve to a pass at all.
	var passID interface{}
	if entry.PassID != "" {
		passID = entry.PassID
	}
	_, err := r.db.ExecContext(ctx, query, entry.ID, passID, entry.SessionKey, entry.HTTPMethod,
		entry.RequestURI, entry.QueryString, entry.UserAgent, entry.Referer, entry.RemoteAddr,
		entry.StatusCode, entry.CreatedAt)
	return err
}

func (r *PostgresRepository) ListAccessLogs(ctx context.Context, passID string) ([]domain.AccessLog, error) {
	query := `SELECT id, pass_id, session_key, http_method, request_uri, query_string, user_agent, referer, remote_addr, status_code, created_at
	          FROM visitor_access_logs WHERE pass_id = $1 ORDER BY created_at DESC`
	rows, errQuery := r.db.QueryContext(ctx, query, passID)
	if errQuery != nil {
		return nil, errQuery
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("failed to close rows: %v", errClose)
		}
	}()

	var logs []domain.AccessLog
	for rows.Next() {
		var l domain.AccessLog
		var passID sql.NullString
		if errScan := rows.Scan(&l.ID, &passID, &l.SessionKey, &l.HTTPMethod, &l.RequestURI,
			&l.QueryString, &l.UserAgent, &l.Referer, &l.RemoteAddr, &l.StatusCode, &l.CreatedAt); errScan != nil {
			return nil, errScan
		}
		l.PassID = passID.String
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
