package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lexara-com/engage-sub006/internal/domain"
)

// SessionRepository implements domain.SessionRepository over sqlite
type SessionRepository struct {
	store *Store
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{store: store}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	doc, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	query := `
		INSERT INTO intake_sessions (session_id, firm_id, phase, is_deleted, created_at, last_activity, state)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.store.db.ExecContext(ctx, query,
		session.SessionID.String(),
		session.FirmID.String(),
		string(session.Phase),
		boolToInt(session.IsDeleted),
		session.CreatedAt.UTC().Format(time.RFC3339Nano),
		session.LastActivity.UTC().Format(time.RFC3339Nano),
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, firmID, sessionID uuid.UUID) (*domain.Session, error) {
	query := `SELECT state FROM intake_sessions WHERE firm_id = ? AND session_id = ?`
	var doc string
	err := r.store.db.QueryRowContext(ctx, query, firmID.String(), sessionID.String()).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	doc, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	query := `
		UPDATE intake_sessions
		SET phase = ?, is_deleted = ?, last_activity = ?, state = ?
		WHERE firm_id = ? AND session_id = ?
	`
	res, err := r.store.db.ExecContext(ctx, query,
		string(session.Phase),
		boolToInt(session.IsDeleted),
		session.LastActivity.UTC().Format(time.RFC3339Nano),
		string(doc),
		session.FirmID.String(),
		session.SessionID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) ListByFirm(ctx context.Context, firmID uuid.UUID, includeDeleted bool, limit, offset int) ([]domain.Session, error) {
	query := `
		SELECT state
		FROM intake_sessions
		WHERE firm_id = ? AND (? OR is_deleted = 0)
		ORDER BY last_activity DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.store.db.QueryContext(ctx, query, firmID.String(), boolToInt(includeDeleted), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		var s domain.Session
		if err := json.Unmarshal([]byte(doc), &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
