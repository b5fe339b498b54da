package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lexara-com/engage-sub006/internal/domain"
)

// SessionRepository implements domain.SessionRepository. The aggregate is
// stored as a JSONB document alongside a few indexed columns used for
// listing and retention queries.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	doc, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	query := `
		INSERT INTO intake_sessions (session_id, firm_id, phase, is_deleted, created_at, last_activity, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.pool.Exec(ctx, query,
		session.SessionID,
		session.FirmID,
		string(session.Phase),
		session.IsDeleted,
		session.CreatedAt,
		session.LastActivity,
		doc,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, firmID, sessionID uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT state
		FROM intake_sessions
		WHERE firm_id = $1 AND session_id = $2
	`
	var doc []byte
	err := r.pool.QueryRow(ctx, query, firmID, sessionID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal(doc, &s); err != nil {
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
		SET phase = $1, is_deleted = $2, last_activity = $3, state = $4
		WHERE firm_id = $5 AND session_id = $6
	`
	tag, err := r.pool.Exec(ctx, query,
		string(session.Phase),
		session.IsDeleted,
		session.LastActivity,
		doc,
		session.FirmID,
		session.SessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) ListByFirm(ctx context.Context, firmID uuid.UUID, includeDeleted bool, limit, offset int) ([]domain.Session, error) {
	query := `
		SELECT state
		FROM intake_sessions
		WHERE firm_id = $1 AND ($2 OR NOT is_deleted)
		ORDER BY last_activity DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, firmID, includeDeleted, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		var s domain.Session
		if err := json.Unmarshal(doc, &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
