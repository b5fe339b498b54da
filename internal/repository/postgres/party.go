package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lexara-com/engage-sub006/internal/domain"
)

// PartyRepository implements domain.PartyRepository over the firm conflict
// index table.
type PartyRepository struct {
	pool *pgxpool.Pool
}

// NewPartyRepository creates a new party repository
func NewPartyRepository(pool *pgxpool.Pool) *PartyRepository {
	return &PartyRepository{pool: pool}
}

func (r *PartyRepository) Create(ctx context.Context, party *domain.Party) error {
	aliases, err := json.Marshal(party.Aliases)
	if err != nil {
		return fmt.Errorf("failed to marshal aliases: %w", err)
	}
	query := `
		INSERT INTO conflict_parties (id, firm_id, name, email, phone, aliases, role, matter_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.pool.Exec(ctx, query,
		party.ID,
		party.FirmID,
		party.Name,
		party.Email,
		party.Phone,
		aliases,
		string(party.Role),
		party.MatterRef,
		party.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create party: %w", err)
	}
	return nil
}

func (r *PartyRepository) ListByFirm(ctx context.Context, firmID uuid.UUID) ([]domain.Party, error) {
	query := `
		SELECT id, firm_id, name, email, phone, aliases, role, matter_ref, created_at
		FROM conflict_parties
		WHERE firm_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, firmID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parties: %w", err)
	}
	defer rows.Close()

	var parties []domain.Party
	for rows.Next() {
		var p domain.Party
		var role string
		var aliases []byte
		if err := rows.Scan(
			&p.ID,
			&p.FirmID,
			&p.Name,
			&p.Email,
			&p.Phone,
			&aliases,
			&role,
			&p.MatterRef,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan party: %w", err)
		}
		p.Role = domain.PartyRole(role)
		if len(aliases) > 0 {
			if err := json.Unmarshal(aliases, &p.Aliases); err != nil {
				return nil, fmt.Errorf("failed to unmarshal aliases: %w", err)
			}
		}
		parties = append(parties, p)
	}
	return parties, nil
}

func (r *PartyRepository) Delete(ctx context.Context, firmID, partyID uuid.UUID) error {
	query := `DELETE FROM conflict_parties WHERE firm_id = $1 AND id = $2`
	_, err := r.pool.Exec(ctx, query, firmID, partyID)
	if err != nil {
		return fmt.Errorf("failed to delete party: %w", err)
	}
	return nil
}
