package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lexara-com/engage-sub006/internal/domain"
)

// PartyRepository implements domain.PartyRepository over sqlite
type PartyRepository struct {
	store *Store
}

// NewPartyRepository creates a new party repository
func NewPartyRepository(store *Store) *PartyRepository {
	return &PartyRepository{store: store}
}

func (r *PartyRepository) Create(ctx context.Context, party *domain.Party) error {
	aliases, err := json.Marshal(party.Aliases)
	if err != nil {
		return fmt.Errorf("failed to marshal aliases: %w", err)
	}
	query := `
		INSERT INTO conflict_parties (id, firm_id, name, email, phone, aliases, role, matter_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.store.db.ExecContext(ctx, query,
		party.ID.String(),
		party.FirmID.String(),
		party.Name,
		party.Email,
		party.Phone,
		string(aliases),
		string(party.Role),
		party.MatterRef,
		party.CreatedAt.UTC().Format(time.RFC3339Nano),
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
		WHERE firm_id = ?
		ORDER BY created_at
	`
	rows, err := r.store.db.QueryContext(ctx, query, firmID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list parties: %w", err)
	}
	defer rows.Close()

	var parties []domain.Party
	for rows.Next() {
		var p domain.Party
		var id, firm, role, aliases, createdAt string
		if err := rows.Scan(&id, &firm, &p.Name, &p.Email, &p.Phone, &aliases, &role, &p.MatterRef, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan party: %w", err)
		}
		if p.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid party id: %w", err)
		}
		if p.FirmID, err = uuid.Parse(firm); err != nil {
			return nil, fmt.Errorf("invalid firm id: %w", err)
		}
		p.Role = domain.PartyRole(role)
		if aliases != "" {
			if err := json.Unmarshal([]byte(aliases), &p.Aliases); err != nil {
				return nil, fmt.Errorf("failed to unmarshal aliases: %w", err)
			}
		}
		if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("invalid party timestamp: %w", err)
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

func (r *PartyRepository) Delete(ctx context.Context, firmID, partyID uuid.UUID) error {
	query := `DELETE FROM conflict_parties WHERE firm_id = ? AND id = ?`
	_, err := r.store.db.ExecContext(ctx, query, firmID.String(), partyID.String())
	if err != nil {
		return fmt.Errorf("failed to delete party: %w", err)
	}
	return nil
}
