package intake

import (
	"time"

	"github.com/lexara-com/engage-sub006/internal/domain"
)

// BaseGoals returns the default intake checklist seeded into every new
// session. Firm-specific supporting-document goals and conflict-checker
// goals arrive later through reconciliation.
func BaseGoals(now time.Time) []domain.Goal {
	return []domain.Goal{
		{
			ID:          "client-name",
			Description: "Collect the prospective client's full legal name",
			Priority:    domain.PriorityCritical,
			Category:    domain.CategoryIdentification,
			Source:      domain.SourceBase,
			AddedAt:     now,
		},
		{
			ID:          "contact-method",
			Description: "Collect at least one contact method (email or phone)",
			Priority:    domain.PriorityCritical,
			Category:    domain.CategoryIdentification,
			Source:      domain.SourceBase,
			AddedAt:     now,
		},
		{
			ID:          "legal-area",
			Description: "Identify the area of law the matter falls under",
			Priority:    domain.PriorityRequired,
			Category:    domain.CategoryLegalContext,
			Source:      domain.SourceBase,
			AddedAt:     now,
		},
		{
			ID:          "situation-description",
			Description: "Capture the client's description of their situation",
			Priority:    domain.PriorityRequired,
			Category:    domain.CategoryIncidentDetails,
			Source:      domain.SourceBase,
			AddedAt:     now,
		},
		{
			ID:          "incident-date",
			Description: "Establish when the incident or dispute occurred",
			Priority:    domain.PriorityImportant,
			Category:    domain.CategoryIncidentDetails,
			Source:      domain.SourceBase,
			AddedAt:     now,
		},
		{
			ID:          "supporting-evidence",
			Description: "List documents or evidence the client can provide",
			Priority:    domain.PriorityOptional,
			Category:    domain.CategoryEvidence,
			Source:      domain.SourceBase,
			AddedAt:     now,
		},
	}
}
