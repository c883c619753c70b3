package mockapi

import (
	"fmt"
	"time"

	"github.com/ncanzani/salesdeck/internal/backend"
)

var seedStages = []string{
	backend.StageNew,
	backend.StageContacted,
	backend.StageQualified,
	backend.StageConverted,
	backend.StageLost,
}

// seed fills the server with a deterministic data set large enough to page
// through: 45 leads and 45 conversations, matching the boundary cases the
// console is tested against.
func (s *Server) seed() {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	for i := 1; i <= 45; i++ {
		created := base.Add(time.Duration(i) * time.Hour)
		phone := fmt.Sprintf("+5491155%06d", 100000+i)

		lead := backend.Lead{
			ID:        fmt.Sprintf("lead-%d", i),
			Phone:     phone,
			Stage:     seedStages[i%len(seedStages)],
			CreatedAt: created,
			UpdatedAt: created.Add(30 * time.Minute),
		}
		// Leave optional fields empty on every third record so the
		// console's dash/empty handling stays visible in demos.
		if i%3 != 0 {
			lead.ContactName = fmt.Sprintf("Contact %d", i)
			lead.Email = fmt.Sprintf("contact%d@example.com", i)
			lead.Interest = "premium plan"
			lead.Notes = "asked for pricing"
		}
		s.leads = append(s.leads, lead)

		conv := backend.Conversation{
			ID:          fmt.Sprintf("conv-%d", i),
			Phone:       phone,
			ContactName: lead.ContactName,
			Status:      []string{"active", "closed", "pending"}[i%3],
			CreatedAt:   created,
			UpdatedAt:   created.Add(10 * time.Minute),
			Messages: []backend.Message{
				{Role: "user", Content: "Hola, quiero info del plan premium", Timestamp: created},
				{Role: "assistant", Content: "Con gusto, te cuento las opciones.", Timestamp: created.Add(time.Minute)},
			},
		}
		s.conversations = append(s.conversations, conv)
	}
}
