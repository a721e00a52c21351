// Package scoring holds utility policies for completed conversations.
// The aggregator only depends on the UtilityFunc signature; this
// package supplies the default policy and can grow alternatives
// without touching the pipeline.
package scoring

import (
	"strings"

	"github.com/zulandar/marketlens/internal/agents"
)

// amenityWeight discounts amenity matches relative to menu matches.
const amenityWeight = 0.5

// FeatureMatchScorer scores a (customer, business) pair by how well the
// business covers the customer's desired features, weighted by the
// business rating. Score = (menu matches + 0.5 × amenity matches) ×
// rating/5. Unknown participants score 0.
type FeatureMatchScorer struct {
	dir *agents.Directory
}

// NewFeatureMatchScorer creates a scorer over one pipeline's directory.
func NewFeatureMatchScorer(dir *agents.Directory) *FeatureMatchScorer {
	return &FeatureMatchScorer{dir: dir}
}

// Score implements analytics.UtilityFunc.
func (s *FeatureMatchScorer) Score(customerID, businessID string) float64 {
	customer, ok := s.dir.ResolveAs(agents.RoleCustomer, customerID)
	if !ok {
		return 0
	}
	business, ok := s.dir.ResolveAs(agents.RoleBusiness, businessID)
	if !ok {
		return 0
	}

	menu := make(map[string]bool, len(business.MenuFeatures))
	for _, f := range business.MenuFeatures {
		menu[normalize(f.Name)] = true
	}
	amenities := make(map[string]bool, len(business.AmenityFeatures))
	for _, f := range business.AmenityFeatures {
		amenities[normalize(f)] = true
	}

	score := 0.0
	for _, want := range customer.DesiredMenuFeatures {
		if menu[normalize(want)] {
			score++
		}
	}
	for _, want := range customer.DesiredAmenityFeatures {
		if amenities[normalize(want)] {
			score += amenityWeight
		}
	}
	return score * business.Rating / 5
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
