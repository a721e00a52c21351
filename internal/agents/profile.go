// Package agents decodes and indexes marketplace participant profiles.
package agents

import (
	"encoding/json"
	"fmt"

	"github.com/zulandar/marketlens/internal/models"
)

// Participant roles.
const (
	RoleCustomer = "customer"
	RoleBusiness = "business"
)

// MenuFeature is one priced item on a business menu.
type MenuFeature struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Profile is one decoded participant. Role selects which attribute
// group is populated. Profiles are immutable once decoded.
type Profile struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	Name string `json:"name"`

	// Customer attributes.
	Request                string   `json:"request,omitempty"`
	DesiredMenuFeatures    []string `json:"desired_menu_features,omitempty"`
	DesiredAmenityFeatures []string `json:"desired_amenity_features,omitempty"`

	// Business attributes. PriceMin/PriceMax are derived from the menu.
	Rating          float64       `json:"rating,omitempty"`
	Description     string        `json:"description,omitempty"`
	MenuFeatures    []MenuFeature `json:"menu_features,omitempty"`
	AmenityFeatures []string      `json:"amenity_features,omitempty"`
	PriceMin        float64       `json:"price_min,omitempty"`
	PriceMax        float64       `json:"price_max,omitempty"`
}

// profileData is the wire shape of an agent Data column. menu_features
// is role-dependent: feature names for customers, priced items for
// businesses, so it stays raw until the role is known.
type profileData struct {
	Role            string          `json:"role"`
	Name            string          `json:"name"`
	Request         string          `json:"request"`
	MenuFeatures    json.RawMessage `json:"menu_features"`
	AmenityFeatures []string        `json:"amenity_features"`
	Rating          float64         `json:"rating"`
	Description     string          `json:"description"`
}

// DecodeProfile decodes one stored agent row into a Profile.
func DecodeProfile(row models.Agent) (Profile, error) {
	var data profileData
	if err := json.Unmarshal([]byte(row.Data), &data); err != nil {
		return Profile{}, fmt.Errorf("agents: decode %s: %w", row.ID, err)
	}

	p := Profile{ID: row.ID, Role: data.Role, Name: data.Name}
	switch data.Role {
	case RoleCustomer:
		p.Request = data.Request
		p.DesiredAmenityFeatures = data.AmenityFeatures
		if len(data.MenuFeatures) > 0 {
			if err := json.Unmarshal(data.MenuFeatures, &p.DesiredMenuFeatures); err != nil {
				return Profile{}, fmt.Errorf("agents: decode %s menu features: %w", row.ID, err)
			}
		}
	case RoleBusiness:
		p.Rating = data.Rating
		p.Description = data.Description
		p.AmenityFeatures = data.AmenityFeatures
		if len(data.MenuFeatures) > 0 {
			if err := json.Unmarshal(data.MenuFeatures, &p.MenuFeatures); err != nil {
				return Profile{}, fmt.Errorf("agents: decode %s menu features: %w", row.ID, err)
			}
		}
		p.PriceMin, p.PriceMax = priceRange(p.MenuFeatures)
	default:
		return Profile{}, fmt.Errorf("agents: decode %s: unknown role %q", row.ID, data.Role)
	}
	return p, nil
}

// priceRange derives the min/max price over a business menu.
func priceRange(menu []MenuFeature) (min, max float64) {
	if len(menu) == 0 {
		return 0, 0
	}
	min, max = menu[0].Price, menu[0].Price
	for _, f := range menu[1:] {
		if f.Price < min {
			min = f.Price
		}
		if f.Price > max {
			max = f.Price
		}
	}
	return min, max
}
