package agents

import (
	"log"
	"sort"

	"github.com/zulandar/marketlens/internal/models"
)

// Directory indexes decoded profiles by id for one pipeline invocation.
// Lookups for unknown ids report ok=false; whether that is an error is
// the caller's call. A Directory is immutable after construction.
type Directory struct {
	byID map[string]Profile
}

// NewDirectory builds a Directory from decoded profiles.
func NewDirectory(profiles []Profile) *Directory {
	byID := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	return &Directory{byID: byID}
}

// BuildDirectory decodes agent rows and indexes the result. Rows that
// fail to decode are logged and skipped; the directory covers the rest.
func BuildDirectory(rows []models.Agent) *Directory {
	profiles := make([]Profile, 0, len(rows))
	for _, row := range rows {
		p, err := DecodeProfile(row)
		if err != nil {
			log.Printf("agents: skipping row: %v", err)
			continue
		}
		profiles = append(profiles, p)
	}
	return NewDirectory(profiles)
}

// Resolve looks up a profile by id.
func (d *Directory) Resolve(id string) (Profile, bool) {
	p, ok := d.byID[id]
	return p, ok
}

// ResolveAs looks up a profile by id, requiring the given role.
func (d *Directory) ResolveAs(role, id string) (Profile, bool) {
	p, ok := d.byID[id]
	if !ok || p.Role != role {
		return Profile{}, false
	}
	return p, true
}

// Customers returns all customer profiles, ordered by id.
func (d *Directory) Customers() []Profile {
	return d.withRole(RoleCustomer)
}

// Businesses returns all business profiles, ordered by id.
func (d *Directory) Businesses() []Profile {
	return d.withRole(RoleBusiness)
}

func (d *Directory) withRole(role string) []Profile {
	var out []Profile
	for _, p := range d.byID {
		if p.Role == role {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
