package materials

import (
	"context"

	"github.com/openneutronics/materials/config"
	"github.com/openneutronics/materials/loader"
	"github.com/openneutronics/materials/nuclide"
)

// Materials is an ordered collection of Material values that share a
// single batched nuclide load: ReadNuclidesFromJSON computes, for each
// distinct nuclide id appearing across every member's composition, the
// union of temperatures any member actually needs, and loads that
// nuclide exactly once. Every member that uses the nuclide is handed the
// same handle, carrying that whole union of temperatures; each member
// still evaluates at its own temperature.
type Materials struct {
	items []*Material
}

// NewMaterials returns a Materials collection seeded with ms.
func NewMaterials(ms ...*Material) *Materials {
	return &Materials{items: append([]*Material(nil), ms...)}
}

// Append adds m to the collection.
func (ms *Materials) Append(m *Material) {
	ms.items = append(ms.items, m)
}

// Len returns the number of materials in the collection.
func (ms *Materials) Len() int { return len(ms.items) }

// At returns the i'th material.
func (ms *Materials) At(i int) *Material { return ms.items[i] }

// ReadNuclidesFromJSON configures sources (if value is non-nil, exactly as
// Material.ReadNuclidesFromJSON does) and then loads every distinct
// nuclide id across the collection's members once, at the union of
// temperatures its members individually require, and installs that one
// shared handle in every member that uses the nuclide.
func (ms *Materials) ReadNuclidesFromJSON(value any) error {
	if value != nil {
		if err := config.SetCrossSections(value); err != nil {
			return err
		}
	}

	demanded := make(map[string]map[string]bool)
	for _, m := range ms.items {
		for _, e := range m.entries {
			temps, ok := demanded[e.ID]
			if !ok {
				temps = make(map[string]bool)
				demanded[e.ID] = temps
			}
			temps[string(m.temperature)] = true
		}
	}

	loaded := make(map[string]*nuclide.Nuclide, len(demanded))
	for id, temps := range demanded {
		tempList := make([]string, 0, len(temps))
		for t := range temps {
			tempList = append(tempList, t)
		}
		n, err := loader.Default.Load(context.Background(), id, nil, tempList)
		if err != nil {
			return err
		}
		loaded[id] = n
	}

	for _, m := range ms.items {
		for _, e := range m.entries {
			m.nuclides[e.ID] = loaded[e.ID]
		}
		m.invalidateCaches()
	}
	return nil
}
