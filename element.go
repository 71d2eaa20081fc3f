package materials

import (
	"context"
	"sort"

	"github.com/openneutronics/materials/element"
	"github.com/openneutronics/materials/loader"
	"github.com/openneutronics/materials/nuclide"
)

// Element is a natural element's isotopic composition, with the nuclide
// handles and abundance-weighted cross section this package adds on top
// of the element package's static abundance table - element.Element only
// knows Z/name/isotope fractions, it has no loader to actually get
// reaction data from.
type Element struct {
	table  element.Element
	loader *loader.Loader
}

// NewElement resolves symbolOrName (case-insensitive symbol or name)
// through the element table.
func NewElement(symbolOrName string) (*Element, error) {
	el, err := element.Lookup(symbolOrName)
	if err != nil {
		return nil, &ValueError{Msg: err.Error()}
	}
	return &Element{table: el, loader: loader.Default}, nil
}

// Name returns the element's full name (e.g. "lithium").
func (e *Element) Name() string { return e.table.Name }

// Symbol returns the element's symbol (e.g. "Li").
func (e *Element) Symbol() string { return e.table.Symbol }

// AtomicNumber returns the element's Z.
func (e *Element) AtomicNumber() int { return e.table.AtomicNumber }

// Isotopes returns the nuclide id -> natural abundance mapping.
func (e *Element) Isotopes() map[string]float64 { return e.table.Isotopes() }

// GetNuclides loads (via the configured source registry) and returns the
// nuclide handle for every naturally occurring isotope of this element,
// sorted by id.
func (e *Element) GetNuclides() ([]*nuclide.Nuclide, error) {
	isotopes := e.table.Isotopes()
	ids := make([]string, 0, len(isotopes))
	for id := range isotopes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*nuclide.Nuclide, len(ids))
	for i, id := range ids {
		n, err := e.loader.Load(context.Background(), id, nil, nil)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// MicroscopicCrossSection returns the element's abundance-weighted
// microscopic cross section for reaction at temperature: each isotope's
// own cross section (resolved/synthesised exactly as
// nuclide.Nuclide.MicroscopicCrossSection would), interpolated onto the
// union of every isotope's energy grid and scaled by its natural
// abundance, then summed. temperature may be empty only when every
// isotope has exactly one loaded temperature.
func (e *Element) MicroscopicCrossSection(reactionArg any, temperature string) ([]float64, []float64, error) {
	isotopes := e.table.Isotopes()
	ids := make([]string, 0, len(isotopes))
	for id := range isotopes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	type contribution struct {
		energy    []float64
		xs        []float64
		abundance float64
	}
	contributions := make([]contribution, 0, len(ids))

	for _, id := range ids {
		n, err := e.loader.Load(context.Background(), id, nil, nil)
		if err != nil {
			return nil, nil, err
		}
		energy, xs, err := n.MicroscopicCrossSection(reactionArg, nuclide.Temperature(temperature))
		if err != nil {
			return nil, nil, err
		}
		contributions = append(contributions, contribution{energy: energy, xs: xs, abundance: isotopes[id]})
	}

	var allEnergy []float64
	for _, c := range contributions {
		allEnergy = append(allEnergy, c.energy...)
	}
	grid := nuclide.DedupeSorted(allEnergy)

	sum := make([]float64, len(grid))
	for _, c := range contributions {
		for i, eV := range grid {
			sum[i] += c.abundance * nuclide.Interpolate(c.energy, c.xs, eV)
		}
	}
	return grid, sum, nil
}
