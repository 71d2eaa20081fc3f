/*
Package element provides natural isotopic abundances and Z numbers for
chemical elements, used to expand a Material.AddElement call into its
constituent nuclides.

The table is bundled at compile time via go:embed, the same way the
teacher bundles its RNA energy-parameter files - it is reference data
that changes on a nuclear-data-release cadence, not at runtime.
*/
package element

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed elements.json
var embeddedElementsFile embed.FS

type rawElement struct {
	Name         string             `json:"name"`
	AtomicNumber int                `json:"atomic_number"`
	Isotopes     map[string]float64 `json:"isotopes"`
}

// Element is a chemical element's identity and natural isotopic
// composition.
type Element struct {
	Symbol       string
	Name         string
	AtomicNumber int
	isotopes     map[string]float64
}

// Isotopes returns a copy of the nuclide id -> natural abundance mapping
// for this element (atom fractions, summing to 1 within rounding of the
// published IUPAC values).
func (e Element) Isotopes() map[string]float64 {
	out := make(map[string]float64, len(e.isotopes))
	for id, frac := range e.isotopes {
		out[id] = frac
	}
	return out
}

var (
	once     sync.Once
	bySymbol map[string]Element
	byName   map[string]Element
	loadErr  error
)

func load() {
	once.Do(func() {
		data, err := embeddedElementsFile.ReadFile("elements.json")
		if err != nil {
			loadErr = fmt.Errorf("element: %w", err)
			return
		}
		var raw map[string]rawElement
		if err := json.Unmarshal(data, &raw); err != nil {
			loadErr = fmt.Errorf("element: %w", err)
			return
		}
		bySymbol = make(map[string]Element, len(raw))
		byName = make(map[string]Element, len(raw))
		for symbol, r := range raw {
			el := Element{
				Symbol:       symbol,
				Name:         r.Name,
				AtomicNumber: r.AtomicNumber,
				isotopes:     r.Isotopes,
			}
			bySymbol[normalize(symbol)] = el
			byName[normalize(r.Name)] = el
		}
	})
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Lookup resolves an element by its symbol or name (case-insensitive).
func Lookup(symbolOrName string) (Element, error) {
	load()
	if loadErr != nil {
		return Element{}, loadErr
	}
	key := normalize(symbolOrName)
	if el, ok := bySymbol[key]; ok {
		return el, nil
	}
	if el, ok := byName[key]; ok {
		return el, nil
	}
	return Element{}, fmt.Errorf("element: %q is not a recognised element", symbolOrName)
}

// Symbols returns every known element symbol, sorted, mostly useful for
// tests and diagnostics.
func Symbols() []string {
	load()
	symbols := make([]string, 0, len(bySymbol))
	for _, el := range bySymbol {
		symbols = append(symbols, el.Symbol)
	}
	sort.Strings(symbols)
	return symbols
}
