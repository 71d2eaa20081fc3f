/*
Package nuclide is the in-memory data model for a single evaluated
nuclide: its identity (Z, A, N, element), its per-temperature reaction
tables, and the queries built on top of them (reaction MT list,
fissionable flag, interpolated cross sections with sum-rule synthesis).

Loading and caching live one layer up in package loader; this package
only knows how to answer questions about data it already has, plus how to
ask its owner (the loader, via the unexported autoLoad hook installed at
construction time) for a temperature it doesn't have yet.
*/
package nuclide

import (
	"fmt"
	"sort"

	"github.com/openneutronics/materials/config"
	"github.com/openneutronics/materials/reaction"
)

// Temperature is a canonical temperature label, e.g. "294" or "300".
type Temperature string

// Reaction is one MT's tabulated cross section at a single temperature:
// a strictly increasing energy grid in eV paired with non-negative cross
// sections in barns.
type Reaction struct {
	MT     reaction.MT
	Energy []float64
	XS     []float64
}

// Nuclide is one evaluated nuclide's in-memory reaction data.
type Nuclide struct {
	ID                    string
	ElementSymbol         string
	ElementName           string
	AtomicNumber          int
	MassNumber            int
	NeutronNumber         int
	AtomicMass            float64
	AvailableTemperatures []Temperature
	LoadedTemperatures    []Temperature
	Reactions             map[Temperature]map[reaction.MT]Reaction

	Source config.Source

	// autoLoad is installed by package loader so that requesting an
	// available-but-not-yet-loaded temperature can be satisfied without
	// nuclide depending on loader (which itself depends on nuclide).
	autoLoad func(temperatures []Temperature) (*Nuclide, error)
}

// SetAutoLoader installs the callback package loader uses to materialise
// additional temperatures on demand. Exported so loader (a different
// package) can call it; not meant for other callers.
func (n *Nuclide) SetAutoLoader(f func(temperatures []Temperature) (*Nuclide, error)) {
	n.autoLoad = f
}

// Fissionable reports whether any fission-like MT (18, 19, 20, 21, 38) is
// present with non-zero data at any loaded temperature.
func (n *Nuclide) Fissionable() bool {
	for _, table := range n.Reactions {
		for mt, rxn := range table {
			if !reaction.IsFissionLike(mt) {
				continue
			}
			for _, xs := range rxn.XS {
				if xs != 0 {
					return true
				}
			}
		}
	}
	return false
}

// ReactionMTs returns the sorted union of MT numbers across all loaded
// temperatures.
func (n *Nuclide) ReactionMTs() []reaction.MT {
	seen := map[reaction.MT]bool{}
	for _, table := range n.Reactions {
		for mt := range table {
			seen[mt] = true
		}
	}
	mts := make([]reaction.MT, 0, len(seen))
	for mt := range seen {
		mts = append(mts, mt)
	}
	sort.Slice(mts, func(i, j int) bool { return mts[i] < mts[j] })
	return mts
}

// resolveTemperature lets an omitted temperature stand in for the single
// loaded one; omitting it with more than one loaded is ambiguous.
func (n *Nuclide) resolveTemperature(requested Temperature) (Temperature, error) {
	if requested != "" {
		return requested, nil
	}
	if len(n.LoadedTemperatures) == 1 {
		return n.LoadedTemperatures[0], nil
	}
	if len(n.LoadedTemperatures) == 0 {
		return "", &NotFoundError{Msg: fmt.Sprintf("nuclide %s has no loaded temperatures", n.ID)}
	}
	return "", &AmbiguousError{Msg: fmt.Sprintf("nuclide %s has %d loaded temperatures; specify one", n.ID, len(n.LoadedTemperatures))}
}

func (n *Nuclide) isLoaded(t Temperature) bool {
	for _, loaded := range n.LoadedTemperatures {
		if loaded == t {
			return true
		}
	}
	return false
}

func (n *Nuclide) isAvailable(t Temperature) bool {
	for _, available := range n.AvailableTemperatures {
		if available == t {
			return true
		}
	}
	return false
}

// ensureLoaded auto-loads t via the installed autoLoad hook if t is
// available but not yet resident, merging the result into n.
func (n *Nuclide) ensureLoaded(t Temperature) error {
	if n.isLoaded(t) {
		return nil
	}
	if !n.isAvailable(t) {
		return &NotFoundError{
			Msg:       fmt.Sprintf("temperature %s not available for nuclide %s", t, n.ID),
			Available: temperaturesToStrings(n.AvailableTemperatures),
		}
	}
	if n.autoLoad == nil {
		return &NotFoundError{Msg: fmt.Sprintf("temperature %s not loaded for nuclide %s and no loader is installed", t, n.ID)}
	}
	reloaded, err := n.autoLoad(append(n.LoadedTemperatures, t))
	if err != nil {
		return err
	}
	n.merge(reloaded)
	return nil
}

// merge absorbs a freshly loaded Nuclide's reaction tables into n, used
// after an auto-load widens the set of resident temperatures.
func (n *Nuclide) merge(other *Nuclide) {
	for temp, table := range other.Reactions {
		n.Reactions[temp] = table
	}
	n.LoadedTemperatures = other.LoadedTemperatures
}

func temperaturesToStrings(temps []Temperature) []string {
	out := make([]string, len(temps))
	for i, t := range temps {
		out[i] = string(t)
	}
	return out
}

// MicroscopicCrossSection returns the (energy, xs) arrays for reaction at
// temperature. reaction may be an MT number (reaction.MT) or a name
// (string), resolved through package reaction. temperature may be empty
// only when exactly one temperature is loaded.
func (n *Nuclide) MicroscopicCrossSection(reactionArg any, temperature Temperature) ([]float64, []float64, error) {
	mt, err := resolveReactionArg(reactionArg)
	if err != nil {
		return nil, nil, err
	}
	t, err := n.resolveTemperature(temperature)
	if err != nil {
		return nil, nil, err
	}
	if err := n.ensureLoaded(t); err != nil {
		return nil, nil, err
	}
	table := n.Reactions[t]
	if rxn, ok := table[mt]; ok {
		return rxn.Energy, rxn.XS, nil
	}
	energy, xs, ok := n.synthesize(table, mt)
	if !ok {
		return nil, nil, &NotFoundError{
			Msg:       fmt.Sprintf("MT %s not present for nuclide %s at %s and not synthesisable", mt, n.ID, t),
			Available: mtsToStrings(table),
		}
	}
	return energy, xs, nil
}

// synthesize builds a requested MT's (energy, xs) by summing its
// children per the reaction package's sum rules, each child interpolated
// onto the union of the children's energy grids. Returns ok=false if mt
// has no sum rule or none of its children are present - requesting a
// child MT never transparently produces its parent.
func (n *Nuclide) synthesize(table map[reaction.MT]Reaction, mt reaction.MT) ([]float64, []float64, bool) {
	children, hasRule := reaction.Children(mt, n.Fissionable())
	if !hasRule {
		return nil, nil, false
	}
	var present []Reaction
	for _, child := range children {
		if rxn, ok := table[child]; ok {
			present = append(present, rxn)
			continue
		}
		if childEnergy, childXS, ok := n.synthesize(table, child); ok {
			present = append(present, Reaction{MT: child, Energy: childEnergy, XS: childXS})
		}
	}
	if len(present) == 0 {
		return nil, nil, false
	}
	grid := unionGrid(present)
	sum := make([]float64, len(grid))
	for _, rxn := range present {
		for i, e := range grid {
			sum[i] += Interpolate(rxn.Energy, rxn.XS, e)
		}
	}
	return grid, sum, true
}

// Interpolate evaluates a reaction's tabulated (energy, xs) at energy e:
// zero below the first point, flat above the last, lin-lin in between.
func Interpolate(energy, xs []float64, e float64) float64 {
	if len(energy) == 0 {
		return 0
	}
	if e < energy[0] {
		return 0
	}
	last := len(energy) - 1
	if e >= energy[last] {
		return xs[last]
	}
	i := sort.Search(len(energy), func(i int) bool { return energy[i] > e }) - 1
	if i < 0 {
		i = 0
	}
	if i >= last {
		return xs[last]
	}
	e0, e1 := energy[i], energy[i+1]
	x0, x1 := xs[i], xs[i+1]
	if e1 == e0 {
		return x0
	}
	frac := (e - e0) / (e1 - e0)
	return x0 + frac*(x1-x0)
}

// unionGrid merges the energy grids of a set of reactions into a sorted,
// deduplicated grid. Two consecutive points collapse when their relative
// distance is below 1e-12.
func unionGrid(reactions []Reaction) []float64 {
	var all []float64
	for _, rxn := range reactions {
		all = append(all, rxn.Energy...)
	}
	return DedupeSorted(all)
}

// DedupeSorted sorts values ascending and merges near-duplicates whose
// relative distance is below 1e-12.
func DedupeSorted(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	out := sorted[:1]
	for _, v := range sorted[1:] {
		last := out[len(out)-1]
		denom := absFloat(last)
		if denom == 0 {
			denom = 1
		}
		if (v-last)/denom < 1e-12 {
			continue
		}
		out = append(out, v)
	}
	return out
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func mtsToStrings(table map[reaction.MT]Reaction) []string {
	mts := make([]reaction.MT, 0, len(table))
	for mt := range table {
		mts = append(mts, mt)
	}
	sort.Slice(mts, func(i, j int) bool { return mts[i] < mts[j] })
	out := make([]string, len(mts))
	for i, mt := range mts {
		out[i] = mt.String()
	}
	return out
}

// resolveReactionArg accepts either a reaction.MT or a string name.
func resolveReactionArg(arg any) (reaction.MT, error) {
	switch v := arg.(type) {
	case reaction.MT:
		return v, nil
	case int:
		return reaction.MT(v), nil
	case string:
		return reaction.MTOf(v)
	default:
		return 0, &TypeError{Msg: fmt.Sprintf("reaction argument must be an MT or a name, got %T", arg)}
	}
}

// NotFoundError, AmbiguousError and TypeError mirror the root package's
// error taxonomy; duplicated here (rather than imported) to keep this
// package free of a dependency on the root package, which itself depends
// on nuclide.

type NotFoundError struct {
	Msg       string
	Available []string
}

func (e *NotFoundError) Error() string {
	if len(e.Available) == 0 {
		return "not found: " + e.Msg
	}
	return fmt.Sprintf("not found: %s (available: %v)", e.Msg, e.Available)
}

type AmbiguousError struct{ Msg string }

func (e *AmbiguousError) Error() string { return "ambiguous: " + e.Msg }

type TypeError struct{ Msg string }

func (e *TypeError) Error() string { return "type: " + e.Msg }
