/*
Package nuclidejson parses the evaluated-nuclear-data JSON document: a
per-nuclide object carrying element/Z/A/N metadata and, per temperature
label, a map of MT number to (energy, cross_section) arrays.

This package is the parser boundary the rest of the library is built
against - it owns the wire format, nothing else does, and hands the
loader a clean in-memory struct instead of raw decoded JSON.

Two on-disk layouts are accepted: the flat layout
(`doc[T][mt] = {energy, cross_section}`) and a historical nested layout
(`doc.incident_particle.neutron[T][mt] = {...}`).
*/
package nuclidejson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

// ReactionEntry is one MT's tabulated (energy, cross_section) pair at a
// single temperature, as laid out on disk.
type ReactionEntry struct {
	Energy       []float64 `json:"energy"`
	CrossSection []float64 `json:"cross_section"`
	ThresholdIdx *int      `json:"threshold_idx,omitempty"`
}

// TemperatureTable maps a stringified MT number to its reaction entry.
type TemperatureTable map[string]ReactionEntry

// Document is the decoded form of one nuclide's evaluated data file.
type Document struct {
	Element       string                      `json:"element"`
	AtomicSymbol  string                      `json:"atomic_symbol"`
	AtomicNumber  int                         `json:"atomic_number"`
	MassNumber    int                         `json:"mass_number"`
	NeutronNumber int                         `json:"neutron_number"`
	AtomicMass    float64                     `json:"atomic_mass"`
	Temperatures  map[string]TemperatureTable `json:"-"`
}

// fixedKeys are the Document fields that are not temperature labels, used
// to separate metadata from the temperature sections when decoding the
// flat layout.
var fixedKeys = map[string]bool{
	"element":           true,
	"atomic_symbol":     true,
	"atomic_number":     true,
	"mass_number":       true,
	"neutron_number":    true,
	"atomic_mass":       true,
	"incident_particle": true,
}

type legacyWrapper struct {
	IncidentParticle struct {
		Neutron map[string]TemperatureTable `json:"neutron"`
	} `json:"incident_particle"`
}

// UnmarshalJSON implements the dual-layout decode: known metadata keys are
// bound directly, every other top-level key is treated as a temperature
// label unless the document uses the legacy
// incident_particle.neutron.<T> nesting.
func (d *Document) UnmarshalJSON(data []byte) error {
	type metadata struct {
		Element       string  `json:"element"`
		AtomicSymbol  string  `json:"atomic_symbol"`
		AtomicNumber  int     `json:"atomic_number"`
		MassNumber    int     `json:"mass_number"`
		NeutronNumber int     `json:"neutron_number"`
		AtomicMass    float64 `json:"atomic_mass"`
	}
	var meta metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("nuclidejson: decoding metadata: %w", err)
	}
	d.Element = meta.Element
	d.AtomicSymbol = meta.AtomicSymbol
	d.AtomicNumber = meta.AtomicNumber
	d.MassNumber = meta.MassNumber
	d.NeutronNumber = meta.NeutronNumber
	d.AtomicMass = meta.AtomicMass
	d.Temperatures = make(map[string]TemperatureTable)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("nuclidejson: decoding document: %w", err)
	}

	if legacyRaw, ok := raw["incident_particle"]; ok {
		var legacy legacyWrapper
		if err := json.Unmarshal(append([]byte(`{"incident_particle":`), append(legacyRaw, '}')...), &legacy); err != nil {
			return fmt.Errorf("nuclidejson: decoding legacy incident_particle section: %w", err)
		}
		d.Temperatures = legacy.IncidentParticle.Neutron
		return nil
	}

	for key, value := range raw {
		if fixedKeys[key] {
			continue
		}
		var table TemperatureTable
		if err := json.Unmarshal(value, &table); err != nil {
			return fmt.Errorf("nuclidejson: decoding temperature section %q: %w", key, err)
		}
		d.Temperatures[key] = table
	}
	return nil
}

// SortedTemperatures returns the document's temperature labels in
// ascending numeric order.
func (d Document) SortedTemperatures() []string {
	labels := make([]string, 0, len(d.Temperatures))
	for label := range d.Temperatures {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, errA := strconv.Atoi(labels[i])
		b, errB := strconv.Atoi(labels[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return labels[i] < labels[j]
	})
	return labels
}

// Parse decodes a Document from r.
func Parse(r io.Reader) (Document, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return Document{}, fmt.Errorf("nuclidejson: reading source: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		return Document{}, fmt.Errorf("nuclidejson: %w", err)
	}
	return doc, nil
}

// Read parses a Document from a file on disk.
func Read(path string) (Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("nuclidejson: opening %s: %w", path, err)
	}
	defer file.Close()
	return Parse(file)
}
