package nuclidejson

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pmezard/go-difflib/difflib"
)

const flatDoc = `{
  "element": "lithium",
  "atomic_symbol": "Li",
  "atomic_number": 3,
  "mass_number": 6,
  "neutron_number": 3,
  "atomic_mass": 6.015122887,
  "294": {
    "2": {"energy": [1.0, 2.0], "cross_section": [1.5, 1.2]}
  }
}`

const legacyDoc = `{
  "element": "lithium",
  "atomic_symbol": "Li",
  "atomic_number": 3,
  "mass_number": 6,
  "neutron_number": 3,
  "atomic_mass": 6.015122887,
  "incident_particle": {
    "neutron": {
      "294": {
        "2": {"energy": [1.0, 2.0], "cross_section": [1.5, 1.2]}
      }
    }
  }
}`

func TestParseFlatLayout(t *testing.T) {
	doc, err := Parse(strings.NewReader(flatDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	assertLi6Doc(t, doc)
}

func TestParseLegacyNestedLayout(t *testing.T) {
	doc, err := Parse(strings.NewReader(legacyDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	assertLi6Doc(t, doc)
}

func assertLi6Doc(t *testing.T, doc Document) {
	t.Helper()
	if doc.AtomicSymbol != "Li" || doc.MassNumber != 6 {
		t.Fatalf("decoded metadata = %+v, want Li6", doc)
	}
	table, ok := doc.Temperatures["294"]
	if !ok {
		t.Fatalf("Temperatures = %v, want a 294 entry", doc.Temperatures)
	}
	entry, ok := table["2"]
	if !ok {
		t.Fatalf("temperature 294 table = %v, want an MT 2 entry", table)
	}
	if len(entry.Energy) != 2 || entry.Energy[1] != 2.0 {
		t.Errorf("MT 2 energy = %v, want [1.0, 2.0]", entry.Energy)
	}
}

func TestFlatAndLegacyLayoutsProduceIdenticalDocuments(t *testing.T) {
	flat, err := Parse(strings.NewReader(flatDoc))
	if err != nil {
		t.Fatalf("Parse(flatDoc): %v", err)
	}
	legacy, err := Parse(strings.NewReader(legacyDoc))
	if err != nil {
		t.Fatalf("Parse(legacyDoc): %v", err)
	}
	if diff := cmp.Diff(flat, legacy); diff != "" {
		rawDiff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(flatDoc),
			B:        difflib.SplitLines(legacyDoc),
			FromFile: "flat layout",
			ToFile:   "legacy nested layout",
			Context:  3,
		}
		rawDiffText, _ := difflib.GetUnifiedDiffString(rawDiff)
		t.Errorf("flat and legacy layouts decoded to different Documents (-flat +legacy):\n%s\nsource text diff:\n%s", diff, rawDiffText)
	}
}

func TestSortedTemperaturesNumericOrder(t *testing.T) {
	doc, err := Parse(strings.NewReader(`{
		"element": "beryllium", "atomic_symbol": "Be", "atomic_number": 4,
		"mass_number": 9, "neutron_number": 5, "atomic_mass": 9.012183,
		"1200": {}, "294": {}, "300": {}
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := doc.SortedTemperatures()
	want := []string{"294", "300", "1200"}
	if len(got) != len(want) {
		t.Fatalf("SortedTemperatures() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SortedTemperatures()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := Parse(strings.NewReader("{not json")); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}
