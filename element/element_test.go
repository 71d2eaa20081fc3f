package element

import "testing"

func TestLookupLithiumIsotopes(t *testing.T) {
	el, err := Lookup("Li")
	if err != nil {
		t.Fatalf("Lookup(Li): %v", err)
	}
	if el.Name != "lithium" || el.AtomicNumber != 3 {
		t.Errorf("Lookup(Li) = %+v, want name lithium, Z 3", el)
	}
	isotopes := el.Isotopes()
	want := map[string]float64{"Li6": 0.07589, "Li7": 0.92411}
	if len(isotopes) != len(want) {
		t.Fatalf("Isotopes() = %v, want %v", isotopes, want)
	}
	for id, frac := range want {
		got, ok := isotopes[id]
		if !ok {
			t.Errorf("Isotopes() missing %s", id)
			continue
		}
		if diff := frac - got; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Isotopes()[%s] = %v, want %v", id, got, frac)
		}
	}
}

func TestLookupIsCaseInsensitiveAndAcceptsName(t *testing.T) {
	bySymbol, err := Lookup("li")
	if err != nil {
		t.Fatalf("Lookup(li): %v", err)
	}
	byName, err := Lookup("Lithium")
	if err != nil {
		t.Fatalf("Lookup(Lithium): %v", err)
	}
	if bySymbol.AtomicNumber != byName.AtomicNumber {
		t.Errorf("Lookup by symbol and by name disagree: %+v vs %+v", bySymbol, byName)
	}
}

func TestIsotopeFractionsSumToOne(t *testing.T) {
	for _, symbol := range Symbols() {
		el, err := Lookup(symbol)
		if err != nil {
			t.Fatalf("Lookup(%s): %v", symbol, err)
		}
		sum := 0.0
		for _, frac := range el.Isotopes() {
			sum += frac
		}
		if sum < 0.999 || sum > 1.001 {
			t.Errorf("%s isotope fractions sum to %v, want ~1", symbol, sum)
		}
	}
}

func TestLookupUnknownElement(t *testing.T) {
	if _, err := Lookup("Unobtainium"); err == nil {
		t.Fatal("expected an error for an unrecognised element")
	}
}

func TestIsotopesReturnsACopy(t *testing.T) {
	el, err := Lookup("Li")
	if err != nil {
		t.Fatalf("Lookup(Li): %v", err)
	}
	isotopes := el.Isotopes()
	isotopes["Li6"] = 999
	again := el.Isotopes()
	if again["Li6"] == 999 {
		t.Error("Isotopes() leaked a mutable reference to internal state")
	}
}
