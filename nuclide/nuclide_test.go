package nuclide

import (
	"testing"

	"github.com/openneutronics/materials/reaction"
)

func TestInterpolateZeroBelowThresholdFlatAboveLastLinearBetween(t *testing.T) {
	energy := []float64{10, 20, 30}
	xs := []float64{1.0, 2.0, 4.0}

	if v := Interpolate(energy, xs, 5); v != 0 {
		t.Errorf("below threshold: Interpolate = %v, want 0", v)
	}
	if v := Interpolate(energy, xs, 100); v != 4.0 {
		t.Errorf("above last point: Interpolate = %v, want 4.0 (flat)", v)
	}
	if v := Interpolate(energy, xs, 30); v != 4.0 {
		t.Errorf("at last point: Interpolate = %v, want 4.0", v)
	}
	if v := Interpolate(energy, xs, 15); v != 1.5 {
		t.Errorf("midpoint: Interpolate = %v, want 1.5", v)
	}
}

func TestDedupeSortedMergesNearDuplicates(t *testing.T) {
	values := []float64{3, 1, 2, 1 + 1e-14, 5}
	got := DedupeSorted(values)
	want := []float64{1, 2, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("DedupeSorted(%v) = %v, want %v", values, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DedupeSorted(%v)[%d] = %v, want %v", values, i, got[i], want[i])
		}
	}
}

func testLi6() *Nuclide {
	return &Nuclide{
		ID:                    "Li6",
		AtomicMass:            6.015122887,
		AvailableTemperatures: []Temperature{"294"},
		LoadedTemperatures:    []Temperature{"294"},
		Reactions: map[Temperature]map[reaction.MT]Reaction{
			"294": {
				reaction.Elastic: {MT: reaction.Elastic, Energy: []float64{1, 1e7}, XS: []float64{5, 1}},
				reaction.N2N:     {MT: reaction.N2N, Energy: []float64{5e6, 1.4e7}, XS: []float64{0, 0.15}},
				reaction.NGamma:  {MT: reaction.NGamma, Energy: []float64{1, 1.4e7}, XS: []float64{0.5, 0.02}},
			},
		},
	}
}

func TestMicroscopicCrossSectionDirectReaction(t *testing.T) {
	n := testLi6()
	energy, xs, err := n.MicroscopicCrossSection(reaction.Elastic, "294")
	if err != nil {
		t.Fatalf("MicroscopicCrossSection(Elastic): %v", err)
	}
	if len(energy) != 2 || xs[0] != 5 {
		t.Errorf("MicroscopicCrossSection(Elastic) = (%v, %v), want the tabulated reaction", energy, xs)
	}
}

func TestMicroscopicCrossSectionSynthesisesNonelastic(t *testing.T) {
	n := testLi6()
	energy, xs, err := n.MicroscopicCrossSection(reaction.Nonelastic, "294")
	if err != nil {
		t.Fatalf("MicroscopicCrossSection(Nonelastic): %v", err)
	}
	at14MeV := Interpolate(energy, xs, 1.4e7)
	// MT 16 (0.15) + MT 102 (0.02) at 14 MeV, the nonelastic sum rule's
	// direct children for this fixture.
	want := 0.17
	if diff := at14MeV - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("synthesised nonelastic at 14 MeV = %v, want %v", at14MeV, want)
	}
}

func TestMicroscopicCrossSectionTotalIsNeverSynthesised(t *testing.T) {
	n := testLi6()
	if _, _, err := n.MicroscopicCrossSection(reaction.Total, "294"); err == nil {
		t.Fatal("MT 1 (total) has no sum rule and is absent from the fixture; expected a not-found error")
	}
}

func TestMicroscopicCrossSectionUnknownMT(t *testing.T) {
	n := testLi6()
	if _, _, err := n.MicroscopicCrossSection(reaction.MT(9999), "294"); err == nil {
		t.Fatal("expected a not-found error for an MT with no data and no sum rule")
	}
}

func TestResolveTemperatureOmittedSingleLoad(t *testing.T) {
	n := testLi6()
	_, _, err := n.MicroscopicCrossSection(reaction.Elastic, "")
	if err != nil {
		t.Fatalf("omitted temperature with exactly one loaded should resolve: %v", err)
	}
}

func TestResolveTemperatureOmittedAmbiguous(t *testing.T) {
	n := testLi6()
	n.Reactions["300"] = n.Reactions["294"]
	n.LoadedTemperatures = []Temperature{"294", "300"}
	if _, _, err := n.MicroscopicCrossSection(reaction.Elastic, ""); err == nil {
		t.Fatal("omitted temperature with two loaded must be ambiguous")
	} else if _, ok := err.(*AmbiguousError); !ok {
		t.Fatalf("expected *AmbiguousError, got %T: %v", err, err)
	}
}

func TestFissionable(t *testing.T) {
	n := testLi6()
	if n.Fissionable() {
		t.Error("Li6 fixture carries no fission-like MT, should not be fissionable")
	}
	n.Reactions["294"][reaction.Fission] = Reaction{MT: reaction.Fission, Energy: []float64{1}, XS: []float64{0.5}}
	if !n.Fissionable() {
		t.Error("nuclide with non-zero MT 18 data should be fissionable")
	}
}

func TestReactionMTsUnionAcrossTemperatures(t *testing.T) {
	n := testLi6()
	mts := n.ReactionMTs()
	want := map[reaction.MT]bool{reaction.Elastic: true, reaction.N2N: true, reaction.NGamma: true}
	if len(mts) != len(want) {
		t.Fatalf("ReactionMTs() = %v, want %v", mts, want)
	}
	for _, mt := range mts {
		if !want[mt] {
			t.Errorf("ReactionMTs() included unexpected MT %v", mt)
		}
	}
}
