package reaction

import "testing"

func TestMTOfAndNameOf(t *testing.T) {
	cases := []struct {
		name string
		mt   MT
	}{
		{"total", Total},
		{"elastic", Elastic},
		{"nonelastic", Nonelastic},
		{"(n,2n)", N2N},
		{"n2n", N2N},
		{"(n,gamma)", NGamma},
		{"capture", NGamma},
		{"(n,a)", NAlpha},
		{"(n,alpha)", NAlpha},
	}
	for _, c := range cases {
		got, err := MTOf(c.name)
		if err != nil {
			t.Fatalf("MTOf(%q): %v", c.name, err)
		}
		if got != c.mt {
			t.Errorf("MTOf(%q) = %d, want %d", c.name, got, c.mt)
		}
	}
}

func TestMTOfUnknown(t *testing.T) {
	if _, err := MTOf("not-a-reaction"); err == nil {
		t.Fatal("expected an error for an unrecognised reaction name")
	}
}

func TestInelasticLevelNames(t *testing.T) {
	name := NameOf(InelasticLevelLow)
	if name != "inelastic-level-1" {
		t.Errorf("NameOf(51) = %q, want inelastic-level-1", name)
	}
	mt, err := MTOf("inelastic-level-1")
	if err != nil || mt != InelasticLevelLow {
		t.Errorf("MTOf(inelastic-level-1) = (%d, %v), want (51, nil)", mt, err)
	}
}

func TestChildrenNonelasticIncludesMT24ButNotMT4DoesNot(t *testing.T) {
	children, ok := Children(Nonelastic, false)
	if !ok {
		t.Fatal("Nonelastic should have a sum rule")
	}
	if !containsMT(children, N2NAlpha) {
		t.Errorf("Nonelastic children %v should include MT 24", children)
	}

	inelastic, ok := Children(InelasticSum, false)
	if !ok {
		t.Fatal("InelasticSum should have a sum rule")
	}
	if containsMT(inelastic, N2NAlpha) {
		t.Errorf("InelasticSum children %v must not also include MT 24 (would double count)", inelastic)
	}
}

func TestChildrenAbsorptionFoldsInFissionOnlyWhenFissionable(t *testing.T) {
	nonFissionable, _ := Children(Absorption, false)
	if containsMT(nonFissionable, Fission) {
		t.Errorf("non-fissionable Absorption children should not include Fission: %v", nonFissionable)
	}
	fissionable, _ := Children(Absorption, true)
	if !containsMT(fissionable, Fission) {
		t.Errorf("fissionable Absorption children should include Fission: %v", fissionable)
	}
}

func TestChildrenTotalHasNoSumRule(t *testing.T) {
	if _, ok := Children(Total, false); ok {
		t.Error("Total (MT 1) must never be reported as synthesisable")
	}
}

func TestIsFissionLike(t *testing.T) {
	for _, mt := range FissionLike {
		if !IsFissionLike(mt) {
			t.Errorf("IsFissionLike(%d) = false, want true", mt)
		}
	}
	if IsFissionLike(Elastic) {
		t.Error("IsFissionLike(Elastic) = true, want false")
	}
}

func containsMT(mts []MT, target MT) bool {
	for _, mt := range mts {
		if mt == target {
			return true
		}
	}
	return false
}
