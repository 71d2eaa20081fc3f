package rng

import "testing"

func TestSameSeedProducesSameStream(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 10; i++ {
		va, vb := a.Float64(), b.Float64()
		if va != vb {
			t.Fatalf("draw %d diverged: %v != %v", i, va, vb)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	same := true
	for i := 0; i < 5; i++ {
		if a.Float64() != b.Float64() {
			same = false
		}
	}
	if same {
		t.Fatal("seeds 1 and 2 produced identical streams; expected divergence")
	}
}

func TestFloat64IsInUnitInterval(t *testing.T) {
	s := New(7)
	for i := 0; i < 1000; i++ {
		v := s.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("draw %d = %v, want [0,1)", i, v)
		}
	}
}
