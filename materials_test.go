package materials

import "testing"

func TestMaterialsBatchLoadMinimalTemperatureSet(t *testing.T) {
	configureTestSources(t)

	a := NewMaterial()
	_ = a.AddNuclide("Be9", 1.0)
	a.SetTemperature("294")

	b := NewMaterial()
	_ = b.AddNuclide("Be9", 1.0)
	b.SetTemperature("294")

	ms := NewMaterials(a, b)
	if err := ms.ReadNuclidesFromJSON(nil); err != nil {
		t.Fatalf("ReadNuclidesFromJSON: %v", err)
	}

	be9, ok := a.nuclides["Be9"]
	if !ok {
		t.Fatal("material a should hold a resolved Be9 handle after the batch load")
	}
	if len(be9.LoadedTemperatures) != 1 || be9.LoadedTemperatures[0] != "294" {
		t.Errorf("Be9 LoadedTemperatures = %v, want exactly [\"294\"] since both materials only demanded 294", be9.LoadedTemperatures)
	}
	if len(be9.AvailableTemperatures) != 2 {
		t.Errorf("Be9 AvailableTemperatures = %v, want 2 entries (294, 300)", be9.AvailableTemperatures)
	}
	if bHandle := b.nuclides["Be9"]; bHandle != be9 {
		t.Error("both materials should share the same resolved Be9 handle after a batch load")
	}
}

func TestMaterialsBatchLoadUnionAcrossDifferentTemperatures(t *testing.T) {
	configureTestSources(t)

	a := NewMaterial()
	_ = a.AddNuclide("Be9", 1.0)
	a.SetTemperature("294")

	b := NewMaterial()
	_ = b.AddNuclide("Be9", 1.0)
	b.SetTemperature("300")

	ms := NewMaterials(a, b)
	if err := ms.ReadNuclidesFromJSON(nil); err != nil {
		t.Fatalf("ReadNuclidesFromJSON: %v", err)
	}

	be9 := a.nuclides["Be9"]
	loaded := map[string]bool{}
	for _, t := range be9.LoadedTemperatures {
		loaded[string(t)] = true
	}
	if !loaded["294"] || !loaded["300"] {
		t.Errorf("Be9 LoadedTemperatures = %v, want both 294 and 300 since the members demand different temperatures", be9.LoadedTemperatures)
	}

	// Each material still only evaluates at its own declared temperature.
	gridA, err := a.UnifiedEnergyGridNeutron()
	if err != nil {
		t.Fatalf("a.UnifiedEnergyGridNeutron: %v", err)
	}
	gridB, err := b.UnifiedEnergyGridNeutron()
	if err != nil {
		t.Fatalf("b.UnifiedEnergyGridNeutron: %v", err)
	}
	if len(gridA) == 0 || len(gridB) == 0 {
		t.Fatal("both materials should have a non-empty unified grid")
	}
}

func TestMaterialsAppendAndIndex(t *testing.T) {
	ms := NewMaterials()
	if ms.Len() != 0 {
		t.Fatalf("new Materials should start empty, got len %d", ms.Len())
	}
	a := NewMaterial()
	ms.Append(a)
	if ms.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", ms.Len())
	}
	if ms.At(0) != a {
		t.Error("At(0) should return the material just appended")
	}
}

func TestMaterialsReadNuclidesFromJSONAppliesConfigValue(t *testing.T) {
	t.Cleanup(ClearNuclideCache)
	a := NewMaterial()
	_ = a.AddNuclide("Li6", 1.0)
	ms := NewMaterials(a)
	if err := ms.ReadNuclidesFromJSON(map[string]string{"Li6": "testdata/Li6.json"}); err != nil {
		t.Fatalf("ReadNuclidesFromJSON: %v", err)
	}
	n, ok := a.nuclides["Li6"]
	if !ok || n.ID != "Li6" {
		t.Fatalf("expected Li6 to be resolved via the per-call config value, got %+v", n)
	}
}
