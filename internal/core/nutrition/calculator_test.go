package nutrition

import "testing"

func floatPtr(v float64) *float64 { return &v }

func TestScaleFood_RecomputesCalories(t *testing.T) {
	// 儲存的 calories 999 與巨量營養素不符，必須捨棄並重新推算
	food := &Food{
		ID:      "f1",
		Name:    "Chicken breast",
		Serving: ServingSpec{Size: 100, Unit: "g"},
		Nutrients: NutrientProfile{
			Calories: 999,
			Protein:  20,
			Carbs:    0,
			Fat:      5,
		},
	}

	got, warnings := ScaleFood(food, 200, "g")
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if !almostEqual(got.Protein, 40) || !almostEqual(got.Carbs, 0) || !almostEqual(got.Fat, 10) {
		t.Fatalf("macros = %+v, want protein=40 carbs=0 fat=10", got)
	}
	if !almostEqual(got.Calories, 250) {
		t.Fatalf("calories = %v, want 250 (40*4 + 0*4 + 10*9)", got.Calories)
	}
}

func TestScaleFood_MissingFieldsStayMissing(t *testing.T) {
	food := &Food{
		ID:      "f2",
		Name:    "Olive oil",
		Serving: ServingSpec{Size: 1, Unit: "tbsp"},
		Nutrients: NutrientProfile{
			Protein: 0,
			Carbs:   0,
			Fat:     14,
			Sodium:  floatPtr(0.3),
		},
	}

	got, _ := ScaleFood(food, 2, "tbsp")
	if got.Fiber != nil || got.Sugar != nil || got.Cholesterol != nil {
		t.Fatalf("absent optional fields must stay absent: %+v", got)
	}
	if got.Sodium == nil || !almostEqual(*got.Sodium, 0.6) {
		t.Fatalf("sodium = %v, want 0.6", got.Sodium)
	}
	if got.Vitamins != nil || got.Minerals != nil {
		t.Fatalf("absent maps must stay absent: %+v", got)
	}
}

func TestScaleFood_ScalesMapsEntrywise(t *testing.T) {
	food := &Food{
		ID:      "f3",
		Name:    "Spinach",
		Serving: ServingSpec{Size: 100, Unit: "g"},
		Nutrients: NutrientProfile{
			Protein: 2.9,
			Carbs:   3.6,
			Fat:     0.4,
			Vitamins: map[string]float64{
				"A": 469,
				"C": 28,
			},
			Minerals: map[string]float64{
				"iron": 2.7,
			},
		},
	}

	got, _ := ScaleFood(food, 50, "g")
	if len(got.Vitamins) != 2 {
		t.Fatalf("vitamins keys = %v, want 2", got.Vitamins)
	}
	if !almostEqual(got.Vitamins["A"], 234.5) || !almostEqual(got.Vitamins["C"], 14) {
		t.Fatalf("vitamins = %v", got.Vitamins)
	}
	if !almostEqual(got.Minerals["iron"], 1.35) {
		t.Fatalf("minerals = %v", got.Minerals)
	}
}

func TestScaleFood_LowConfidenceConversionWarns(t *testing.T) {
	food := &Food{
		ID:      "f4",
		Name:    "Flour",
		Serving: ServingSpec{Size: 100, Unit: "g"},
		Nutrients: NutrientProfile{
			Protein: 10, Carbs: 76, Fat: 1,
		},
	}

	got, warnings := ScaleFood(food, 1, "cup")
	if len(warnings) != 1 || warnings[0].Code != WarnUnitFallback {
		t.Fatalf("expected one UNIT_FALLBACK warning, got %v", warnings)
	}
	if warnings[0].ItemID != "f4" {
		t.Fatalf("warning item id = %q, want f4", warnings[0].ItemID)
	}
	// 退路視 cup 與 g 等價：1/100 份
	if !almostEqual(got.Protein, 0.1) {
		t.Fatalf("protein = %v, want 0.1", got.Protein)
	}
}
