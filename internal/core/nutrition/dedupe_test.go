package nutrition

import "testing"

func TestFindBestMatch_NutritionixIDShortCircuits(t *testing.T) {
	candidates := []*Food{
		{ID: "f1", Name: "Completely different name", NutritionixID: "nix123",
			Nutrients: NutrientProfile{Calories: 500, Protein: 40, Carbs: 10, Fat: 30}},
	}
	proposed := ProposedIngredient{
		Name:          "Tomato",
		NutritionixID: "NIX123",
		Nutrients:     NutrientProfile{Calories: 18, Protein: 0.9, Carbs: 3.9, Fat: 0.2},
	}

	got := FindBestMatch(candidates, proposed)
	if got == nil || got.ID != "f1" {
		t.Fatalf("exact nutritionixId must match regardless of name/nutrients, got %v", got)
	}
}

func TestFindBestMatch_CommonName(t *testing.T) {
	candidates := []*Food{
		{ID: "f1", Name: "Roma tomatoes", CommonName: "tomato"},
		{ID: "f2", Name: "Cherry tomatoes", CommonName: "cherry tomato"},
	}
	got := FindBestMatch(candidates, ProposedIngredient{Name: "anything", CommonName: "Cherry Tomato"})
	if got == nil || got.ID != "f2" {
		t.Fatalf("commonName match failed, got %v", got)
	}
}

func TestFindBestMatch_NormalizedTokenEquality(t *testing.T) {
	candidates := []*Food{
		{ID: "f1", Name: "Tomato"},
	}
	got := FindBestMatch(candidates, ProposedIngredient{Name: "Tomatoes, diced"})
	if got == nil || got.ID != "f1" {
		t.Fatalf("normalized identical names must match, got %v", got)
	}

	got = FindBestMatch(candidates, ProposedIngredient{Name: "Fresh Tomato (whole)"})
	if got == nil || got.ID != "f1" {
		t.Fatalf("stopword/punctuation-normalized identical names must match, got %v", got)
	}
}

func TestFindBestMatch_DissimilarReturnsNil(t *testing.T) {
	candidates := []*Food{
		{ID: "f1", Name: "Tomato", Category: "vegetables",
			Nutrients: NutrientProfile{Calories: 18, Protein: 0.9, Carbs: 3.9, Fat: 0.2}},
	}
	got := FindBestMatch(candidates, ProposedIngredient{
		Name:      "Potato",
		Category:  "starches",
		Nutrients: NutrientProfile{Calories: 77, Protein: 2, Carbs: 17, Fat: 0.1},
	})
	if got != nil {
		t.Fatalf("dissimilar foods must not match, got %v", got.ID)
	}
}

func TestFindBestMatch_ScoreBonusesReachThreshold(t *testing.T) {
	// Jaccard 1/2 = 0.5，不足門檻；加上營養(0.2)與分類(0.1)加分後 0.8 通過
	candidate := &Food{
		ID: "f1", Name: "Chicken breast", Category: "protein",
		Nutrients: NutrientProfile{Calories: 165, Protein: 31, Carbs: 0, Fat: 3.6},
	}
	proposed := ProposedIngredient{
		Name:      "Chicken",
		Category:  "Protein",
		Nutrients: NutrientProfile{Calories: 160, Protein: 30, Carbs: 0, Fat: 3.5},
	}
	if got := FindBestMatch([]*Food{candidate}, proposed); got == nil {
		t.Fatal("bonuses should lift the score over the threshold")
	}

	// 同名但營養差距大、分類不同：0.5 不足以通過
	farOff := ProposedIngredient{
		Name:      "Chicken",
		Category:  "poultry",
		Nutrients: NutrientProfile{Calories: 500, Protein: 10, Carbs: 50, Fat: 20},
	}
	if got := FindBestMatch([]*Food{candidate}, farOff); got != nil {
		t.Fatalf("score below threshold must return nil, got %v", got.ID)
	}
}

func TestFindBestMatch_FirstMaximumWins(t *testing.T) {
	shared := NutrientProfile{Calories: 100, Protein: 10, Carbs: 5, Fat: 4}
	candidates := []*Food{
		{ID: "first", Name: "Brown rice flour", Category: "grains", Nutrients: shared},
		{ID: "second", Name: "Brown rice flour", Category: "grains", Nutrients: shared},
	}
	got := FindBestMatch(candidates, ProposedIngredient{
		Name: "Brown rice flour mix", Category: "grains", Nutrients: shared,
	})
	if got == nil || got.ID != "first" {
		t.Fatalf("ties must keep the first maximum, got %v", got)
	}
}

func TestJaccard_EmptySetsAreZero(t *testing.T) {
	if s := jaccard(map[string]bool{}, map[string]bool{}); s != 0 {
		t.Fatalf("0/0 jaccard = %v, want 0", s)
	}
}

func TestWithinTolerance(t *testing.T) {
	for _, tc := range []struct {
		a, b float64
		want bool
	}{
		{0, 0, true},
		{100, 105, true},
		{100, 111, true}, // 11/111 ≈ 0.099，恰在容差內
		{100, 112, false},
		{0, 5, false},
		{31, 30, true},
	} {
		if got := withinTolerance(tc.a, tc.b); got != tc.want {
			t.Fatalf("withinTolerance(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
