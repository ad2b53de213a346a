package nutrition

import (
	"context"
	"fmt"
	"testing"
)

// fakeSource 測試用查詢來源
type fakeSource struct {
	foods   map[string]*Food
	recipes map[string]*Recipe
}

func (s *fakeSource) FoodByID(_ context.Context, id string) (*Food, error) {
	if f, ok := s.foods[id]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("food %q not found", id)
}

func (s *fakeSource) RecipeByID(_ context.Context, id string) (*Recipe, error) {
	if r, ok := s.recipes[id]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("recipe %q not found", id)
}

func testSource() *fakeSource {
	return &fakeSource{
		foods: map[string]*Food{
			"rice": {
				ID: "rice", Name: "White rice", Category: "grains",
				Serving: ServingSpec{Size: 100, Unit: "g"},
				Nutrients: NutrientProfile{
					Protein: 2.7, Carbs: 28, Fat: 0.3,
					Fiber:    floatPtr(0.4),
					Minerals: map[string]float64{"iron": 0.2},
				},
			},
			"chicken": {
				ID: "chicken", Name: "Chicken breast", Category: "protein",
				Serving: ServingSpec{Size: 100, Unit: "g"},
				Nutrients: NutrientProfile{
					Protein: 31, Carbs: 0, Fat: 3.6,
					Sodium:   floatPtr(74),
					Vitamins: map[string]float64{"B6": 0.6},
					Minerals: map[string]float64{"iron": 1.0},
				},
			},
		},
		recipes: map[string]*Recipe{},
	}
}

func profileEqual(a, b NutrientProfile) bool {
	if !almostEqual(a.Calories, b.Calories) || !almostEqual(a.Protein, b.Protein) ||
		!almostEqual(a.Carbs, b.Carbs) || !almostEqual(a.Fat, b.Fat) {
		return false
	}
	if !optionalEqual(a.Fiber, b.Fiber) || !optionalEqual(a.Sugar, b.Sugar) ||
		!optionalEqual(a.Sodium, b.Sodium) || !optionalEqual(a.Cholesterol, b.Cholesterol) {
		return false
	}
	return mapEqual(a.Vitamins, b.Vitamins) && mapEqual(a.Minerals, b.Minerals)
}

func optionalEqual(a, b *float64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || almostEqual(*a, *b)
}

func mapEqual(a, b map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if !almostEqual(b[k], v) {
			return false
		}
	}
	return true
}

func TestRecipeNutrition_Additivity(t *testing.T) {
	src := testSource()
	ctx := context.Background()

	ingA := RecipeIngredient{FoodID: "rice", Quantity: 200, Unit: "g"}
	ingB := RecipeIngredient{FoodID: "chicken", Quantity: 150, Unit: "g"}

	combined, warnings := RecipeNutrition(ctx, src, &Recipe{
		ID: "r1", Servings: 2, Ingredients: []RecipeIngredient{ingA, ingB},
	})
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	onlyA, _ := RecipeNutrition(ctx, src, &Recipe{ID: "ra", Servings: 1, Ingredients: []RecipeIngredient{ingA}})
	onlyB, _ := RecipeNutrition(ctx, src, &Recipe{ID: "rb", Servings: 1, Ingredients: []RecipeIngredient{ingB}})

	acc := newAccumulator()
	acc.add(onlyA)
	acc.add(onlyB)
	summed := acc.profile()

	if !profileEqual(combined, summed) {
		t.Fatalf("additivity violated:\ncombined = %+v\nsummed   = %+v", combined, summed)
	}

	// 兩種食材的鐵質應鍵合併相加
	if !almostEqual(combined.Minerals["iron"], 0.2*2+1.0*1.5) {
		t.Fatalf("iron = %v, want %v", combined.Minerals["iron"], 0.2*2+1.0*1.5)
	}
}

func TestRecipeNutrition_CalorieIdentity(t *testing.T) {
	src := testSource()
	total, _ := RecipeNutrition(context.Background(), src, &Recipe{
		ID: "r1", Servings: 4,
		Ingredients: []RecipeIngredient{
			{FoodID: "rice", Quantity: 300, Unit: "g"},
			{FoodID: "chicken", Quantity: 2, Unit: "serving"},
		},
	})
	want := total.Protein*AtwaterProtein + total.Carbs*AtwaterCarbs + total.Fat*AtwaterFat
	if !almostEqual(total.Calories, want) {
		t.Fatalf("calories = %v, want %v from macros", total.Calories, want)
	}
}

func TestRecipeNutritionPerServing_Scaling(t *testing.T) {
	src := testSource()
	ctx := context.Background()
	recipe := &Recipe{
		ID: "r1", Servings: 4,
		Ingredients: []RecipeIngredient{
			{FoodID: "rice", Quantity: 400, Unit: "g"},
			{FoodID: "chicken", Quantity: 300, Unit: "g"},
		},
	}

	total, _ := RecipeNutrition(ctx, src, recipe)
	perServing, warnings := RecipeNutritionPerServing(ctx, src, recipe)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	if !profileEqual(scaleProfile(perServing, 4), total) {
		t.Fatalf("perServing*servings != total:\nscaled = %+v\ntotal  = %+v",
			scaleProfile(perServing, 4), total)
	}
}

func TestRecipeNutritionPerServing_DefensiveServings(t *testing.T) {
	src := testSource()
	recipe := &Recipe{
		ID: "r1", Servings: 0,
		Ingredients: []RecipeIngredient{{FoodID: "rice", Quantity: 100, Unit: "g"}},
	}

	perServing, warnings := RecipeNutritionPerServing(context.Background(), src, recipe)
	found := false
	for _, w := range warnings {
		if w.Code == WarnInvalidServings {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected INVALID_SERVINGS warning, got %v", warnings)
	}
	// servings 視為 1，即總量不變
	if !almostEqual(perServing.Protein, 2.7) {
		t.Fatalf("protein = %v, want 2.7", perServing.Protein)
	}
}

func TestRecipeNutrition_SkipsUnresolvable(t *testing.T) {
	src := testSource()
	total, warnings := RecipeNutrition(context.Background(), src, &Recipe{
		ID: "r1", Servings: 1,
		Ingredients: []RecipeIngredient{
			{FoodID: "rice", Quantity: 100, Unit: "g"},
			{FoodID: "deleted-food", Quantity: 100, Unit: "g"},
		},
	})

	if len(warnings) != 1 || warnings[0].Code != WarnMissingFood {
		t.Fatalf("expected one MISSING_FOOD warning, got %v", warnings)
	}
	if warnings[0].ItemID != "deleted-food" {
		t.Fatalf("warning item id = %q", warnings[0].ItemID)
	}
	// 壞引用只略過自身，其餘照常累加
	if !almostEqual(total.Protein, 2.7) {
		t.Fatalf("protein = %v, want 2.7", total.Protein)
	}
}

func TestRecipeNutrition_StripsZeroOptionalFields(t *testing.T) {
	src := &fakeSource{
		foods: map[string]*Food{
			"water": {
				ID: "water", Name: "Water",
				Serving:   ServingSpec{Size: 100, Unit: "ml"},
				Nutrients: NutrientProfile{Fiber: floatPtr(0)},
			},
		},
	}

	total, _ := RecipeNutrition(context.Background(), src, &Recipe{
		ID: "r1", Servings: 1,
		Ingredients: []RecipeIngredient{{FoodID: "water", Quantity: 100, Unit: "ml"}},
	})

	if total.Fiber != nil {
		t.Fatalf("zero-sum fiber should be stripped, got %v", *total.Fiber)
	}
	if total.Vitamins != nil || total.Minerals != nil {
		t.Fatalf("empty maps should be stripped: %+v", total)
	}
}

func TestMenuNutrition_PortionEquivalence(t *testing.T) {
	src := testSource()
	ctx := context.Background()

	double, _ := MenuNutrition(ctx, src, &Menu{
		ID:    "m1",
		Items: []MenuItem{{Type: MenuItemFood, ItemID: "chicken", Portions: 2}},
	})
	twice, _ := MenuNutrition(ctx, src, &Menu{
		ID: "m2",
		Items: []MenuItem{
			{Type: MenuItemFood, ItemID: "chicken", Portions: 1},
			{Type: MenuItemFood, ItemID: "chicken", Portions: 1},
		},
	})

	if !profileEqual(double, twice) {
		t.Fatalf("portions=2 != 2x portions=1:\n%+v\n%+v", double, twice)
	}
}

func TestMenuNutrition_RecipePortionsArePerServing(t *testing.T) {
	src := testSource()
	src.recipes["r1"] = &Recipe{
		ID: "r1", Servings: 4,
		Ingredients: []RecipeIngredient{{FoodID: "rice", Quantity: 400, Unit: "g"}},
	}
	ctx := context.Background()

	menuTotal, warnings := MenuNutrition(ctx, src, &Menu{
		ID:    "m1",
		Items: []MenuItem{{Type: MenuItemRecipe, ItemID: "r1", Portions: 2}},
	})
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	// 2 份單人份 = 批量的 2/4
	batch, _ := RecipeNutrition(ctx, src, src.recipes["r1"])
	if !almostEqual(menuTotal.Protein, batch.Protein/2) {
		t.Fatalf("protein = %v, want %v", menuTotal.Protein, batch.Protein/2)
	}
}

func TestMenuNutrition_SkipsUnresolvableItems(t *testing.T) {
	src := testSource()
	total, warnings := MenuNutrition(context.Background(), src, &Menu{
		ID: "m1",
		Items: []MenuItem{
			{Type: MenuItemFood, ItemID: "chicken", Portions: 1},
			{Type: MenuItemRecipe, ItemID: "ghost", Portions: 1},
			{Type: "snack", ItemID: "chips", Portions: 1},
		},
	})

	codes := map[WarningCode]bool{}
	for _, w := range warnings {
		codes[w.Code] = true
	}
	if !codes[WarnMissingRecipe] || !codes[WarnUnknownItemType] {
		t.Fatalf("expected MISSING_RECIPE and UNKNOWN_ITEM_TYPE warnings, got %v", warnings)
	}
	if !almostEqual(total.Protein, 31) {
		t.Fatalf("protein = %v, want 31", total.Protein)
	}
}
