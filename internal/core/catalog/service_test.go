package catalog

import (
	"context"
	"testing"

	"nutrition-planner/internal/core/nutrition"
	"nutrition-planner/internal/pkg/common"
	"nutrition-planner/internal/store"
)

func newTestService() *Service {
	return NewService(store.NewMemoryStore())
}

func sampleFood(name string) *nutrition.Food {
	return &nutrition.Food{
		Name:     name,
		Category: "protein",
		Serving:  nutrition.ServingSpec{Size: 100, Unit: "g"},
		Nutrients: nutrition.NutrientProfile{
			Calories: 165, Protein: 31, Carbs: 0, Fat: 3.6,
		},
	}
}

func TestService_FoodLifecycle(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	created, err := s.CreateFood(ctx, sampleFood("Chicken breast"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Rev == "" {
		t.Fatalf("create must assign id and rev: %+v", created)
	}

	got, err := s.GetFood(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Chicken breast" || got.Rev != created.Rev {
		t.Fatalf("get mismatch: %+v", got)
	}

	got.Name = "Chicken breast, skinless"
	updated, err := s.UpdateFood(ctx, got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Rev == created.Rev {
		t.Fatal("update must advance revision")
	}

	// 舊版本再更新應衝突
	stale := sampleFood("Stale")
	stale.ID = created.ID
	stale.Rev = created.Rev
	if _, err := s.UpdateFood(ctx, stale); err != store.ErrRevisionMismatch {
		t.Fatalf("stale update: err = %v, want ErrRevisionMismatch", err)
	}

	if err := s.DeleteFood(ctx, created.ID, updated.Rev); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetFood(ctx, created.ID); err != store.ErrNotFound {
		t.Fatalf("after delete: err = %v, want ErrNotFound", err)
	}
}

func TestService_Validation(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	if _, err := s.CreateFood(ctx, &nutrition.Food{Name: " "}); !common.IsValidationError(err) {
		t.Fatalf("blank name: err = %v, want validation error", err)
	}

	bad := sampleFood("Egg")
	bad.Serving.Size = 0
	if _, err := s.CreateFood(ctx, bad); !common.IsValidationError(err) {
		t.Fatalf("zero serving: err = %v, want validation error", err)
	}

	if _, err := s.CreateRecipe(ctx, &nutrition.Recipe{Name: "Empty", Servings: 2}); !common.IsValidationError(err) {
		t.Fatalf("no ingredients: err = %v, want validation error", err)
	}

	if _, err := s.CreateMenu(ctx, &nutrition.Menu{
		Name:  "Bad",
		Items: []nutrition.MenuItem{{Type: "snack", ItemID: "x", Portions: 1}},
	}); !common.IsValidationError(err) {
		t.Fatalf("bad item type: err = %v, want validation error", err)
	}
}

func TestService_ImplementsNutritionSource(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	food, _ := s.CreateFood(ctx, sampleFood("Rice"))
	recipe, err := s.CreateRecipe(ctx, &nutrition.Recipe{
		Name:     "Plain rice",
		Servings: 2,
		Ingredients: []nutrition.RecipeIngredient{
			{FoodID: food.ID, Quantity: 200, Unit: "g"},
		},
	})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	var src nutrition.Source = s

	total, warnings := nutrition.RecipeNutrition(ctx, src, recipe)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if total.Protein != 62 {
		t.Fatalf("protein = %v, want 62", total.Protein)
	}

	if _, err := src.FoodByID(ctx, "missing"); err != store.ErrNotFound {
		t.Fatalf("missing food: err = %v, want ErrNotFound", err)
	}
}

func TestService_AllFoods(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	s.CreateFood(ctx, sampleFood("A"))
	s.CreateFood(ctx, sampleFood("B"))

	foods, err := s.AllFoods(ctx)
	if err != nil {
		t.Fatalf("all foods: %v", err)
	}
	if len(foods) != 2 {
		t.Fatalf("len = %d, want 2", len(foods))
	}
}
