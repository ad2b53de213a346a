package ingest

import (
	"context"
	"strings"

	"nutrition-planner/internal/core/catalog"
	"nutrition-planner/internal/core/lookup"
	"nutrition-planner/internal/core/nutrition"
	"nutrition-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// IngredientResolution 單一食材的歸戶結果
type IngredientResolution struct {
	Name    string `json:"name"`
	FoodID  string `json:"foodId"`
	Created bool   `json:"created"` // false 表示比對到既有食物
}

// Report 匯入結果
type Report struct {
	Recipe      *nutrition.Recipe      `json:"recipe"`
	Resolutions []IngredientResolution `json:"resolutions"`
	Warnings    []nutrition.Warning    `json:"warnings,omitempty"`
}

// Service 把外部來源的食譜（LLM 生成或呼叫端提供）歸戶進目錄：
// 先對既有食物做去重比對，配不到的才建立新食物，最後存入食譜
type Service struct {
	catalog   *catalog.Service
	generator *Generator
	lookup    *lookup.Client
}

// NewService 創建匯入服務
func NewService(catalogService *catalog.Service, generator *Generator, lookupClient *lookup.Client) *Service {
	return &Service{
		catalog:   catalogService,
		generator: generator,
		lookup:    lookupClient,
	}
}

// GenerateAndIngest 生成食譜並匯入目錄
func (s *Service) GenerateAndIngest(ctx context.Context, req GenerateRequest) (*Report, error) {
	generated, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.Ingest(ctx, generated)
}

// Ingest 匯入一份食譜
// 候選清單在整批開始時讀取一次，批內新建的食物再逐一補進候選，
// 讓同一批裡重複出現的食材也能互相配對
func (s *Service) Ingest(ctx context.Context, generated *GeneratedRecipe) (*Report, error) {
	if err := validateGenerated(generated); err != nil {
		return nil, err
	}

	candidates, err := s.catalog.AllFoods(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	recipe := &nutrition.Recipe{
		Name:         generated.Name,
		Description:  generated.Description,
		Instructions: generated.Instructions,
		Servings:     generated.Servings,
		PrepTime:     generated.PrepTime,
		CookTime:     generated.CookTime,
		Tags:         generated.Tags,
	}

	for _, ing := range generated.Ingredients {
		food, created, warns, err := s.resolveIngredient(ctx, candidates, ing)
		if err != nil {
			return nil, err
		}
		report.Warnings = append(report.Warnings, warns...)
		if created {
			candidates = append(candidates, food)
		}

		report.Resolutions = append(report.Resolutions, IngredientResolution{
			Name:    ing.Name,
			FoodID:  food.ID,
			Created: created,
		})
		recipe.Ingredients = append(recipe.Ingredients, nutrition.RecipeIngredient{
			FoodID:   food.ID,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		})
	}

	stored, err := s.catalog.CreateRecipe(ctx, recipe)
	if err != nil {
		return nil, err
	}
	report.Recipe = stored

	common.LogInfo("食譜匯入完成",
		zap.String("recipe_id", stored.ID),
		zap.String("name", stored.Name),
		zap.Int("ingredients", len(stored.Ingredients)),
	)
	return report, nil
}

// resolveIngredient 把一項食材對應到目錄中的食物；配不到就建立
func (s *Service) resolveIngredient(ctx context.Context, candidates []*nutrition.Food, ing GeneratedIngredient) (*nutrition.Food, bool, []nutrition.Warning, error) {
	proposed := nutrition.ProposedIngredient{
		Name:     ing.Name,
		Category: ing.Category,
	}
	if ing.Nutrients != nil {
		proposed.Nutrients = *ing.Nutrients
	}

	if match := nutrition.FindBestMatch(candidates, proposed); match != nil {
		common.LogInfo("食材比對到既有食物",
			zap.String("ingredient", ing.Name),
			zap.String("food_id", match.ID),
			zap.String("food_name", match.Name),
		)
		return match, false, nil, nil
	}

	food, warns := s.buildFood(ctx, ing)
	created, err := s.catalog.CreateFood(ctx, food)
	if err != nil {
		return nil, false, nil, err
	}
	return created, true, warns, nil
}

// buildFood 從食材提案組出新食物
// 營養資料優先採用提案附帶的數值，沒有就問外部查詢服務；都沒有時
// 仍建立食物，但附上警告供呼叫端補齊
func (s *Service) buildFood(ctx context.Context, ing GeneratedIngredient) (*nutrition.Food, []nutrition.Warning) {
	food := &nutrition.Food{
		Name:     strings.TrimSpace(ing.Name),
		Category: ing.Category,
	}
	if ing.Serving != nil && ing.Serving.Size > 0 {
		food.Serving = *ing.Serving
	} else {
		food.Serving = nutrition.ServingSpec{Size: 100, Unit: "g"}
	}

	if ing.Nutrients != nil {
		food.Nutrients = *ing.Nutrients
		food.Nutrients.RecomputeCalories()
		return food, nil
	}

	if s.lookup != nil && s.lookup.Enabled() {
		if fetched, err := s.lookup.NaturalNutrients(ctx, ing.Name); err == nil && len(fetched) > 0 {
			hit := fetched[0]
			food.Nutrients = hit.Nutrients
			food.Serving = hit.Serving
			food.NutritionixID = hit.NutritionixID
			food.CommonName = hit.CommonName
			food.NixItemID = hit.NixItemID
			food.NixBrandID = hit.NixBrandID
			food.NDBNumber = hit.NDBNumber
			food.AltMeasures = hit.AltMeasures
			return food, nil
		} else if err != nil {
			common.LogWarn("營養查詢失敗，改以空白營養建立食物",
				zap.String("ingredient", ing.Name),
				zap.Error(err),
			)
		}
	}

	warns := []nutrition.Warning{{
		Code:    nutrition.WarnMissingNutrients,
		Message: "no nutrition data available for new food",
		ItemID:  food.Name,
	}}
	return food, warns
}
