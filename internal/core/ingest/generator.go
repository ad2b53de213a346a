package ingest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nutrition-planner/internal/core/cache"
	"nutrition-planner/internal/core/nutrition"
	"nutrition-planner/internal/infrastructure/config"
	"nutrition-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const generatorCacheNamespace = "recipe_generation"

// GenerateRequest 食譜生成請求
type GenerateRequest struct {
	DishName             string   `json:"dish_name"`
	Servings             float64  `json:"servings"`
	PreferredIngredients []string `json:"preferred_ingredients,omitempty"`
	ExcludedIngredients  []string `json:"excluded_ingredients,omitempty"`
	DietaryRestrictions  []string `json:"dietary_restrictions,omitempty"`
}

// GeneratedIngredient 模型提出的食材
type GeneratedIngredient struct {
	Name      string                     `json:"name"`
	Category  string                     `json:"category"`
	Quantity  float64                    `json:"quantity"`
	Unit      string                     `json:"unit"`
	Serving   *nutrition.ServingSpec     `json:"serving,omitempty"`
	Nutrients *nutrition.NutrientProfile `json:"nutrients,omitempty"`
}

// GeneratedRecipe 模型生成的完整食譜
type GeneratedRecipe struct {
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Servings     float64               `json:"servings"`
	Ingredients  []GeneratedIngredient `json:"ingredients"`
	Instructions []string              `json:"instructions"`
	PrepTime     int                   `json:"prep_time"`
	CookTime     int                   `json:"cook_time"`
	Tags         []string              `json:"tags,omitempty"`
}

// Generator 透過 OpenRouter 生成食譜
type Generator struct {
	config *config.Config
	client *resty.Client
	cache  *cache.Manager
}

// NewGenerator 創建生成器
func NewGenerator(cfg *config.Config, cacheManager *cache.Manager) *Generator {
	client := resty.New().
		SetBaseURL("https://openrouter.ai/api/v1").
		SetTimeout(cfg.OpenRouter.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenRouter.APIKey)).
		SetHeader("HTTP-Referer", "https://nutrition-planner.local").
		SetHeader("X-Title", "Nutrition Planner")

	return &Generator{
		config: cfg,
		client: client,
		cache:  cacheManager,
	}
}

// Enabled 生成功能是否可用
func (g *Generator) Enabled() bool {
	return g.config.OpenRouter.Enabled
}

// Generate 生成食譜
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*GeneratedRecipe, error) {
	if !g.Enabled() {
		return nil, common.ErrGenerationFailed
	}
	if strings.TrimSpace(req.DishName) == "" {
		return nil, common.NewValidationError("dish name is required")
	}

	prompt := buildPrompt(req)

	// 相同請求直接回快取結果
	if cached, err := g.cache.Get(ctx, generatorCacheNamespace, prompt); err == nil && cached != "" {
		var recipe GeneratedRecipe
		if err := common.ParseJSON(cached, &recipe); err == nil {
			return &recipe, nil
		}
	}

	content, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	// 模型偶爾輸出圍欄或鬆散 JSON，先修補再解析
	content = common.ExtractJSONObject(content)
	content = common.QuoteJSONKeys(content)

	var recipe GeneratedRecipe
	if err := common.ParseJSON(content, &recipe); err != nil {
		common.LogError("食譜生成結果解析失敗",
			zap.Error(err),
			zap.String("dish", req.DishName),
		)
		return nil, fmt.Errorf("failed to parse generated recipe: %w", err)
	}

	if err := validateGenerated(&recipe); err != nil {
		return nil, err
	}

	if data, err := common.ToJSON(&recipe); err == nil {
		_ = g.cache.Set(ctx, generatorCacheNamespace, prompt, data)
	}

	common.LogInfo("食譜生成成功",
		zap.String("dish", recipe.Name),
		zap.Int("ingredients", len(recipe.Ingredients)),
	)
	return &recipe, nil
}

// complete 呼叫 chat completions，回傳第一個選項的文字內容
func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	req := map[string]interface{}{
		"model": g.config.OpenRouter.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens": g.config.OpenRouter.MaxTokens,
	}

	start := time.Now()
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		common.LogError("OpenRouter 請求失敗",
			zap.Error(err),
			zap.Duration("耗時", time.Since(start)),
		)
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("OpenRouter API returned error: %s", resp.String())
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenRouter response")
	}

	common.LogInfo("OpenRouter 請求成功",
		zap.Duration("耗時", time.Since(start)),
	)
	return result.Choices[0].Message.Content, nil
}

// buildPrompt 組裝生成提示詞
func buildPrompt(req GenerateRequest) string {
	var sb strings.Builder
	sb.WriteString("Generate a recipe as compact JSON with this exact shape, no markdown, no extra text:\n")
	sb.WriteString(`{"name":"","description":"","servings":0,"ingredients":[{"name":"","category":"","quantity":0,"unit":"","serving":{"size":0,"unit":""},"nutrients":{"calories":0,"protein":0,"carbs":0,"fat":0}}],"instructions":[""],"prep_time":0,"cook_time":0,"tags":[""]}`)
	sb.WriteString("\nRules: quantities are numbers; units are metric where possible (g, ml) or common measures (cup, tbsp, tsp, piece, clove, slice); ")
	sb.WriteString("nutrients describe one serving of the ingredient itself; every field must be present.\n")
	fmt.Fprintf(&sb, "Dish: %s\n", req.DishName)
	if req.Servings > 0 {
		fmt.Fprintf(&sb, "Servings: %v\n", req.Servings)
	}
	if len(req.PreferredIngredients) > 0 {
		fmt.Fprintf(&sb, "Prefer these ingredients: %s\n", strings.Join(req.PreferredIngredients, ", "))
	}
	if len(req.ExcludedIngredients) > 0 {
		fmt.Fprintf(&sb, "Do not use: %s\n", strings.Join(req.ExcludedIngredients, ", "))
	}
	if len(req.DietaryRestrictions) > 0 {
		fmt.Fprintf(&sb, "Dietary restrictions: %s\n", strings.Join(req.DietaryRestrictions, ", "))
	}
	return sb.String()
}

func validateGenerated(recipe *GeneratedRecipe) error {
	if strings.TrimSpace(recipe.Name) == "" {
		return common.NewValidationError("generated recipe has no name")
	}
	if len(recipe.Ingredients) == 0 {
		return common.NewValidationError("generated recipe has no ingredients")
	}
	if recipe.Servings <= 0 {
		recipe.Servings = 1
	}
	for i := range recipe.Ingredients {
		if recipe.Ingredients[i].Quantity <= 0 {
			recipe.Ingredients[i].Quantity = 1
		}
	}
	return nil
}
