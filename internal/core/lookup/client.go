package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nutrition-planner/internal/core/cache"
	"nutrition-planner/internal/core/nutrition"
	"nutrition-planner/internal/infrastructure/config"
	"nutrition-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

const cacheNamespace = "nutritionix"

// Client Nutritionix 自然語言營養查詢客戶端
// 把「1 cup rice」這類描述換成逐項的每份營養資料
type Client struct {
	config *config.Config
	client *resty.Client
	cache  *cache.Manager
}

// NewClient 創建查詢客戶端
func NewClient(cfg *config.Config, cacheManager *cache.Manager) *Client {
	client := resty.New().
		SetBaseURL(cfg.Nutritionix.BaseURL).
		SetTimeout(cfg.Nutritionix.Timeout).
		SetHeader("x-app-id", cfg.Nutritionix.AppID).
		SetHeader("x-app-key", cfg.Nutritionix.AppKey).
		SetHeader("Content-Type", "application/json")

	return &Client{
		config: cfg,
		client: client,
		cache:  cacheManager,
	}
}

// Enabled 查詢服務是否可用
func (c *Client) Enabled() bool {
	return c.config.Nutritionix.Enabled
}

// nutrientsResponse Nutritionix /natural/nutrients 回應
type nutrientsResponse struct {
	Foods []nutrientsFood `json:"foods"`
}

type nutrientsFood struct {
	FoodName          string                 `json:"food_name"`
	ServingQty        float64                `json:"serving_qty"`
	ServingUnit       string                 `json:"serving_unit"`
	ServingWeightGram *float64               `json:"serving_weight_grams"`
	Calories          float64                `json:"nf_calories"`
	TotalFat          float64                `json:"nf_total_fat"`
	Cholesterol       *float64               `json:"nf_cholesterol"`
	Sodium            *float64               `json:"nf_sodium"`
	TotalCarbohydrate float64                `json:"nf_total_carbohydrate"`
	DietaryFiber      *float64               `json:"nf_dietary_fiber"`
	Sugars            *float64               `json:"nf_sugars"`
	Protein           float64                `json:"nf_protein"`
	NixItemID         string                 `json:"nix_item_id"`
	NixBrandID        string                 `json:"nix_brand_id"`
	NDBNumber         json.Number            `json:"ndb_no"`
	Tags              *nutrientsTags         `json:"tags"`
	AltMeasures       []nutrition.AltMeasure `json:"alt_measures"`
}

type nutrientsTags struct {
	Item  string      `json:"item"`
	TagID json.Number `json:"tag_id"`
}

// NaturalNutrients 以自然語言查詢食物營養
// 回傳的 Food 不含 ID 與 Rev，由呼叫端決定是否入庫
func (c *Client) NaturalNutrients(ctx context.Context, query string) ([]*nutrition.Food, error) {
	if !c.Enabled() {
		return nil, common.ErrLookupUnavailable
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, common.NewValidationError("lookup query is required")
	}

	// 先查快取
	if cached, err := c.cache.Get(ctx, cacheNamespace, query); err == nil && cached != "" {
		var foods []*nutrition.Food
		if err := common.ParseJSON(cached, &foods); err == nil {
			return foods, nil
		}
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"query": query}).
		Post("/natural/nutrients")
	common.LogLookupCall(query, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query nutritionix: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, common.ErrNotFound
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("nutritionix returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var result nutrientsResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse nutritionix response: %w", err)
	}

	foods := make([]*nutrition.Food, 0, len(result.Foods))
	for _, f := range result.Foods {
		foods = append(foods, mapFood(f))
	}

	// 寫入快取
	if data, err := common.ToJSON(foods); err == nil {
		_ = c.cache.Set(ctx, cacheNamespace, query, data)
	}

	return foods, nil
}

// mapFood 將 Nutritionix 回應欄位映射為目錄的 Food
// calories 雖然照存，但任何聚合輸出都會以 Atwater 算式重新推算
func mapFood(f nutrientsFood) *nutrition.Food {
	food := &nutrition.Food{
		Name:     f.FoodName,
		Category: "other",
		Serving: nutrition.ServingSpec{
			Size:          f.ServingQty,
			Unit:          f.ServingUnit,
			WeightInGrams: f.ServingWeightGram,
		},
		Nutrients: nutrition.NutrientProfile{
			Calories:    f.Calories,
			Protein:     f.Protein,
			Carbs:       f.TotalCarbohydrate,
			Fat:         f.TotalFat,
			Fiber:       f.DietaryFiber,
			Sugar:       f.Sugars,
			Sodium:      f.Sodium,
			Cholesterol: f.Cholesterol,
		},
		CommonName:  f.FoodName,
		NixItemID:   f.NixItemID,
		NixBrandID:  f.NixBrandID,
		NDBNumber:   f.NDBNumber.String(),
		AltMeasures: f.AltMeasures,
	}
	if f.Tags != nil {
		food.NutritionixID = f.Tags.TagID.String()
		if f.Tags.Item != "" {
			food.CommonName = f.Tags.Item
		}
	}
	if food.Serving.Size <= 0 {
		// 偶有回應缺 serving_qty，退回 1 份避免破壞不變量
		food.Serving.Size = 1
	}
	return food
}
