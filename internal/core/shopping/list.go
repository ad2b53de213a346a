package shopping

import (
	"context"
	"sort"
	"strings"

	"nutrition-planner/internal/core/nutrition"
)

// Line 購物清單中的一行
// 同一食物、單位可互換的數量會合併為一行；換算不到共同單位時各自成行
type Line struct {
	FoodID   string  `json:"foodId"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// List 依菜單展開的購物清單
type List struct {
	MenuID   string              `json:"menuId"`
	Lines    []Line              `json:"lines"`
	Warnings []nutrition.Warning `json:"warnings,omitempty"`
}

// BuildList 把菜單展開成購物清單
// 食物項目取其份量乘上 portions；食譜項目把每項食材數量換算成
// 單人份再乘上 portions。解析不到的引用照營養彙總的規則略過並警告
func BuildList(ctx context.Context, src nutrition.Source, menu *nutrition.Menu) (*List, error) {
	list := &List{MenuID: menu.ID}
	var lines []Line

	for _, item := range menu.Items {
		portions := item.Portions
		if portions <= 0 {
			list.Warnings = append(list.Warnings, nutrition.Warning{
				Code:    nutrition.WarnInvalidPortions,
				Message: "portions must be positive; using 1",
				ItemID:  item.ItemID,
			})
			portions = 1
		}

		switch item.Type {
		case nutrition.MenuItemFood:
			food, err := src.FoodByID(ctx, item.ItemID)
			if err != nil {
				list.Warnings = append(list.Warnings, nutrition.Warning{
					Code:    nutrition.WarnMissingFood,
					Message: "food not found; skipped",
					ItemID:  item.ItemID,
				})
				continue
			}
			lines = append(lines, Line{
				FoodID:   food.ID,
				Name:     food.Name,
				Category: food.Category,
				Quantity: food.Serving.Size * portions,
				Unit:     food.Serving.Unit,
			})

		case nutrition.MenuItemRecipe:
			recipe, err := src.RecipeByID(ctx, item.ItemID)
			if err != nil {
				list.Warnings = append(list.Warnings, nutrition.Warning{
					Code:    nutrition.WarnMissingRecipe,
					Message: "recipe not found; skipped",
					ItemID:  item.ItemID,
				})
				continue
			}
			servings := recipe.Servings
			if servings <= 0 {
				list.Warnings = append(list.Warnings, nutrition.Warning{
					Code:    nutrition.WarnInvalidServings,
					Message: "servings must be positive; using 1",
					ItemID:  recipe.ID,
				})
				servings = 1
			}
			for _, ing := range recipe.Ingredients {
				food, err := src.FoodByID(ctx, ing.FoodID)
				if err != nil {
					list.Warnings = append(list.Warnings, nutrition.Warning{
						Code:    nutrition.WarnMissingFood,
						Message: "food not found; skipped",
						ItemID:  ing.FoodID,
					})
					continue
				}
				lines = append(lines, Line{
					FoodID:   food.ID,
					Name:     food.Name,
					Category: food.Category,
					Quantity: ing.Quantity * portions / servings,
					Unit:     ing.Unit,
				})
			}

		default:
			list.Warnings = append(list.Warnings, nutrition.Warning{
				Code:    nutrition.WarnUnknownItemType,
				Message: "unknown menu item type; skipped",
				ItemID:  item.ItemID,
			})
		}
	}

	list.Lines = mergeLines(lines)
	return list, nil
}

// mergeLines 合併同食物、同一度量維度的行，並依分類、名稱排序
func mergeLines(lines []Line) []Line {
	var merged []Line
	for _, line := range lines {
		absorbed := false
		for i := range merged {
			if merged[i].FoodID != line.FoodID {
				continue
			}
			if converted, ok := nutrition.ConvertAmount(line.Quantity, line.Unit, merged[i].Unit); ok {
				merged[i].Quantity += converted
				absorbed = true
				break
			}
		}
		if !absorbed {
			merged = append(merged, line)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		ci, cj := strings.ToLower(merged[i].Category), strings.ToLower(merged[j].Category)
		if ci != cj {
			return ci < cj
		}
		ni, nj := strings.ToLower(merged[i].Name), strings.ToLower(merged[j].Name)
		if ni != nj {
			return ni < nj
		}
		return merged[i].Unit < merged[j].Unit
	})
	return merged
}
