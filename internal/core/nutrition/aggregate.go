package nutrition

import "context"

// accumulator 聚合用的累加器
// 選填欄位先以 0 起算，輸出時仍為 0 的欄位會被剔除，
// 使結果的欄位存在與否反映「是否有任何來源提供過資料」
type accumulator struct {
	protein, carbs, fat               float64
	fiber, sugar, sodium, cholesterol float64
	vitamins, minerals                map[string]float64
}

func newAccumulator() *accumulator {
	return &accumulator{
		vitamins: make(map[string]float64),
		minerals: make(map[string]float64),
	}
}

func (a *accumulator) add(p NutrientProfile) {
	a.protein += p.Protein
	a.carbs += p.Carbs
	a.fat += p.Fat

	if p.Fiber != nil {
		a.fiber += *p.Fiber
	}
	if p.Sugar != nil {
		a.sugar += *p.Sugar
	}
	if p.Sodium != nil {
		a.sodium += *p.Sodium
	}
	if p.Cholesterol != nil {
		a.cholesterol += *p.Cholesterol
	}

	// map 欄位以鍵合併，相同鍵相加
	for k, v := range p.Vitamins {
		a.vitamins[k] += v
	}
	for k, v := range p.Minerals {
		a.minerals[k] += v
	}
}

// profile 輸出聚合結果，剔除仍為 0 的選填欄位與空 map，並重算熱量
func (a *accumulator) profile() NutrientProfile {
	out := NutrientProfile{
		Protein: a.protein,
		Carbs:   a.carbs,
		Fat:     a.fat,
	}
	out.RecomputeCalories()

	out.Fiber = presentOptional(a.fiber)
	out.Sugar = presentOptional(a.sugar)
	out.Sodium = presentOptional(a.sodium)
	out.Cholesterol = presentOptional(a.cholesterol)

	if len(a.vitamins) > 0 {
		out.Vitamins = a.vitamins
	}
	if len(a.minerals) > 0 {
		out.Minerals = a.minerals
	}
	return out
}

func presentOptional(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

// RecipeNutrition 計算整份食譜（全部批量）的營養總和
// 無法解析的食材引用會被略過並回報警告，單一壞引用不中斷整個計算
func RecipeNutrition(ctx context.Context, src Source, recipe *Recipe) (NutrientProfile, []Warning) {
	acc := newAccumulator()
	var warnings []Warning

	for _, ing := range recipe.Ingredients {
		food, err := src.FoodByID(ctx, ing.FoodID)
		if err != nil {
			warnings = append(warnings, warnf(WarnMissingFood, ing.FoodID,
				"food %q could not be resolved, skipping ingredient: %v", ing.FoodID, err))
			continue
		}

		scaled, ws := ScaleFood(food, ing.Quantity, ing.Unit)
		warnings = append(warnings, ws...)
		acc.add(scaled)
	}

	return acc.profile(), warnings
}

// RecipeNutritionPerServing 計算食譜單人份的營養（總和 ÷ servings）
// servings 依不變量應 > 0，但仍防禦性地將非正值視為 1
func RecipeNutritionPerServing(ctx context.Context, src Source, recipe *Recipe) (NutrientProfile, []Warning) {
	total, warnings := RecipeNutrition(ctx, src, recipe)

	servings := recipe.Servings
	if servings <= 0 {
		warnings = append(warnings, warnf(WarnInvalidServings, recipe.ID,
			"recipe servings %v is not positive, treating as 1", recipe.Servings))
		servings = 1
	}

	return scaleProfile(total, 1/servings), warnings
}

// MenuNutrition 計算菜單所有項目的營養總和
// food 項目以 portions 倍的該食物份量計算；
// recipe 項目以 portions 倍的食譜單人份計算（等價於 portions/servings 批量）
func MenuNutrition(ctx context.Context, src Source, menu *Menu) (NutrientProfile, []Warning) {
	acc := newAccumulator()
	var warnings []Warning

	for _, item := range menu.Items {
		portions := item.Portions
		if portions <= 0 {
			warnings = append(warnings, warnf(WarnInvalidPortions, item.ItemID,
				"menu item portions %v is not positive, treating as 1", item.Portions))
			portions = 1
		}

		switch item.Type {
		case MenuItemFood:
			food, err := src.FoodByID(ctx, item.ItemID)
			if err != nil {
				warnings = append(warnings, warnf(WarnMissingFood, item.ItemID,
					"food %q could not be resolved, skipping menu item: %v", item.ItemID, err))
				continue
			}
			scaled, ws := ScaleFood(food, food.Serving.Size*portions, food.Serving.Unit)
			warnings = append(warnings, ws...)
			acc.add(scaled)

		case MenuItemRecipe:
			recipe, err := src.RecipeByID(ctx, item.ItemID)
			if err != nil {
				warnings = append(warnings, warnf(WarnMissingRecipe, item.ItemID,
					"recipe %q could not be resolved, skipping menu item: %v", item.ItemID, err))
				continue
			}
			perServing, ws := RecipeNutritionPerServing(ctx, src, recipe)
			warnings = append(warnings, ws...)
			acc.add(scaleProfile(perServing, portions))

		default:
			warnings = append(warnings, warnf(WarnUnknownItemType, item.ItemID,
				"unknown menu item type %q, skipping", item.Type))
		}
	}

	return acc.profile(), warnings
}
