package nutrition

// ScaleFood 計算 quantity unit 的 food 所含營養
// 依規則縮放每個存在的欄位；calories 一律由縮放後的巨量營養素重新推算，
// 即使使用者輸入的熱量與 Atwater 算式不符也以推算值為準。
// 來源缺少的選填欄位在輸出中同樣缺少，不做補零；數值不做四捨五入
func ScaleFood(food *Food, quantity float64, unit string) (NutrientProfile, []Warning) {
	var warnings []Warning

	factor, warn := Convert(quantity, unit, food.Serving)
	if warn != nil {
		w := *warn
		w.ItemID = food.ID
		warnings = append(warnings, w)
	}

	scaled := scaleProfile(food.Nutrients, factor)
	return scaled, warnings
}

// scaleProfile 將營養成分等比縮放，並重算熱量
func scaleProfile(p NutrientProfile, factor float64) NutrientProfile {
	out := NutrientProfile{
		Protein: p.Protein * factor,
		Carbs:   p.Carbs * factor,
		Fat:     p.Fat * factor,
	}
	out.RecomputeCalories()

	out.Fiber = scaleOptional(p.Fiber, factor)
	out.Sugar = scaleOptional(p.Sugar, factor)
	out.Sodium = scaleOptional(p.Sodium, factor)
	out.Cholesterol = scaleOptional(p.Cholesterol, factor)

	out.Vitamins = scaleMap(p.Vitamins, factor)
	out.Minerals = scaleMap(p.Minerals, factor)
	return out
}

func scaleOptional(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v * factor
	return &scaled
}

// scaleMap 逐項縮放，來源沒有的鍵不會出現在結果裡
func scaleMap(m map[string]float64, factor float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v * factor
	}
	return out
}
