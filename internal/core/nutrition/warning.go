package nutrition

import "fmt"

// WarningCode 警告代碼
type WarningCode string

const (
	WarnUnitFallback    WarningCode = "UNIT_FALLBACK"     // 無換算規則，視為 1:1
	WarnInvalidServing  WarningCode = "INVALID_SERVING"   // serving.size <= 0 或換算結果非有限值
	WarnInvalidServings WarningCode = "INVALID_SERVINGS"  // recipe.servings <= 0，以 1 代替
	WarnInvalidPortions WarningCode = "INVALID_PORTIONS"  // menu item portions <= 0，以 1 代替
	WarnMissingFood     WarningCode = "MISSING_FOOD"      // 食物引用無法解析，已略過
	WarnMissingRecipe   WarningCode = "MISSING_RECIPE"    // 食譜引用無法解析，已略過
	WarnUnknownItemType WarningCode = "UNKNOWN_ITEM_TYPE" // 菜單項目類型不明，已略過

	WarnMissingNutrients WarningCode = "MISSING_NUTRIENTS" // 新建食物缺營養資料
)

// Warning 非致命的資料品質警告
// 計算流程中任何被略過或以預設值代替的項目，都必須附帶一筆警告回報給呼叫端，
// 絕不允許默默輸出錯誤的總和
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
	ItemID  string      `json:"item_id,omitempty"`
	Unit    string      `json:"unit,omitempty"`
}

func (w Warning) String() string {
	if w.ItemID != "" {
		return fmt.Sprintf("%s: %s (item=%s)", w.Code, w.Message, w.ItemID)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

func warnf(code WarningCode, itemID string, format string, args ...interface{}) Warning {
	return Warning{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		ItemID:  itemID,
	}
}
