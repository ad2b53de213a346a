package nutrition

// Atwater 係數（每公克熱量，kcal/g）
const (
	AtwaterProtein = 4.0
	AtwaterCarbs   = 4.0
	AtwaterFat     = 9.0
)

// NutrientProfile 營養成分
// 巨量營養素為必填欄位；微量營養素為選填，缺少時以 nil 表示（不可補 0）
type NutrientProfile struct {
	Calories float64 `json:"calories"` // 熱量（kcal）
	Protein  float64 `json:"protein"`  // 蛋白質（g）
	Carbs    float64 `json:"carbs"`    // 碳水化合物（g）
	Fat      float64 `json:"fat"`      // 脂肪（g）

	Fiber       *float64 `json:"fiber,omitempty"`       // 纖維（g）
	Sugar       *float64 `json:"sugar,omitempty"`       // 糖（g）
	Sodium      *float64 `json:"sodium,omitempty"`      // 鈉（mg）
	Cholesterol *float64 `json:"cholesterol,omitempty"` // 膽固醇（mg）

	Vitamins map[string]float64 `json:"vitamins,omitempty"` // 維生素 名稱→含量
	Minerals map[string]float64 `json:"minerals,omitempty"` // 礦物質 名稱→含量
}

// RecomputeCalories 由巨量營養素重新推算熱量
// 任何計算輸出的 NutrientProfile 都必須呼叫此方法，不可沿用來源的 calories
func (p *NutrientProfile) RecomputeCalories() {
	p.Calories = p.Protein*AtwaterProtein + p.Carbs*AtwaterCarbs + p.Fat*AtwaterFat
}

// ServingSpec 份量基準，NutrientProfile 的數值即以此為單位
type ServingSpec struct {
	Size          float64  `json:"size"` // 必須 > 0
	Unit          string   `json:"unit"`
	WeightInGrams *float64 `json:"weightInGrams,omitempty"`
}

// AltMeasure 外部營養資料庫提供的替代份量
type AltMeasure struct {
	ServingWeight float64 `json:"serving_weight"`
	Measure       string  `json:"measure"`
	Seq           int     `json:"seq"`
	Qty           float64 `json:"qty"`
}

// Food 食物
type Food struct {
	ID       string `json:"id"`
	Rev      string `json:"rev,omitempty"`
	Name     string `json:"name"`
	Category string `json:"category"`

	Nutrients NutrientProfile `json:"nutrients"` // 以 Serving 為基準
	Serving   ServingSpec     `json:"serving"`

	Allergens []string `json:"allergens,omitempty"`
	Tags      []string `json:"tags,omitempty"`

	// 外部資料庫交叉引用欄位，僅供去重比對使用
	NutritionixID string       `json:"nutritionixId,omitempty"`
	CommonName    string       `json:"commonName,omitempty"`
	NixItemID     string       `json:"nixItemId,omitempty"`
	NixBrandID    string       `json:"nixBrandId,omitempty"`
	NDBNumber     string       `json:"ndbNumber,omitempty"`
	AltMeasures   []AltMeasure `json:"altMeasures,omitempty"`
}

// RecipeIngredient 食譜中的一項食材引用
type RecipeIngredient struct {
	FoodID   string  `json:"foodId"`
	Quantity float64 `json:"quantity"` // 必須 > 0
	Unit     string  `json:"unit"`
}

// Recipe 食譜
type Recipe struct {
	ID           string             `json:"id"`
	Rev          string             `json:"rev,omitempty"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Ingredients  []RecipeIngredient `json:"ingredients"`
	Instructions []string           `json:"instructions"`
	Servings     float64            `json:"servings"`           // 必須 > 0
	PrepTime     int                `json:"prepTime,omitempty"` // 分鐘
	CookTime     int                `json:"cookTime,omitempty"` // 分鐘
	Tags         []string           `json:"tags,omitempty"`
}

// MenuItemType 菜單項目類型
type MenuItemType string

const (
	MenuItemFood   MenuItemType = "food"
	MenuItemRecipe MenuItemType = "recipe"
)

// MenuItem 菜單中的一個項目
// food 的 portions 指該食物份量（serving）的倍數；
// recipe 的 portions 指食譜單人份（1/servings 批量）的倍數
type MenuItem struct {
	Type     MenuItemType `json:"type"`
	ItemID   string       `json:"itemId"`
	Portions float64      `json:"portions"` // 必須 > 0
}

// Menu 菜單
type Menu struct {
	ID          string     `json:"id"`
	Rev         string     `json:"rev,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Items       []MenuItem `json:"items"`
	Tags        []string   `json:"tags,omitempty"`
}
