package nutrition

import "context"

// Source 聚合計算所依賴的外部查詢介面
// 由目錄層（catalog）實作；查詢失敗只會造成單一項目被略過，不會中斷整個計算
type Source interface {
	FoodByID(ctx context.Context, id string) (*Food, error)
	RecipeByID(ctx context.Context, id string) (*Recipe, error)
}
