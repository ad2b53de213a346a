package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"nutrition-planner/internal/core/nutrition"
	"nutrition-planner/internal/pkg/common"
	"nutrition-planner/internal/store"

	"go.uber.org/zap"
)

// Service 食物/食譜/菜單目錄
// 純粹的文件存取封裝，不做引用完整性檢查：刪除被引用的食物是呼叫端的責任，
// 聚合計算會把殘留引用當成可略過的壞引用處理
type Service struct {
	store store.Store
}

// NewService 創建目錄服務
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// --- Food ---

// CreateFood 建立食物，自動配發 ID
func (s *Service) CreateFood(ctx context.Context, food *nutrition.Food) (*nutrition.Food, error) {
	if err := validateFood(food); err != nil {
		return nil, err
	}
	if food.ID == "" {
		food.ID = common.GenerateUUID()
	}
	food.Rev = ""

	return s.putFood(ctx, food)
}

// UpdateFood 更新食物，Rev 必須為目前版本
func (s *Service) UpdateFood(ctx context.Context, food *nutrition.Food) (*nutrition.Food, error) {
	if err := validateFood(food); err != nil {
		return nil, err
	}
	if food.Rev == "" {
		return nil, store.ErrRevisionRequired
	}
	return s.putFood(ctx, food)
}

func (s *Service) putFood(ctx context.Context, food *nutrition.Food) (*nutrition.Food, error) {
	doc, err := marshalDoc(store.KindFood, food.ID, food.Rev, food)
	if err != nil {
		return nil, err
	}
	saved, err := s.store.Put(ctx, doc)
	if err != nil {
		return nil, err
	}
	food.Rev = saved.Rev

	common.LogInfo("食物已儲存",
		zap.String("id", food.ID),
		zap.String("name", food.Name),
	)
	return food, nil
}

// GetFood 取得食物
func (s *Service) GetFood(ctx context.Context, id string) (*nutrition.Food, error) {
	doc, err := s.store.Get(ctx, store.KindFood, id)
	if err != nil {
		return nil, err
	}
	var food nutrition.Food
	if err := unmarshalDoc(doc, &food); err != nil {
		return nil, err
	}
	food.Rev = doc.Rev
	return &food, nil
}

// DeleteFood 刪除食物
func (s *Service) DeleteFood(ctx context.Context, id, rev string) error {
	return s.store.Remove(ctx, store.KindFood, id, rev)
}

// AllFoods 列出全部食物，供去重比對與清單顯示
func (s *Service) AllFoods(ctx context.Context) ([]*nutrition.Food, error) {
	docs, err := s.store.List(ctx, store.KindFood)
	if err != nil {
		return nil, err
	}
	foods := make([]*nutrition.Food, 0, len(docs))
	for _, doc := range docs {
		var food nutrition.Food
		if err := unmarshalDoc(doc, &food); err != nil {
			return nil, err
		}
		food.Rev = doc.Rev
		foods = append(foods, &food)
	}
	return foods, nil
}

// --- Recipe ---

// CreateRecipe 建立食譜
func (s *Service) CreateRecipe(ctx context.Context, recipe *nutrition.Recipe) (*nutrition.Recipe, error) {
	if err := validateRecipe(recipe); err != nil {
		return nil, err
	}
	if recipe.ID == "" {
		recipe.ID = common.GenerateUUID()
	}
	recipe.Rev = ""
	return s.putRecipe(ctx, recipe)
}

// UpdateRecipe 更新食譜
func (s *Service) UpdateRecipe(ctx context.Context, recipe *nutrition.Recipe) (*nutrition.Recipe, error) {
	if err := validateRecipe(recipe); err != nil {
		return nil, err
	}
	if recipe.Rev == "" {
		return nil, store.ErrRevisionRequired
	}
	return s.putRecipe(ctx, recipe)
}

func (s *Service) putRecipe(ctx context.Context, recipe *nutrition.Recipe) (*nutrition.Recipe, error) {
	doc, err := marshalDoc(store.KindRecipe, recipe.ID, recipe.Rev, recipe)
	if err != nil {
		return nil, err
	}
	saved, err := s.store.Put(ctx, doc)
	if err != nil {
		return nil, err
	}
	recipe.Rev = saved.Rev

	common.LogInfo("食譜已儲存",
		zap.String("id", recipe.ID),
		zap.String("name", recipe.Name),
		zap.Int("ingredients", len(recipe.Ingredients)),
	)
	return recipe, nil
}

// GetRecipe 取得食譜
func (s *Service) GetRecipe(ctx context.Context, id string) (*nutrition.Recipe, error) {
	doc, err := s.store.Get(ctx, store.KindRecipe, id)
	if err != nil {
		return nil, err
	}
	var recipe nutrition.Recipe
	if err := unmarshalDoc(doc, &recipe); err != nil {
		return nil, err
	}
	recipe.Rev = doc.Rev
	return &recipe, nil
}

// DeleteRecipe 刪除食譜
func (s *Service) DeleteRecipe(ctx context.Context, id, rev string) error {
	return s.store.Remove(ctx, store.KindRecipe, id, rev)
}

// AllRecipes 列出全部食譜
func (s *Service) AllRecipes(ctx context.Context) ([]*nutrition.Recipe, error) {
	docs, err := s.store.List(ctx, store.KindRecipe)
	if err != nil {
		return nil, err
	}
	recipes := make([]*nutrition.Recipe, 0, len(docs))
	for _, doc := range docs {
		var recipe nutrition.Recipe
		if err := unmarshalDoc(doc, &recipe); err != nil {
			return nil, err
		}
		recipe.Rev = doc.Rev
		recipes = append(recipes, &recipe)
	}
	return recipes, nil
}

// --- Menu ---

// CreateMenu 建立菜單
func (s *Service) CreateMenu(ctx context.Context, menu *nutrition.Menu) (*nutrition.Menu, error) {
	if err := validateMenu(menu); err != nil {
		return nil, err
	}
	if menu.ID == "" {
		menu.ID = common.GenerateUUID()
	}
	menu.Rev = ""
	return s.putMenu(ctx, menu)
}

// UpdateMenu 更新菜單
func (s *Service) UpdateMenu(ctx context.Context, menu *nutrition.Menu) (*nutrition.Menu, error) {
	if err := validateMenu(menu); err != nil {
		return nil, err
	}
	if menu.Rev == "" {
		return nil, store.ErrRevisionRequired
	}
	return s.putMenu(ctx, menu)
}

func (s *Service) putMenu(ctx context.Context, menu *nutrition.Menu) (*nutrition.Menu, error) {
	doc, err := marshalDoc(store.KindMenu, menu.ID, menu.Rev, menu)
	if err != nil {
		return nil, err
	}
	saved, err := s.store.Put(ctx, doc)
	if err != nil {
		return nil, err
	}
	menu.Rev = saved.Rev
	return menu, nil
}

// GetMenu 取得菜單
func (s *Service) GetMenu(ctx context.Context, id string) (*nutrition.Menu, error) {
	doc, err := s.store.Get(ctx, store.KindMenu, id)
	if err != nil {
		return nil, err
	}
	var menu nutrition.Menu
	if err := unmarshalDoc(doc, &menu); err != nil {
		return nil, err
	}
	menu.Rev = doc.Rev
	return &menu, nil
}

// DeleteMenu 刪除菜單
func (s *Service) DeleteMenu(ctx context.Context, id, rev string) error {
	return s.store.Remove(ctx, store.KindMenu, id, rev)
}

// AllMenus 列出全部菜單
func (s *Service) AllMenus(ctx context.Context) ([]*nutrition.Menu, error) {
	docs, err := s.store.List(ctx, store.KindMenu)
	if err != nil {
		return nil, err
	}
	menus := make([]*nutrition.Menu, 0, len(docs))
	for _, doc := range docs {
		var menu nutrition.Menu
		if err := unmarshalDoc(doc, &menu); err != nil {
			return nil, err
		}
		menu.Rev = doc.Rev
		menus = append(menus, &menu)
	}
	return menus, nil
}

// --- nutrition.Source ---

// FoodByID 實作 nutrition.Source
func (s *Service) FoodByID(ctx context.Context, id string) (*nutrition.Food, error) {
	return s.GetFood(ctx, id)
}

// RecipeByID 實作 nutrition.Source
func (s *Service) RecipeByID(ctx context.Context, id string) (*nutrition.Recipe, error) {
	return s.GetRecipe(ctx, id)
}

// --- helpers ---

func marshalDoc(kind, id, rev string, v interface{}) (*store.Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s document: %w", kind, err)
	}
	return &store.Document{
		ID:   id,
		Kind: kind,
		Rev:  rev,
		Data: data,
	}, nil
}

func unmarshalDoc(doc *store.Document, v interface{}) error {
	if err := json.Unmarshal(doc.Data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s document %s: %w", doc.Kind, doc.ID, err)
	}
	return nil
}

func validateFood(food *nutrition.Food) error {
	if strings.TrimSpace(food.Name) == "" {
		return common.NewValidationError("food name is required")
	}
	if food.Serving.Size <= 0 {
		return common.NewValidationError("food serving size must be positive")
	}
	return nil
}

func validateRecipe(recipe *nutrition.Recipe) error {
	if strings.TrimSpace(recipe.Name) == "" {
		return common.NewValidationError("recipe name is required")
	}
	if len(recipe.Ingredients) == 0 {
		return common.NewValidationError("recipe must have at least one ingredient")
	}
	for i, ing := range recipe.Ingredients {
		if ing.FoodID == "" {
			return common.NewValidationError(fmt.Sprintf("ingredient %d is missing a food id", i))
		}
		if ing.Quantity <= 0 {
			return common.NewValidationError(fmt.Sprintf("ingredient %d quantity must be positive", i))
		}
	}
	if recipe.Servings <= 0 {
		return common.NewValidationError("recipe servings must be positive")
	}
	return nil
}

func validateMenu(menu *nutrition.Menu) error {
	if strings.TrimSpace(menu.Name) == "" {
		return common.NewValidationError("menu name is required")
	}
	for i, item := range menu.Items {
		if item.Type != nutrition.MenuItemFood && item.Type != nutrition.MenuItemRecipe {
			return common.NewValidationError(fmt.Sprintf("menu item %d has unknown type %q", i, item.Type))
		}
		if item.ItemID == "" {
			return common.NewValidationError(fmt.Sprintf("menu item %d is missing an item id", i))
		}
		if item.Portions <= 0 {
			return common.NewValidationError(fmt.Sprintf("menu item %d portions must be positive", i))
		}
	}
	return nil
}
