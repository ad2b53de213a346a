package analysis

import (
	"errors"
	"net/http"
	"strconv"

	catalogService "nutrition-planner/internal/core/catalog"
	"nutrition-planner/internal/core/nutrition"
	"nutrition-planner/internal/core/shopping"
	"nutrition-planner/internal/pkg/common"
	"nutrition-planner/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 營養計算處理程序
type Handler struct {
	catalog *catalogService.Service
}

// NewHandler 創建營養計算處理程序
func NewHandler(catalog *catalogService.Service) *Handler {
	return &Handler{catalog: catalog}
}

// NutritionResponse 營養計算回應
// warnings 帶出計算過程中被略過或以預設值代替的項目
type NutritionResponse struct {
	Nutrients nutrition.NutrientProfile `json:"nutrients"`
	Warnings  []nutrition.Warning       `json:"warnings,omitempty"`
}

// FoodNutrition 計算指定份量的食物營養
// GET /foods/:id/nutrition?quantity=250&unit=g
func (h *Handler) FoodNutrition(c *gin.Context) {
	food, err := h.catalog.GetFood(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	quantity := food.Serving.Size
	unit := food.Serving.Unit
	if q := c.Query("quantity"); q != "" {
		parsed, err := strconv.ParseFloat(q, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "quantity must be a positive number",
				"code":  common.ErrCodeInvalidRequest,
			})
			return
		}
		quantity = parsed
	}
	if u := c.Query("unit"); u != "" {
		unit = u
	}

	profile, warnings := nutrition.ScaleFood(food, quantity, unit)
	c.JSON(http.StatusOK, NutritionResponse{Nutrients: profile, Warnings: warnings})
}

// RecipeNutrition 計算食譜營養
// GET /recipes/:id/nutrition?per_serving=true
func (h *Handler) RecipeNutrition(c *gin.Context) {
	recipe, err := h.catalog.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var profile nutrition.NutrientProfile
	var warnings []nutrition.Warning
	if c.Query("per_serving") == "true" {
		profile, warnings = nutrition.RecipeNutritionPerServing(c.Request.Context(), h.catalog, recipe)
	} else {
		profile, warnings = nutrition.RecipeNutrition(c.Request.Context(), h.catalog, recipe)
	}

	if len(warnings) > 0 {
		common.LogWarn("食譜營養計算附帶警告",
			zap.String("recipe_id", recipe.ID),
			zap.Int("warnings", len(warnings)),
		)
	}
	c.JSON(http.StatusOK, NutritionResponse{Nutrients: profile, Warnings: warnings})
}

// MenuNutrition 計算菜單營養
// GET /menus/:id/nutrition
func (h *Handler) MenuNutrition(c *gin.Context) {
	menu, err := h.catalog.GetMenu(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	profile, warnings := nutrition.MenuNutrition(c.Request.Context(), h.catalog, menu)
	if len(warnings) > 0 {
		common.LogWarn("菜單營養計算附帶警告",
			zap.String("menu_id", menu.ID),
			zap.Int("warnings", len(warnings)),
		)
	}
	c.JSON(http.StatusOK, NutritionResponse{Nutrients: profile, Warnings: warnings})
}

// ShoppingList 展開菜單為購物清單
// GET /menus/:id/shopping-list
func (h *Handler) ShoppingList(c *gin.Context) {
	menu, err := h.catalog.GetMenu(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	list, err := shopping.BuildList(c.Request.Context(), h.catalog, menu)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "resource not found",
			"code":  common.ErrCodeNotFound,
		})
	case common.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  common.ErrCodeInvalidRequest,
		})
	default:
		common.LogError("未預期的服務錯誤",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
			"code":  common.ErrCodeInternalError,
		})
	}
}
