package catalog

import (
	"net/http"

	"nutrition-planner/internal/core/nutrition"
	"nutrition-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateRecipe 建立食譜
func (h *Handler) CreateRecipe(c *gin.Context) {
	reqID := requestID(c)

	var recipe nutrition.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		common.LogWarn("食譜請求格式無效",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}

	created, err := h.catalog.CreateRecipe(c.Request.Context(), &recipe)
	if err != nil {
		respondError(c, err)
		return
	}

	common.LogInfo("食譜已建立",
		zap.String("recipe_id", created.ID),
		zap.String("name", created.Name),
		zap.String("request_id", reqID),
	)
	c.JSON(http.StatusCreated, created)
}

// GetRecipe 讀取食譜
func (h *Handler) GetRecipe(c *gin.Context) {
	recipe, err := h.catalog.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// ListRecipes 列出全部食譜
func (h *Handler) ListRecipes(c *gin.Context) {
	recipes, err := h.catalog.AllRecipes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes, "count": len(recipes)})
}

// UpdateRecipe 更新食譜，請求體必須帶 rev
func (h *Handler) UpdateRecipe(c *gin.Context) {
	var recipe nutrition.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}
	recipe.ID = c.Param("id")

	updated, err := h.catalog.UpdateRecipe(c.Request.Context(), &recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteRecipe 刪除食譜，rev 由查詢參數帶入
func (h *Handler) DeleteRecipe(c *gin.Context) {
	if err := h.catalog.DeleteRecipe(c.Request.Context(), c.Param("id"), c.Query("rev")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
