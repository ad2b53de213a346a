package catalog

import (
	"net/http"

	catalogService "nutrition-planner/internal/core/catalog"
	"nutrition-planner/internal/core/nutrition"
	"nutrition-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 目錄處理程序，涵蓋食物、食譜、菜單的維護
type Handler struct {
	catalog *catalogService.Service
}

// NewHandler 創建目錄處理程序
func NewHandler(catalog *catalogService.Service) *Handler {
	return &Handler{catalog: catalog}
}

// CreateFood 建立食物
func (h *Handler) CreateFood(c *gin.Context) {
	reqID := requestID(c)

	var food nutrition.Food
	if err := c.ShouldBindJSON(&food); err != nil {
		common.LogWarn("食物請求格式無效",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}

	created, err := h.catalog.CreateFood(c.Request.Context(), &food)
	if err != nil {
		respondError(c, err)
		return
	}

	common.LogInfo("食物已建立",
		zap.String("food_id", created.ID),
		zap.String("name", created.Name),
		zap.String("request_id", reqID),
	)
	c.JSON(http.StatusCreated, created)
}

// GetFood 讀取食物
func (h *Handler) GetFood(c *gin.Context) {
	food, err := h.catalog.GetFood(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

// ListFoods 列出全部食物
func (h *Handler) ListFoods(c *gin.Context) {
	foods, err := h.catalog.AllFoods(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods, "count": len(foods)})
}

// UpdateFood 更新食物，請求體必須帶 rev
func (h *Handler) UpdateFood(c *gin.Context) {
	var food nutrition.Food
	if err := c.ShouldBindJSON(&food); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}
	food.ID = c.Param("id")

	updated, err := h.catalog.UpdateFood(c.Request.Context(), &food)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteFood 刪除食物，rev 由查詢參數帶入
func (h *Handler) DeleteFood(c *gin.Context) {
	if err := h.catalog.DeleteFood(c.Request.Context(), c.Param("id"), c.Query("rev")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
