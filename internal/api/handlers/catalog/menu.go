package catalog

import (
	"net/http"

	"nutrition-planner/internal/core/nutrition"
	"nutrition-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateMenu 建立菜單
func (h *Handler) CreateMenu(c *gin.Context) {
	reqID := requestID(c)

	var menu nutrition.Menu
	if err := c.ShouldBindJSON(&menu); err != nil {
		common.LogWarn("菜單請求格式無效",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}

	created, err := h.catalog.CreateMenu(c.Request.Context(), &menu)
	if err != nil {
		respondError(c, err)
		return
	}

	common.LogInfo("菜單已建立",
		zap.String("menu_id", created.ID),
		zap.String("name", created.Name),
		zap.String("request_id", reqID),
	)
	c.JSON(http.StatusCreated, created)
}

// GetMenu 讀取菜單
func (h *Handler) GetMenu(c *gin.Context) {
	menu, err := h.catalog.GetMenu(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

// ListMenus 列出全部菜單
func (h *Handler) ListMenus(c *gin.Context) {
	menus, err := h.catalog.AllMenus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menus": menus, "count": len(menus)})
}

// UpdateMenu 更新菜單，請求體必須帶 rev
func (h *Handler) UpdateMenu(c *gin.Context) {
	var menu nutrition.Menu
	if err := c.ShouldBindJSON(&menu); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}
	menu.ID = c.Param("id")

	updated, err := h.catalog.UpdateMenu(c.Request.Context(), &menu)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteMenu 刪除菜單，rev 由查詢參數帶入
func (h *Handler) DeleteMenu(c *gin.Context) {
	if err := h.catalog.DeleteMenu(c.Request.Context(), c.Param("id"), c.Query("rev")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
