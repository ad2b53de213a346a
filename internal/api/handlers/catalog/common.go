package catalog

import (
	"errors"
	"net/http"

	"nutrition-planner/internal/pkg/common"
	"nutrition-planner/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// requestID 取出或補上請求 ID
func requestID(c *gin.Context) string {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = uuid.New().String()
		c.Header("X-Request-ID", id)
	}
	return id
}

// respondError 把服務層錯誤對應到 HTTP 回應
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "resource not found",
			"code":  common.ErrCodeNotFound,
		})
	case errors.Is(err, store.ErrRevisionMismatch):
		c.JSON(http.StatusConflict, gin.H{
			"error": "revision mismatch; reload and retry",
			"code":  common.ErrRevisionConflict.Code,
		})
	case errors.Is(err, store.ErrRevisionRequired):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "revision is required",
			"code":  common.ErrRevisionMissing.Code,
		})
	case common.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  common.ErrCodeInvalidRequest,
		})
	default:
		var custom *common.CustomError
		if errors.As(err, &custom) {
			c.JSON(custom.Status, gin.H{
				"error": custom.Message,
				"code":  custom.Code,
			})
			return
		}
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
