package ingestion

import (
	"errors"
	"net/http"
	"strings"

	"nutrition-planner/internal/core/ingest"
	"nutrition-planner/internal/core/lookup"
	"nutrition-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler 食譜匯入與營養查詢處理程序
type Handler struct {
	ingest *ingest.Service
	lookup *lookup.Client
}

// NewHandler 創建匯入處理程序
func NewHandler(ingestService *ingest.Service, lookupClient *lookup.Client) *Handler {
	return &Handler{
		ingest: ingestService,
		lookup: lookupClient,
	}
}

// IngestRecipe 匯入一份外部食譜
// POST /ingest/recipe，請求體為完整食譜（名稱、食材、步驟）
func (h *Handler) IngestRecipe(c *gin.Context) {
	reqID := requestID(c)

	var recipe ingest.GeneratedRecipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		common.LogWarn("匯入請求格式無效",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}

	report, err := h.ingest.Ingest(c.Request.Context(), &recipe)
	if err != nil {
		respondError(c, err)
		return
	}

	common.LogInfo("外部食譜匯入完成",
		zap.String("recipe_id", report.Recipe.ID),
		zap.Int("resolutions", len(report.Resolutions)),
		zap.String("request_id", reqID),
	)
	c.JSON(http.StatusCreated, report)
}

// GenerateRecipe 生成食譜並匯入
// POST /ingest/generate
func (h *Handler) GenerateRecipe(c *gin.Context) {
	reqID := requestID(c)

	var req ingest.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}

	common.LogInfo("開始生成並匯入食譜",
		zap.String("dish", req.DishName),
		zap.String("request_id", reqID),
	)

	report, err := h.ingest.GenerateAndIngest(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// LookupRequest 自然語言營養查詢請求
type LookupRequest struct {
	Query string `json:"query" binding:"required"`
}

// LookupNutrition 查詢描述中各品項的營養
// POST /lookup/nutrition
func (h *Handler) LookupNutrition(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required", "code": common.ErrCodeInvalidRequest})
		return
	}

	foods, err := h.lookup.NaturalNutrients(c.Request.Context(), req.Query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods, "count": len(foods)})
}

func requestID(c *gin.Context) string {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = uuid.New().String()
		c.Header("X-Request-ID", id)
	}
	return id
}

func respondError(c *gin.Context, err error) {
	if common.IsValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": common.ErrCodeInvalidRequest})
		return
	}
	var custom *common.CustomError
	if errors.As(err, &custom) {
		c.JSON(custom.Status, gin.H{"error": custom.Message, "code": custom.Code})
		return
	}
	common.LogError("未預期的服務錯誤",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": common.ErrCodeInternalError})
}
