package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wardenbot/warden/internal/modules/analytics/dto"
	analyticsService "github.com/wardenbot/warden/internal/modules/analytics/service"
	"github.com/wardenbot/warden/pkg/apperror"
	"github.com/wardenbot/warden/pkg/response"
	"github.com/wardenbot/warden/pkg/validator"
)

type AnalyticsHandler struct {
	service analyticsService.AnalyticsService
}

func NewAnalyticsHandler(service analyticsService.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) GetComprehensive(c *gin.Context) {
	guildID := c.Param("guildId")
	if guildID == "" {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	var query dto.RangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	analytics, err := h.service.Comprehensive(c.Request.Context(), guildID, query.Days)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": analytics})
}

func (h *AnalyticsHandler) GetRealtime(c *gin.Context) {
	guildID := c.Param("guildId")
	if guildID == "" {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	stats, err := h.service.Realtime(c.Request.Context(), guildID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (h *AnalyticsHandler) GetLeaderboard(c *gin.Context) {
	guildID := c.Param("guildId")
	if guildID == "" {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	var query dto.LeaderboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	leaderboard, err := h.service.Leaderboard(c.Request.Context(), guildID, query.Type, query.Days, query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": leaderboard})
}

func (h *AnalyticsHandler) GetPredictions(c *gin.Context) {
	guildID := c.Param("guildId")
	if guildID == "" {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	prediction, err := h.service.PredictGrowth(c.Request.Context(), guildID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": prediction})
}

func (h *AnalyticsHandler) GetComparison(c *gin.Context) {
	guildID := c.Param("guildId")
	if guildID == "" {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	var query dto.RangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	comparison, err := h.service.Compare(c.Request.Context(), guildID, query.Days)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": comparison})
}
