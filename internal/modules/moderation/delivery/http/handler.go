package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wardenbot/warden/internal/modules/moderation/dto"
	moderationService "github.com/wardenbot/warden/internal/modules/moderation/service"
	"github.com/wardenbot/warden/pkg/apperror"
	"github.com/wardenbot/warden/pkg/response"
	"github.com/wardenbot/warden/pkg/validator"
)

type ModerationHandler struct {
	service moderationService.ModerationService
}

func NewModerationHandler(service moderationService.ModerationService) *ModerationHandler {
	return &ModerationHandler{service: service}
}

func (h *ModerationHandler) CreateCase(c *gin.Context) {
	var req dto.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	created, err := h.service.CreateCase(c.Request.Context(), &req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (h *ModerationHandler) ListCases(c *gin.Context) {
	guildID := c.Param("guildId")
	if guildID == "" {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	var query dto.CaseListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	cases, err := h.service.ListCases(c.Request.Context(), guildID, query.UserID, query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cases})
}

func (h *ModerationHandler) GetCase(c *gin.Context) {
	guildID := c.Param("guildId")
	caseID, err := strconv.Atoi(c.Param("caseId"))
	if guildID == "" || err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	modCase, err := h.service.GetCase(c.Request.Context(), guildID, caseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": modCase})
}

func (h *ModerationHandler) ResolveCase(c *gin.Context) {
	guildID := c.Param("guildId")
	caseID, err := strconv.Atoi(c.Param("caseId"))
	if guildID == "" || err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	if err := h.service.ResolveCase(c.Request.Context(), guildID, caseID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "case resolved"})
}
