package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wardenbot/warden/internal/gateway"
	"github.com/wardenbot/warden/pkg/response"
	"github.com/wardenbot/warden/pkg/validator"
)

// IngestHandler receives the bot process's event stream. Every endpoint is
// fire-and-forget from the bot's point of view: a 202 means the event was
// folded into the live counters.
type IngestHandler struct {
	dispatcher *gateway.Dispatcher
}

func NewIngestHandler(dispatcher *gateway.Dispatcher) *IngestHandler {
	return &IngestHandler{dispatcher: dispatcher}
}

func (h *IngestHandler) MessageCreate(c *gin.Context) {
	var ev gateway.MessageCreateEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	if err := h.dispatcher.HandleMessageCreate(c.Request.Context(), &ev); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *IngestHandler) MessageUpdate(c *gin.Context) {
	var ev gateway.MessageUpdateEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	if err := h.dispatcher.HandleMessageUpdate(c.Request.Context(), &ev); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *IngestHandler) MessageDelete(c *gin.Context) {
	var ev gateway.MessageDeleteEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	if err := h.dispatcher.HandleMessageDelete(c.Request.Context(), &ev); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *IngestHandler) VoiceState(c *gin.Context) {
	var ev gateway.VoiceStateEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	if err := h.dispatcher.HandleVoiceState(c.Request.Context(), &ev); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *IngestHandler) Member(c *gin.Context) {
	var ev gateway.MemberEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	if err := h.dispatcher.HandleMember(c.Request.Context(), &ev); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *IngestHandler) Reaction(c *gin.Context) {
	var ev gateway.ReactionEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	if err := h.dispatcher.HandleReaction(c.Request.Context(), &ev); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *IngestHandler) Command(c *gin.Context) {
	var ev gateway.CommandEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	if err := h.dispatcher.HandleCommand(c.Request.Context(), &ev); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *IngestHandler) Role(c *gin.Context) {
	var ev gateway.RoleEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	if err := h.dispatcher.HandleRole(c.Request.Context(), &ev); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *IngestHandler) Directory(c *gin.Context) {
	var ev gateway.DirectoryUpdate
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	h.dispatcher.HandleDirectoryUpdate(c.Request.Context(), &ev)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
