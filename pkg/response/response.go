package response

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wardenbot/warden/pkg/apperror"
)

// GetClientID retrieves the authenticated API client ID from the context
func GetClientID(c *gin.Context) (string, error) {
	clientID, exists := c.Get("client_id")
	if !exists {
		return "", apperror.ErrUnauthorized
	}

	id, ok := clientID.(string)
	if !ok || id == "" {
		return "", apperror.ErrUnauthorized
	}

	return id, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
