package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "negative-web",
	})
}

func (h *Handler) BackendHealth(c *gin.Context) {
	results, err := h.services.Health.Backends(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"backends": results, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"backends": results})
}
