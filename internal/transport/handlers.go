package transport

import (
	"net/http"
	"strings"

	"github.com/ds124wfegd/negative-web/internal/service"
	"github.com/ds124wfegd/negative-web/internal/store"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	services      *service.Services
	maxUploadSize int64
}

func NewHandler(services *service.Services, maxUploadSize int64) *Handler {
	return &Handler{services: services, maxUploadSize: maxUploadSize}
}

// respond answers API callers with the snapshot and sends browsers back to
// the page.
func (h *Handler) respond(c *gin.Context, state store.State) {
	if wantsJSON(c) {
		c.JSON(http.StatusOK, state.UIState)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func wantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/") ||
		strings.Contains(c.GetHeader("Accept"), "application/json")
}
