package transport

import (
	"errors"
	"mime"
	"net/http"

	"github.com/ds124wfegd/negative-web/internal/database"
	"github.com/ds124wfegd/negative-web/internal/entity"
	"github.com/ds124wfegd/negative-web/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

func (h *Handler) DownloadArtifact(c *gin.Context) {
	h.serveArtifact(c, database.FileBlob)
}

func (h *Handler) PreviewArtifact(c *gin.Context) {
	h.serveArtifact(c, database.FilePreview)
}

// serveArtifact only serves artifacts owned by the caller's session.
func (h *Handler) serveArtifact(c *gin.Context, kind database.FileKind) {
	sess := middleware.CurrentSession(c)

	reader, artifact, err := h.services.Artifacts.Open(c.Param("id"), kind)
	if err != nil {
		if errors.Is(err, entity.ErrArtifactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Artifact not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open artifact"})
		return
	}
	defer reader.Close()

	if artifact.SessionID != sess.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artifact not found"})
		return
	}

	if kind == database.FilePreview {
		c.DataFromReader(http.StatusOK, -1, "image/png", reader, nil)
		return
	}

	c.DataFromReader(http.StatusOK, artifact.Size, artifact.ContentType, reader, map[string]string{
		"Content-Disposition": attachment(artifact.Filename),
	})
}

func attachment(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}
