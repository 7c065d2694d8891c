package transport

import (
	"errors"
	"io"
	"net/http"

	"github.com/ds124wfegd/negative-web/internal/entity"
	"github.com/ds124wfegd/negative-web/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

func (h *Handler) Index(c *gin.Context) {
	state := middleware.CurrentSession(c).Store.Snapshot()
	c.HTML(http.StatusOK, "index.html", gin.H{"State": state.UIState})
}

func (h *Handler) State(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentSession(c).Store.Snapshot().UIState)
}

func (h *Handler) SetInput(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	h.respond(c, h.services.Echo.SetInput(c.Request.Context(), sess, c.PostForm("input")))
}

// CallService handles both echo buttons. A posted input field counts as the
// text box changing before the click.
func (h *Handler) CallService(endpoint entity.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.CurrentSession(c)
		if input, ok := c.GetPostForm("input"); ok {
			h.services.Echo.SetInput(c.Request.Context(), sess, input)
		}

		state, err := h.services.Echo.Call(c.Request.Context(), sess, endpoint)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.respond(c, state)
	}
}

func (h *Handler) SelectFile(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	file, err := h.readFile(c)
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		h.uploadError(c, err)
		return
	}
	h.respond(c, h.services.Negative.SelectFile(c.Request.Context(), sess, file))
}

// CreateNegative uploads the selected file. A file posted with the request
// replaces the selection first.
func (h *Handler) CreateNegative(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	file, err := h.readFile(c)
	switch {
	case err == nil:
		h.services.Negative.SelectFile(c.Request.Context(), sess, file)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		h.uploadError(c, err)
		return
	}

	h.respond(c, h.services.Negative.Create(c.Request.Context(), sess))
}

func (h *Handler) Reset(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	h.respond(c, h.services.Sessions.Reset(c.Request.Context(), sess))
}

func (h *Handler) EndSession(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	h.services.Sessions.Teardown(c.Request.Context(), sess.ID)
	c.Status(http.StatusNoContent)
}

func (h *Handler) readFile(c *gin.Context) (*entity.SelectedFile, error) {
	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	}

	header, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &entity.SelectedFile{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

func (h *Handler) uploadError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload"})
}
