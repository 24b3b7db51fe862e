package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/git-dungeon/backend/internal/models"
	"github.com/codyseavey/git-dungeon/backend/internal/services"
)

type EmbedHandler struct {
	embedService *services.EmbedService
}

func NewEmbedHandler(embedService *services.EmbedService) *EmbedHandler {
	return &EmbedHandler{embedService: embedService}
}

// embedQuery holds the raw embed options. Every field falls back to its
// default when missing or unrecognised.
type embedQuery struct {
	Theme    string `form:"theme"`
	Size     string `form:"size"`
	Language string `form:"language"`
	Lang     string `form:"lang"`
	Animate  string `form:"animate"`
	Format   string `form:"format"`
}

func (q embedQuery) options() services.EmbedOptions {
	lang := q.Language
	if lang == "" {
		lang = q.Lang
	}
	animate := true
	if b, err := strconv.ParseBool(q.Animate); err == nil {
		animate = b
	}
	format := services.FormatSVG
	if q.Format == services.FormatPNG {
		format = services.FormatPNG
	}
	return services.EmbedOptions{
		Theme:    models.ParseTheme(q.Theme),
		Size:     models.ParseSize(q.Size),
		Language: models.ParseLanguage(lang),
		Animate:  animate,
		Format:   format,
	}
}

// GetEmbed serves the banner for a stored character. The username may carry
// a .svg or .png suffix so the URL works as a README image.
func (h *EmbedHandler) GetEmbed(c *gin.Context) {
	var q embedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := c.Param("username")
	switch {
	case strings.HasSuffix(username, ".png"):
		username = strings.TrimSuffix(username, ".png")
		q.Format = services.FormatPNG
	case strings.HasSuffix(username, ".svg"):
		username = strings.TrimSuffix(username, ".svg")
	}
	opts := q.options()

	out, err := h.embedService.RenderCharacter(c.Request.Context(), username, opts)
	if err != nil {
		c.JSON(embedErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, opts.ContentType(), out)
}

type previewRequest struct {
	Theme    string                    `json:"theme"`
	Size     string                    `json:"size"`
	Language string                    `json:"language"`
	Animate  *bool                     `json:"animate"`
	Format   string                    `json:"format"`
	Overview *models.CharacterOverview `json:"overview" binding:"required"`
}

func (r previewRequest) options() services.EmbedOptions {
	q := embedQuery{Theme: r.Theme, Size: r.Size, Language: r.Language, Format: r.Format}
	if r.Animate != nil {
		q.Animate = strconv.FormatBool(*r.Animate)
	}
	return q.options()
}

// PreviewEmbed renders an overview supplied by the dashboard without storing it.
func (h *EmbedHandler) PreviewEmbed(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := req.options()
	out, err := h.embedService.Render(c.Request.Context(), *req.Overview, opts)
	if err != nil {
		c.JSON(embedErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, opts.ContentType(), out)
}

func embedErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrCharacterNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidUsername):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
