package handlers

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/git-dungeon/backend/internal/models"
	"github.com/codyseavey/git-dungeon/backend/internal/services"
)

type CharacterHandler struct {
	characterService *services.CharacterService
	spriteStorage    *services.SpriteStorageService
}

func NewCharacterHandler(characters *services.CharacterService, sprites *services.SpriteStorageService) *CharacterHandler {
	return &CharacterHandler{characterService: characters, spriteStorage: sprites}
}

// characterResponse pairs the stored character with the overview the
// renderer would receive for it.
type characterResponse struct {
	Character *models.Character        `json:"character"`
	Overview  models.CharacterOverview `json:"overview"`
}

func (h *CharacterHandler) GetCharacter(c *gin.Context) {
	character, err := h.characterService.GetCharacter(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(characterErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, characterResponse{Character: character, Overview: character.Overview()})
}

func (h *CharacterHandler) PutCharacter(c *gin.Context) {
	var req models.CharacterUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	character, err := h.characterService.SaveCharacter(c.Request.Context(), c.Param("username"), req)
	if err != nil {
		c.JSON(characterErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, characterResponse{Character: character, Overview: character.Overview()})
}

// UploadItemSprite stores a sprite for one item, taken either from a
// multipart "sprite" file or a JSON body with a base64 "image".
func (h *CharacterHandler) UploadItemSprite(c *gin.Context) {
	ctx := c.Request.Context()
	username, itemID := c.Param("username"), c.Param("id")
	if err := h.characterService.CheckItem(ctx, username, itemID); err != nil {
		c.JSON(characterErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	var data []byte

	file, err := c.FormFile("sprite")
	if err == nil {
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
			return
		}
		defer src.Close()

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(io.LimitReader(src, services.MaxSpriteBytes+1)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
			return
		}
		data = buf.Bytes()
	} else {
		var req struct {
			Image string `json:"image"` // Base64 encoded sprite
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "No sprite provided",
				"message": "Upload a sprite file or provide a base64 encoded image in the JSON body",
			})
			return
		}
		data, err = base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid base64 image data"})
			return
		}
	}

	url, err := h.spriteStorage.SaveSprite(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.characterService.SetItemSprite(ctx, username, itemID, url); err != nil {
		// The item may have been replaced since CheckItem.
		if delErr := h.spriteStorage.DeleteSprite(url); delErr != nil {
			log.Printf("Failed to remove orphaned sprite %s: %v", url, delErr)
		}
		c.JSON(characterErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	log.Printf("Stored sprite %s for item %s", url, itemID)
	c.JSON(http.StatusOK, gin.H{"sprite": url})
}

func characterErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrCharacterNotFound), errors.Is(err, services.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidUsername):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
