package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codyseavey/git-dungeon/backend/internal/metrics"
	"github.com/codyseavey/git-dungeon/backend/internal/models"
)

var (
	ErrCharacterNotFound = errors.New("character not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrInvalidUsername   = errors.New("invalid username")
)

// CharacterService stores characters and their inventories.
type CharacterService struct {
	db *gorm.DB
	// devMode cross-checks client-supplied equipment bonuses.
	devMode bool
}

func NewCharacterService(db *gorm.DB, devMode bool) *CharacterService {
	return &CharacterService{db: db, devMode: devMode}
}

// NormalizeUsername lowercases and trims a GitHub username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// GetCharacter loads a character with its items in submitted order.
func (s *CharacterService) GetCharacter(ctx context.Context, username string) (*models.Character, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	var c models.Character
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position, created_at, id")
		}).
		First(&c, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCharacterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading character %s: %w", username, err)
	}
	return &c, nil
}

// GetOverview returns the renderer input for a stored character. The
// equipment bonus is always computed from the equipped items.
func (s *CharacterService) GetOverview(ctx context.Context, username string) (models.CharacterOverview, error) {
	c, err := s.GetCharacter(ctx, username)
	if err != nil {
		return models.CharacterOverview{}, err
	}
	return c.Overview(), nil
}

// SaveCharacter creates or replaces a character and its inventory. Items
// without an id are assigned one, slots are normalized and only the first
// equipped item per slot stays equipped.
func (s *CharacterService) SaveCharacter(ctx context.Context, username string, update models.CharacterUpdate) (*models.Character, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	items := prepareItems(username, update.Items)
	s.checkBonus(username, update.EquipmentBonus, items)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Character
		err := tx.First(&c, "username = ?", username).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		c.Username = username
		c.Level = update.Level
		c.Exp = update.Exp
		c.ExpToLevel = update.ExpToLevel
		c.Gold = update.Gold
		c.AP = update.AP
		c.FloorCurrent = update.Floor.Current
		c.FloorBest = update.Floor.Best
		c.FloorProgress = update.Floor.Progress
		c.BaseStats = update.BaseStats
		if err := tx.Omit("Items").Save(&c).Error; err != nil {
			return err
		}

		if err := tx.Where("character_id = ?", username).Delete(&models.InventoryItem{}).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			return tx.Create(&items).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("saving character %s: %w", username, err)
	}

	s.refreshMetrics(ctx)
	log.Printf("Character service: saved %s with %d items", username, len(items))
	return s.GetCharacter(ctx, username)
}

func prepareItems(username string, in []models.InventoryItem) []models.InventoryItem {
	items := make([]models.InventoryItem, len(in))
	equipped := make(map[models.Slot]bool)
	for i, item := range in {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.CharacterID = username
		item.Position = i
		item.Slot = models.NormalizeSlot(string(item.Slot))
		if item.IsEquipped {
			if equipped[item.Slot] {
				item.IsEquipped = false
			}
			equipped[item.Slot] = true
		}
		items[i] = item
	}
	return items
}

// checkBonus logs when a client-computed equipment bonus disagrees with the
// server's. Only active in dev mode.
func (s *CharacterService) checkBonus(username string, submitted *models.StatBlock, items []models.InventoryItem) {
	if !s.devMode || submitted == nil {
		return
	}
	computed := models.EquipmentBonus(items)
	if *submitted != computed {
		metrics.BonusMismatchTotal.Inc()
		log.Printf("Character service: equipment bonus mismatch for %s: submitted %+v, computed %+v", username, *submitted, computed)
	}
}

// CheckItem returns ErrCharacterNotFound or ErrItemNotFound unless the
// character owns the item.
func (s *CharacterService) CheckItem(ctx context.Context, username, itemID string) error {
	username = NormalizeUsername(username)
	if username == "" {
		return ErrInvalidUsername
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Character{}).
		Where("username = ?", username).Count(&count).Error; err != nil {
		return fmt.Errorf("checking character %s: %w", username, err)
	}
	if count == 0 {
		return ErrCharacterNotFound
	}
	if err := s.db.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("id = ? AND character_id = ?", itemID, username).Count(&count).Error; err != nil {
		return fmt.Errorf("checking item %s: %w", itemID, err)
	}
	if count == 0 {
		return ErrItemNotFound
	}
	return nil
}

// SetItemSprite points an item at a new sprite reference and bumps the
// character's update time so cached embeds are re-rendered.
func (s *CharacterService) SetItemSprite(ctx context.Context, username, itemID, sprite string) error {
	username = NormalizeUsername(username)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InventoryItem{}).
			Where("id = ? AND character_id = ?", itemID, username).
			Update("sprite", sprite)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrItemNotFound
		}
		return tx.Model(&models.Character{}).
			Where("username = ?", username).
			Update("updated_at", time.Now()).Error
	})
}

func (s *CharacterService) refreshMetrics(ctx context.Context) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Character{}).Count(&count).Error; err != nil {
		log.Printf("Character service: failed to count characters: %v", err)
		return
	}
	metrics.CharactersTotal.Set(float64(count))
}
