package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/codyseavey/git-dungeon/backend/internal/models"
)

// RunMigrations runs any custom data migrations after schema changes.
// Each migration is safe to run repeatedly.
func RunMigrations(db *gorm.DB) error {
	if err := normalizeItemSlots(db); err != nil {
		return err
	}
	return dedupeEquippedSlots(db)
}

// normalizeItemSlots rewrites legacy slot names ("helm", "chest", ...) to the
// canonical slot set.
func normalizeItemSlots(db *gorm.DB) error {
	var slots []string
	if err := db.Model(&models.InventoryItem{}).Distinct().Pluck("slot", &slots).Error; err != nil {
		return err
	}

	for _, slot := range slots {
		canonical := string(models.NormalizeSlot(slot))
		if canonical == slot {
			continue
		}
		result := db.Model(&models.InventoryItem{}).Where("slot = ?", slot).Update("slot", canonical)
		if result.Error != nil {
			log.Printf("Warning: failed to normalize slot %q: %v", slot, result.Error)
			continue
		}
		log.Printf("Normalized %d inventory items from slot %q to %q", result.RowsAffected, slot, canonical)
	}
	return nil
}

// dedupeEquippedSlots unequips all but the first equipped item in each slot
// of each character, by submitted position and then age, matching the rule
// applied when a character is saved.
func dedupeEquippedSlots(db *gorm.DB) error {
	result := db.Exec(`
		UPDATE inventory_items
		SET is_equipped = false
		WHERE is_equipped = true AND id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (
					PARTITION BY character_id, slot
					ORDER BY position, created_at, id
				) AS rn
				FROM inventory_items
				WHERE is_equipped = true
			) WHERE rn = 1
		)
	`)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Unequipped %d items sharing a slot with another equipped item", result.RowsAffected)
	}
	return nil
}
