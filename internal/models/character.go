package models

import (
	"time"
)

type FloorProgress struct {
	Current  int `json:"current"`
	Best     int `json:"best"`
	Progress int `json:"progress"` // percent through the current floor
}

// CharacterOverview is everything the embed renderer needs about a character.
// The renderer treats it as read-only.
type CharacterOverview struct {
	Username   string          `json:"username,omitempty"`
	Level      int             `json:"level"`
	Exp        int             `json:"exp"`
	ExpToLevel int             `json:"exp_to_level"`
	Gold       int             `json:"gold"`
	AP         int             `json:"ap"`
	Floor      FloorProgress   `json:"floor"`
	Stats      StatSummary     `json:"stats"`
	Equipment  []InventoryItem `json:"equipment"`
}

// Character is the persisted game state for one GitHub user.
type Character struct {
	Username      string          `json:"username" gorm:"primaryKey"`
	Level         int             `json:"level" gorm:"default:1"`
	Exp           int             `json:"exp"`
	ExpToLevel    int             `json:"exp_to_level"`
	Gold          int             `json:"gold"`
	AP            int             `json:"ap"`
	FloorCurrent  int             `json:"floor_current" gorm:"default:1"`
	FloorBest     int             `json:"floor_best" gorm:"default:1"`
	FloorProgress int             `json:"floor_progress"`
	BaseStats     StatBlock       `json:"base_stats" gorm:"embedded;embeddedPrefix:base_"`
	Items         []InventoryItem `json:"items" gorm:"foreignKey:CharacterID;references:Username"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// EquippedItems returns the equipped subset of c.Items, preserving order.
func (c *Character) EquippedItems() []InventoryItem {
	equipped := make([]InventoryItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.IsEquipped {
			equipped = append(equipped, item)
		}
	}
	return equipped
}

// Overview builds the renderer input for c. The equipment bonus is always
// recomputed from the equipped items.
func (c *Character) Overview() CharacterOverview {
	equipped := c.EquippedItems()
	return CharacterOverview{
		Username:   c.Username,
		Level:      c.Level,
		Exp:        c.Exp,
		ExpToLevel: c.ExpToLevel,
		Gold:       c.Gold,
		AP:         c.AP,
		Floor: FloorProgress{
			Current:  c.FloorCurrent,
			Best:     c.FloorBest,
			Progress: c.FloorProgress,
		},
		Stats:     NewStatSummary(c.BaseStats, EquipmentBonus(equipped)),
		Equipment: equipped,
	}
}

// CharacterUpdate is the PUT payload for a character. EquipmentBonus is
// optional and only used to cross-check the server-side computation.
type CharacterUpdate struct {
	Level          int             `json:"level"`
	Exp            int             `json:"exp"`
	ExpToLevel     int             `json:"exp_to_level"`
	Gold           int             `json:"gold"`
	AP             int             `json:"ap"`
	Floor          FloorProgress   `json:"floor"`
	BaseStats      StatBlock       `json:"base_stats"`
	EquipmentBonus *StatBlock      `json:"equipment_bonus,omitempty"`
	Items          []InventoryItem `json:"items"`
}
