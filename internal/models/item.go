package models

import (
	"strings"
	"time"
)

type Slot string

const (
	SlotHelmet Slot = "helmet"
	SlotArmor  Slot = "armor"
	SlotWeapon Slot = "weapon"
	SlotRing   Slot = "ring"
)

// EquipmentSlots is the fixed order in which equipment is displayed.
func EquipmentSlots() []Slot {
	return []Slot{SlotHelmet, SlotArmor, SlotWeapon, SlotRing}
}

// NormalizeSlot maps legacy and differently-cased slot names onto the
// canonical set. Unknown names are returned lowercased and trimmed.
func NormalizeSlot(s string) Slot {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "helm", "head", "hat":
		return SlotHelmet
	case "body", "chest":
		return SlotArmor
	case "sword", "weapons":
		return SlotWeapon
	case "accessory", "rings":
		return SlotRing
	}
	return Slot(s)
}

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Modifier is a flat stat change granted by an item.
type Modifier struct {
	Stat  string `json:"stat"`
	Value int    `json:"value"`
}

// ItemEffect is a special effect attached to an item, e.g. "lifesteal".
type ItemEffect struct {
	Code  string `json:"code"`
	Label string `json:"label,omitempty"`
}

type InventoryItem struct {
	ID          string      `json:"id" gorm:"primaryKey"`
	CharacterID string      `json:"-" gorm:"index;not null"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Slot        Slot        `json:"slot" gorm:"index"`
	Rarity      Rarity      `json:"rarity"`
	Modifiers   []Modifier  `json:"modifiers" gorm:"serializer:json"`
	Effect      *ItemEffect `json:"effect,omitempty" gorm:"serializer:json"`
	Sprite      string      `json:"sprite"`
	IsEquipped  bool        `json:"is_equipped" gorm:"index"`
	// Position keeps the submitted inventory order; first match per slot wins.
	Position  int       `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
