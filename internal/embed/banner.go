package embed

import (
	"golang.org/x/text/message"

	"github.com/codyseavey/git-dungeon/backend/internal/models"
)

// Tone classifies a signed value for colouring.
type Tone string

const (
	ToneGain    Tone = "gain"
	ToneLoss    Tone = "loss"
	ToneNeutral Tone = "neutral"
)

func ToneOf(v int) Tone {
	switch {
	case v > 0:
		return ToneGain
	case v < 0:
		return ToneLoss
	}
	return ToneNeutral
}

// Badge is a small pill of text. Color overrides the tone colour for rarity
// and effect badges.
type Badge struct {
	Text  string
	Tone  Tone
	Color string
}

type StatCard struct {
	Key   string
	Label string
	Value string
	// Bonus is nil when the equipment bonus for this stat is zero.
	Bonus *Badge
}

type EquipmentCard struct {
	Slot      models.Slot
	SlotLabel string

	Empty      bool
	EmptyLabel string

	Name      string
	Initials  string
	Sprite    string
	Rarity    Badge
	Modifiers []Badge
	Effect    *Badge
}

// BannerModel is the fully resolved content of one banner, before it is
// turned into a box tree.
type BannerModel struct {
	Preset  SizePreset
	Palette Palette
	Strings LocaleStrings
	Width   int
	Height  int

	Summary   []SummaryEntry
	Stats     []StatCard
	Equipment []EquipmentCard
}

var statCardOrder = []string{models.StatHP, models.StatAtk, models.StatDef, models.StatLuck}

// BuildBannerModel resolves the preset, palette and strings for cfg and
// formats the overview into header, stat and equipment cards.
func BuildBannerModel(cfg RenderConfig) *BannerModel {
	preset := ResolvePreset(cfg.Size)
	pal := ResolvePalette(cfg.Theme)
	strs := ResolveStrings(cfg.Language)
	p := NewPrinter(cfg.Language)
	o := cfg.Overview

	m := &BannerModel{
		Preset:    preset,
		Palette:   pal,
		Strings:   strs,
		Width:     preset.Width,
		Summary:   BuildSummaryEntries(o, strs, p),
		Stats:     buildStatCards(o.Stats, strs, p),
		Equipment: buildEquipmentCards(o.Equipment, cfg.Sprites, pal, strs, p),
	}
	m.Height = CalculateHeight(preset, len(m.Summary), len(m.Stats), len(m.Equipment))
	return m
}

func statValue(b models.StatBlock, stat string) int {
	switch stat {
	case models.StatHP:
		return b.HP
	case models.StatMaxHP:
		return b.MaxHP
	case models.StatAtk:
		return b.Atk
	case models.StatDef:
		return b.Def
	case models.StatLuck:
		return b.Luck
	case models.StatAP:
		return b.AP
	}
	return 0
}

func buildStatCards(stats models.StatSummary, s LocaleStrings, p *message.Printer) []StatCard {
	cards := make([]StatCard, 0, len(statCardOrder))
	for _, stat := range statCardOrder {
		card := StatCard{
			Key:   stat,
			Label: s.statName(stat),
			Value: formatNumber(p, statValue(stats.Total, stat)),
		}
		bonus := statValue(stats.EquipmentBonus, stat)
		if stat == models.StatHP {
			if stats.Total.MaxHP > 0 {
				card.Value += " / " + formatNumber(p, stats.Total.MaxHP)
			}
			// Items raise max HP more often than current HP.
			if bonus == 0 {
				bonus = stats.EquipmentBonus.MaxHP
			}
		}
		if bonus != 0 {
			card.Bonus = &Badge{Text: formatSigned(p, bonus), Tone: ToneOf(bonus)}
		}
		cards = append(cards, card)
	}
	return cards
}

// buildEquipmentCards returns exactly one card per equipment slot in display
// order. The first item found for a slot wins.
func buildEquipmentCards(items []models.InventoryItem, catalog SpriteCatalog, pal Palette, s LocaleStrings, p *message.Printer) []EquipmentCard {
	bySlot := make(map[models.Slot]models.InventoryItem, len(items))
	for _, item := range items {
		slot := models.NormalizeSlot(string(item.Slot))
		if _, taken := bySlot[slot]; !taken {
			bySlot[slot] = item
		}
	}

	slots := models.EquipmentSlots()
	cards := make([]EquipmentCard, 0, len(slots))
	for _, slot := range slots {
		card := EquipmentCard{Slot: slot, SlotLabel: s.slotName(slot)}
		item, ok := bySlot[slot]
		if !ok {
			card.Empty = true
			card.EmptyLabel = s.Empty
			cards = append(cards, card)
			continue
		}

		card.Name = displayName(item)
		card.Initials = Initials(item)
		card.Sprite = ResolveSprite(item, catalog, pal)
		card.Rarity = Badge{
			Text:  s.rarityName(item.Rarity),
			Tone:  ToneNeutral,
			Color: pal.RarityColor(item.Rarity),
		}
		for _, mod := range item.Modifiers {
			card.Modifiers = append(card.Modifiers, Badge{
				Text: s.statName(mod.Stat) + " " + formatSigned(p, mod.Value),
				Tone: ToneOf(mod.Value),
			})
		}
		if item.Effect != nil {
			label := item.Effect.Label
			if label == "" {
				label = item.Effect.Code
			}
			if label != "" {
				card.Effect = &Badge{Text: label, Tone: ToneNeutral, Color: pal.Accent}
			}
		}
		cards = append(cards, card)
	}
	return cards
}

func displayName(item models.InventoryItem) string {
	switch {
	case item.Name != "":
		return item.Name
	case item.Code != "":
		return item.Code
	}
	return item.ID
}
