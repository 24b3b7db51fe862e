// Package embed turns a character overview into the shareable banner SVG:
// preset and palette tables, the height calculation, the banner tree, sprite
// resolution and the shimmer post-processor.
package embed

import "github.com/codyseavey/git-dungeon/backend/internal/models"

// Fixed card geometry shared by every size.
const (
	SummaryCardHeight   = 76
	StatCardHeight      = 58
	EquipmentCardHeight = 96
	CardGap             = 10

	SectionTitleHeight = 18
	SectionTitleGap    = 8

	// RootGap separates the header from the content sections.
	RootGap = 18
	// ContentGap separates the stats and equipment sections.
	ContentGap = 18
)

// SizePreset holds the layout constants for one banner size.
type SizePreset struct {
	Size     models.Size
	Width    int
	PaddingX int
	PaddingY int
	// Height is the design minimum; CalculateHeight never goes below it.
	Height           int
	HeaderColumns    int
	StatsColumns     int
	EquipmentColumns int
	// StatsWidth is the stats column width when stats and equipment share a row.
	StatsWidth int
}

var presets = map[models.Size]SizePreset{
	models.SizeWide: {
		Size:             models.SizeWide,
		Width:            960,
		PaddingX:         28,
		PaddingY:         24,
		Height:           400,
		HeaderColumns:    4,
		StatsColumns:     2,
		EquipmentColumns: 2,
		StatsWidth:       300,
	},
	models.SizeCompact: {
		Size:             models.SizeCompact,
		Width:            480,
		PaddingX:         20,
		PaddingY:         20,
		Height:           560,
		HeaderColumns:    2,
		StatsColumns:     2,
		EquipmentColumns: 1,
	},
	models.SizeSquare: {
		Size:             models.SizeSquare,
		Width:            640,
		PaddingX:         24,
		PaddingY:         24,
		Height:           640,
		HeaderColumns:    2,
		StatsColumns:     2,
		EquipmentColumns: 2,
		StatsWidth:       240,
	},
}

// ResolvePreset returns the layout constants for size. Sizes outside the
// closed set resolve to models.DefaultSize.
func ResolvePreset(size models.Size) SizePreset {
	if p, ok := presets[size]; ok {
		return p
	}
	return presets[models.DefaultSize]
}

// Stacked reports whether equipment goes below stats. Only compact stacks;
// the other sizes put the two sections side by side.
func (p SizePreset) Stacked() bool {
	return p.Size == models.SizeCompact
}

// ContentWidth is the width inside the horizontal padding.
func (p SizePreset) ContentWidth() float64 {
	return float64(p.Width - 2*p.PaddingX)
}

// GainColor is the fill used for positive stat changes. InjectBonusAnimation
// keys on it, so no other palette entry may use it.
const GainColor = "#10b981"

type Palette struct {
	Background string
	Foreground string
	Border     string
	Shadow     string
	Card       string
	CardBorder string
	Muted      string
	Accent     string

	Gain     string
	GainSoft string
	Loss     string
	LossSoft string
	Neutral  string
	// NeutralSoft backs neutral badges and empty progress tracks.
	NeutralSoft string

	EmptyBorder string
	Rarity      map[models.Rarity]string
}

var rarityColors = map[models.Rarity]string{
	models.RarityCommon:    "#9ca3af",
	models.RarityUncommon:  "#22c55e",
	models.RarityRare:      "#3b82f6",
	models.RarityEpic:      "#a855f7",
	models.RarityLegendary: "#f59e0b",
}

var palettes = map[models.Theme]Palette{
	models.ThemeLight: {
		Background:  "#ffffff",
		Foreground:  "#111827",
		Border:      "#e5e7eb",
		Shadow:      "#0f172a",
		Card:        "#f9fafb",
		CardBorder:  "#e5e7eb",
		Muted:       "#6b7280",
		Accent:      "#6366f1",
		Gain:        GainColor,
		GainSoft:    "#d1fae5",
		Loss:        "#ef4444",
		LossSoft:    "#fee2e2",
		Neutral:     "#6b7280",
		NeutralSoft: "#f3f4f6",
		EmptyBorder: "#d1d5db",
		Rarity:      rarityColors,
	},
	models.ThemeDark: {
		Background:  "#0f172a",
		Foreground:  "#f8fafc",
		Border:      "#1e293b",
		Shadow:      "#000000",
		Card:        "#111c33",
		CardBorder:  "#243047",
		Muted:       "#94a3b8",
		Accent:      "#818cf8",
		Gain:        GainColor,
		GainSoft:    "#064e3b",
		Loss:        "#ef4444",
		LossSoft:    "#450a0a",
		Neutral:     "#94a3b8",
		NeutralSoft: "#1e293b",
		EmptyBorder: "#334155",
		Rarity:      rarityColors,
	},
}

// ResolvePalette returns the colours for theme. Themes outside the closed
// set resolve to models.DefaultTheme.
func ResolvePalette(theme models.Theme) Palette {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes[models.DefaultTheme]
}

// RarityColor returns the badge colour for r, or the muted colour for
// rarities the palette does not know.
func (p Palette) RarityColor(r models.Rarity) string {
	if c, ok := p.Rarity[r]; ok {
		return c
	}
	return p.Muted
}

// LocaleStrings holds every label drawn on the banner.
type LocaleStrings struct {
	Level      string
	Floor      string
	Gold       string
	AP         string
	Exp        string
	BestFloor  string
	FloorUnit  string
	Stats      string
	Equipment  string
	Empty      string
	Slots      map[models.Slot]string
	StatNames  map[string]string
	Rarities   map[models.Rarity]string
	EffectName string
}

var locales = map[models.Language]LocaleStrings{
	models.LanguageKorean: {
		Level:     "레벨",
		Floor:     "층",
		Gold:      "골드",
		AP:        "AP",
		Exp:       "EXP",
		BestFloor: "최고",
		FloorUnit: "F",
		Stats:     "능력치",
		Equipment: "장비",
		Empty:     "장비 없음",
		Slots: map[models.Slot]string{
			models.SlotHelmet: "투구",
			models.SlotArmor:  "갑옷",
			models.SlotWeapon: "무기",
			models.SlotRing:   "반지",
		},
		StatNames: map[string]string{
			models.StatHP:    "HP",
			models.StatMaxHP: "최대 HP",
			models.StatAtk:   "ATK",
			models.StatDef:   "DEF",
			models.StatLuck:  "LUCK",
			models.StatAP:    "AP",
		},
		Rarities: map[models.Rarity]string{
			models.RarityCommon:    "일반",
			models.RarityUncommon:  "고급",
			models.RarityRare:      "희귀",
			models.RarityEpic:      "영웅",
			models.RarityLegendary: "전설",
		},
		EffectName: "효과",
	},
	models.LanguageEnglish: {
		Level:     "Level",
		Floor:     "Floor",
		Gold:      "Gold",
		AP:        "AP",
		Exp:       "EXP",
		BestFloor: "Best",
		FloorUnit: "F",
		Stats:     "Stats",
		Equipment: "Equipment",
		Empty:     "Empty",
		Slots: map[models.Slot]string{
			models.SlotHelmet: "Helmet",
			models.SlotArmor:  "Armor",
			models.SlotWeapon: "Weapon",
			models.SlotRing:   "Ring",
		},
		StatNames: map[string]string{
			models.StatHP:    "HP",
			models.StatMaxHP: "Max HP",
			models.StatAtk:   "ATK",
			models.StatDef:   "DEF",
			models.StatLuck:  "LUCK",
			models.StatAP:    "AP",
		},
		Rarities: map[models.Rarity]string{
			models.RarityCommon:    "Common",
			models.RarityUncommon:  "Uncommon",
			models.RarityRare:      "Rare",
			models.RarityEpic:      "Epic",
			models.RarityLegendary: "Legendary",
		},
		EffectName: "Effect",
	},
}

// ResolveStrings returns the labels for lang. Languages outside the closed
// set resolve to models.DefaultLanguage.
func ResolveStrings(lang models.Language) LocaleStrings {
	if s, ok := locales[lang]; ok {
		return s
	}
	return locales[models.DefaultLanguage]
}

func (s LocaleStrings) statName(stat string) string {
	if name, ok := s.StatNames[stat]; ok {
		return name
	}
	return stat
}

func (s LocaleStrings) rarityName(r models.Rarity) string {
	if name, ok := s.Rarities[r]; ok {
		return name
	}
	return string(r)
}

func (s LocaleStrings) slotName(slot models.Slot) string {
	if name, ok := s.Slots[slot]; ok {
		return name
	}
	return string(slot)
}
