package embed

import (
	"math"

	"golang.org/x/text/message"

	"github.com/codyseavey/git-dungeon/backend/internal/models"
)

// CalcPercent returns current/total as a whole percentage clamped to
// [0, 100]. A non-positive total yields 0.
func CalcPercent(current, total int) int {
	if total <= 0 {
		return 0
	}
	p := float64(current) / float64(total) * 100
	if math.IsNaN(p) || p <= 0 {
		return 0
	}
	if p >= 100 {
		return 100
	}
	return int(math.Round(p))
}

// SectionHeight is the height of a grid of count cards laid out in columns,
// plus the section title when titled. Empty sections collapse to zero.
func SectionHeight(count, columns int, cardHeight float64, titled bool) float64 {
	if count <= 0 {
		return 0
	}
	columns = max(columns, 1)
	rows := float64((count + columns - 1) / columns)
	h := rows*cardHeight + (rows-1)*CardGap
	if titled {
		h += SectionTitleHeight + SectionTitleGap
	}
	return h
}

// CalculateHeight returns the banner height for the given entry counts. The
// stats and equipment sections are summed for every size, so side by side
// layouts get headroom rather than clipping. It never returns less than the
// preset's design height.
func CalculateHeight(p SizePreset, headerCount, statCount, equipmentCount int) int {
	header := SectionHeight(headerCount, p.HeaderColumns, SummaryCardHeight, false)
	stats := SectionHeight(statCount, p.StatsColumns, StatCardHeight, true)
	equipment := SectionHeight(equipmentCount, p.EquipmentColumns, EquipmentCardHeight, true)

	content := stats + equipment
	if stats > 0 && equipment > 0 {
		content += ContentGap
	}

	total := 2*float64(p.PaddingY) + header
	if content > 0 {
		total += RootGap + content
	}
	return max(p.Height, int(math.Ceil(total)))
}

// SummaryEntry is one header card.
type SummaryEntry struct {
	Key     string
	Title   string
	Value   string
	Caption string
	// Progress is a percentage, drawn only when HasProgress is set.
	Progress    int
	HasProgress bool
}

// BuildSummaryEntries returns the four header cards in their fixed order:
// level, floor, gold and AP.
func BuildSummaryEntries(o models.CharacterOverview, s LocaleStrings, p *message.Printer) []SummaryEntry {
	return []SummaryEntry{
		{
			Key:         "level",
			Title:       s.Level,
			Value:       "Lv. " + formatNumber(p, o.Level),
			Caption:     s.Exp + " " + formatNumber(p, o.Exp) + " / " + formatNumber(p, o.ExpToLevel),
			Progress:    CalcPercent(o.Exp, o.ExpToLevel),
			HasProgress: true,
		},
		{
			Key:         "floor",
			Title:       s.Floor,
			Value:       formatNumber(p, o.Floor.Current) + s.FloorUnit,
			Caption:     s.BestFloor + " " + formatNumber(p, o.Floor.Best) + s.FloorUnit,
			Progress:    CalcPercent(o.Floor.Progress, 100),
			HasProgress: true,
		},
		{
			Key:   "gold",
			Title: s.Gold,
			Value: formatNumber(p, o.Gold),
		},
		{
			Key:   "ap",
			Title: s.AP,
			Value: formatNumber(p, o.AP),
		},
	}
}
