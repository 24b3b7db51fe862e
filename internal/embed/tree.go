package embed

import (
	"math"

	"github.com/codyseavey/git-dungeon/backend/internal/boxsvg"
)

const (
	cardRadius   = 12
	cardPadX     = 12
	iconSize     = 56
	progressBarH = 4
)

// BuildBannerTree lays the model out as a box tree for the layout engine.
// The root is sized to m.Width x m.Height.
func BuildBannerTree(m *BannerModel) *boxsvg.Node {
	p, pal := m.Preset, m.Palette
	content := p.ContentWidth()

	var statsWidth, equipmentWidth float64
	if p.Stacked() {
		statsWidth, equipmentWidth = content, content
	} else {
		statsWidth = float64(p.StatsWidth)
		equipmentWidth = content - statsWidth - ContentGap
	}

	header := boxsvg.Box(boxsvg.Style{Direction: boxsvg.Row, Wrap: true, Gap: CardGap})
	headerCard := cardWidth(content, p.HeaderColumns)
	for _, entry := range m.Summary {
		header.Children = append(header.Children, summaryCard(entry, headerCard, pal))
	}

	stats := section(m.Strings.Stats, statsWidth, pal)
	statCard := cardWidth(statsWidth, p.StatsColumns)
	for _, c := range m.Stats {
		stats.grid.Children = append(stats.grid.Children, statCardNode(c, statCard, pal))
	}

	equipment := section(m.Strings.Equipment, equipmentWidth, pal)
	equipCard := cardWidth(equipmentWidth, p.EquipmentColumns)
	for _, c := range m.Equipment {
		equipment.grid.Children = append(equipment.grid.Children, equipmentCardNode(c, equipCard, pal))
	}

	direction := boxsvg.Row
	if p.Stacked() {
		direction = boxsvg.Column
	}
	body := boxsvg.Box(boxsvg.Style{Direction: direction, Gap: ContentGap},
		nonEmpty(stats),
		nonEmpty(equipment),
	)
	if len(body.Children) == 0 {
		body = nil
	}

	return boxsvg.Box(boxsvg.Style{
		Direction:   boxsvg.Column,
		Width:       float64(m.Width),
		Height:      float64(m.Height),
		Padding:     boxsvg.PadXY(float64(p.PaddingX), float64(p.PaddingY)),
		Gap:         RootGap,
		Background:  pal.Background,
		BorderColor: pal.Border,
		BorderWidth: 1,
		Radius:      20,
		Shadow:      pal.Shadow,
		Color:       pal.Foreground,
		FontSize:    13,
	}, header, body)
}

// cardWidth splits width into columns separated by CardGap. Widths are
// floored so a full row never overflows into a wrap.
func cardWidth(width float64, columns int) float64 {
	columns = max(columns, 1)
	return math.Floor((width - CardGap*float64(columns-1)) / float64(columns))
}

type sectionNode struct {
	root *boxsvg.Node
	grid *boxsvg.Node
}

func section(title string, width float64, pal Palette) sectionNode {
	grid := boxsvg.Box(boxsvg.Style{Direction: boxsvg.Row, Wrap: true, Gap: CardGap})
	root := boxsvg.Box(boxsvg.Style{Direction: boxsvg.Column, Gap: SectionTitleGap, Width: width},
		boxsvg.Text(boxsvg.Style{Height: SectionTitleHeight, FontSize: 13, FontWeight: 700, Color: pal.Muted}, title),
		grid,
	)
	return sectionNode{root: root, grid: grid}
}

func nonEmpty(s sectionNode) *boxsvg.Node {
	if len(s.grid.Children) == 0 {
		return nil
	}
	return s.root
}

func cardStyle(width, height float64, pal Palette) boxsvg.Style {
	return boxsvg.Style{
		Width:       width,
		Height:      height,
		Background:  pal.Card,
		BorderColor: pal.CardBorder,
		BorderWidth: 1,
		Radius:      cardRadius,
	}
}

func summaryCard(e SummaryEntry, width float64, pal Palette) *boxsvg.Node {
	style := cardStyle(width, SummaryCardHeight, pal)
	style.Direction = boxsvg.Column
	style.Padding = boxsvg.PadXY(cardPadX, 9)
	style.Gap = 1
	style.Justify = boxsvg.JustifyCenter

	var caption, progress *boxsvg.Node
	if e.Caption != "" {
		caption = boxsvg.Text(boxsvg.Style{FontSize: 10, Color: pal.Muted}, e.Caption)
	}
	if e.HasProgress {
		progress = progressBar(e.Progress, width-2*cardPadX, pal)
	}
	return boxsvg.Box(style,
		boxsvg.Text(boxsvg.Style{FontSize: 11, FontWeight: 600, Color: pal.Muted}, e.Title),
		boxsvg.Text(boxsvg.Style{FontSize: 18, FontWeight: 700}, e.Value),
		caption,
		progress,
	)
}

func progressBar(percent int, width float64, pal Palette) *boxsvg.Node {
	var fill *boxsvg.Node
	if percent > 0 {
		fill = boxsvg.Box(boxsvg.Style{
			Width:      math.Max(1, width*float64(percent)/100),
			Height:     progressBarH,
			Radius:     progressBarH / 2,
			Background: pal.Accent,
		})
	}
	return boxsvg.Box(boxsvg.Style{
		Height:     progressBarH,
		Radius:     progressBarH / 2,
		Background: pal.NeutralSoft,
	}, fill)
}

func statCardNode(c StatCard, width float64, pal Palette) *boxsvg.Node {
	style := cardStyle(width, StatCardHeight, pal)
	style.Direction = boxsvg.Column
	style.Padding = boxsvg.PadXY(cardPadX, 8)
	style.Gap = 2
	style.Justify = boxsvg.JustifyCenter

	var bonus *boxsvg.Node
	if c.Bonus != nil {
		bonus = badgeNode(*c.Bonus, pal)
	}
	return boxsvg.Box(style,
		boxsvg.Text(boxsvg.Style{FontSize: 11, FontWeight: 600, Color: pal.Muted}, c.Label),
		boxsvg.Box(boxsvg.Style{Direction: boxsvg.Row, Gap: 6, Align: boxsvg.AlignCenter},
			boxsvg.Text(boxsvg.Style{FontSize: 18, FontWeight: 700}, c.Value),
			bonus,
		),
	)
}

// badgeNode draws gain badges with GainColor text, which is what the shimmer
// post-processor looks for.
func badgeNode(b Badge, pal Palette) *boxsvg.Node {
	text, background := pal.Neutral, pal.NeutralSoft
	switch {
	case b.Color != "":
		text, background = "#ffffff", b.Color
	case b.Tone == ToneGain:
		text, background = pal.Gain, pal.GainSoft
	case b.Tone == ToneLoss:
		text, background = pal.Loss, pal.LossSoft
	}
	return boxsvg.Box(boxsvg.Style{
		Fit:        true,
		Padding:    boxsvg.PadXY(6, 2),
		Radius:     8,
		Background: background,
	}, boxsvg.Text(boxsvg.Style{FontSize: 10, FontWeight: 700, Color: text}, b.Text))
}

func equipmentCardNode(c EquipmentCard, width float64, pal Palette) *boxsvg.Node {
	if c.Empty {
		return boxsvg.Box(boxsvg.Style{
			Direction:    boxsvg.Row,
			Align:        boxsvg.AlignCenter,
			Width:        width,
			Height:       EquipmentCardHeight,
			Padding:      boxsvg.Pad(10),
			Gap:          10,
			BorderColor:  pal.EmptyBorder,
			BorderWidth:  1.5,
			BorderDashed: true,
			Radius:       cardRadius,
		},
			boxsvg.Box(boxsvg.Style{
				Width:        iconSize,
				Height:       iconSize,
				Radius:       10,
				BorderColor:  pal.EmptyBorder,
				BorderWidth:  1.5,
				BorderDashed: true,
			}),
			boxsvg.Box(boxsvg.Style{Direction: boxsvg.Column, Gap: 4, Justify: boxsvg.JustifyCenter},
				boxsvg.Text(boxsvg.Style{FontSize: 10, Color: pal.Muted}, c.SlotLabel),
				boxsvg.Text(boxsvg.Style{FontSize: 13, FontWeight: 600, Color: pal.Muted}, c.EmptyLabel),
			),
		)
	}

	badges := boxsvg.Box(boxsvg.Style{Direction: boxsvg.Row, Wrap: true, Gap: 4},
		badgeNode(c.Rarity, pal))
	for _, m := range c.Modifiers {
		badges.Children = append(badges.Children, badgeNode(m, pal))
	}
	if c.Effect != nil {
		badges.Children = append(badges.Children, badgeNode(*c.Effect, pal))
	}

	style := cardStyle(width, EquipmentCardHeight, pal)
	style.Direction = boxsvg.Row
	style.Align = boxsvg.AlignCenter
	style.Padding = boxsvg.Pad(10)
	style.Gap = 10
	return boxsvg.Box(style,
		boxsvg.Image(boxsvg.Style{Width: iconSize, Height: iconSize}, c.Sprite),
		boxsvg.Box(boxsvg.Style{Direction: boxsvg.Column, Gap: 4},
			boxsvg.Text(boxsvg.Style{FontSize: 13, FontWeight: 700}, c.Name),
			boxsvg.Text(boxsvg.Style{FontSize: 10, Color: pal.Muted}, c.SlotLabel),
			badges,
		),
	)
}
