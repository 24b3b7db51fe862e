package models

// StatBlock is one set of character stats. It is used for base stats,
// equipment bonuses and the combined total.
type StatBlock struct {
	HP    int `json:"hp"`
	MaxHP int `json:"max_hp"`
	Atk   int `json:"atk"`
	Def   int `json:"def"`
	Luck  int `json:"luck"`
	AP    int `json:"ap"`
}

// Add returns the field-wise sum of s and o.
func (s StatBlock) Add(o StatBlock) StatBlock {
	return StatBlock{
		HP:    s.HP + o.HP,
		MaxHP: s.MaxHP + o.MaxHP,
		Atk:   s.Atk + o.Atk,
		Def:   s.Def + o.Def,
		Luck:  s.Luck + o.Luck,
		AP:    s.AP + o.AP,
	}
}

func (s StatBlock) IsZero() bool {
	return s == StatBlock{}
}

// StatSummary groups the stats shown on the banner. Total is expected to equal
// Base + EquipmentBonus; the renderer displays what it is given.
type StatSummary struct {
	Total          StatBlock `json:"total"`
	Base           StatBlock `json:"base"`
	EquipmentBonus StatBlock `json:"equipment_bonus"`
}

// NewStatSummary builds a summary whose total is base plus bonus.
func NewStatSummary(base, bonus StatBlock) StatSummary {
	return StatSummary{
		Total:          base.Add(bonus),
		Base:           base,
		EquipmentBonus: bonus,
	}
}

// Stat keys used by item modifiers.
const (
	StatHP    = "hp"
	StatMaxHP = "maxHp"
	StatAtk   = "atk"
	StatDef   = "def"
	StatLuck  = "luck"
	StatAP    = "ap"
)

// apply adds value to the field named by stat. Unknown stats are ignored.
func (s *StatBlock) apply(stat string, value int) bool {
	switch stat {
	case StatHP:
		s.HP += value
	case StatMaxHP:
		s.MaxHP += value
	case StatAtk:
		s.Atk += value
	case StatDef:
		s.Def += value
	case StatLuck:
		s.Luck += value
	case StatAP:
		s.AP += value
	default:
		return false
	}
	return true
}

// EquipmentBonus sums the modifiers of every equipped item. This is the single
// source of truth for the bonus shown next to each stat.
func EquipmentBonus(items []InventoryItem) StatBlock {
	var bonus StatBlock
	for _, item := range items {
		if !item.IsEquipped {
			continue
		}
		for _, m := range item.Modifiers {
			bonus.apply(m.Stat, m.Value)
		}
	}
	return bonus
}
