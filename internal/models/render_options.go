package models

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	DefaultTheme = ThemeLight
)

type Size string

const (
	SizeCompact Size = "compact"
	SizeWide    Size = "wide"
	SizeSquare  Size = "square"

	DefaultSize = SizeWide
)

type Language string

const (
	LanguageKorean  Language = "ko"
	LanguageEnglish Language = "en"

	DefaultLanguage = LanguageKorean
)

// AllSizes lists the supported banner sizes in declaration order.
func AllSizes() []Size {
	return []Size{SizeCompact, SizeWide, SizeSquare}
}

// ParseTheme returns the theme named by s, or DefaultTheme when s is not an exact match.
func ParseTheme(s string) Theme {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s)
	}
	return DefaultTheme
}

// ParseSize returns the size named by s, or DefaultSize when s is not an exact match.
func ParseSize(s string) Size {
	switch Size(s) {
	case SizeCompact, SizeWide, SizeSquare:
		return Size(s)
	}
	return DefaultSize
}

// ParseLanguage returns the language named by s, or DefaultLanguage when s is not an exact match.
func ParseLanguage(s string) Language {
	switch Language(s) {
	case LanguageKorean, LanguageEnglish:
		return Language(s)
	}
	return DefaultLanguage
}

// FontConfig is a loaded font ready to hand to the layout engine.
type FontConfig struct {
	Name   string
	Data   []byte
	Weight int    // CSS weight, 400 when unset
	Style  string // "normal" or "italic"
}
