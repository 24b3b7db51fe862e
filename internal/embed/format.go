package embed

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/codyseavey/git-dungeon/backend/internal/models"
)

var languageTags = map[models.Language]language.Tag{
	models.LanguageKorean:  language.Korean,
	models.LanguageEnglish: language.English,
}

// NewPrinter returns a number printer using lang's digit grouping.
func NewPrinter(lang models.Language) *message.Printer {
	tag, ok := languageTags[lang]
	if !ok {
		tag = languageTags[models.DefaultLanguage]
	}
	return message.NewPrinter(tag)
}

func formatNumber(p *message.Printer, v int) string {
	return p.Sprintf("%d", v)
}

// formatSigned always carries a sign for non-zero values: "+5", "-3".
func formatSigned(p *message.Printer, v int) string {
	switch {
	case v > 0:
		return "+" + formatNumber(p, v)
	case v < 0:
		return "-" + formatNumber(p, -v)
	}
	return formatNumber(p, 0)
}
