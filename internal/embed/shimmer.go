package embed

import (
	"fmt"
	"regexp"
	"strings"
)

// ShimmerIDPrefix prefixes every injected gradient id. Its presence marks a
// document that has already been animated.
const ShimmerIDPrefix = "gd-bonus-shimmer"

// gainPathPattern matches paths exactly as boxsvg writes them:
// <path d="..." fill="#10b981" />. A change to that output shape must be
// reflected here.
var gainPathPattern = regexp.MustCompile(`<path([^>]*?) fill="` + GainColor + `"`)

// InjectBonusAnimation points every gain-coloured path at its own animated
// gradient and appends the gradients in a single <defs> block before the
// closing </svg>. Documents without gain paths, or that were already
// animated, are returned unchanged.
func InjectBonusAnimation(doc string) string {
	if strings.Contains(doc, ShimmerIDPrefix+"-") {
		return doc
	}
	closing := strings.LastIndex(doc, "</svg>")
	if closing < 0 || !gainPathPattern.MatchString(doc[:closing]) {
		return doc
	}

	var defs strings.Builder
	defs.WriteString("<defs>")
	n := 0
	body := gainPathPattern.ReplaceAllStringFunc(doc[:closing], func(match string) string {
		id := fmt.Sprintf("%s-%d", ShimmerIDPrefix, n)
		n++
		writeShimmerGradient(&defs, id)
		attrs := gainPathPattern.FindStringSubmatch(match)[1]
		return `<path` + attrs + ` fill="url(#` + id + `)"`
	})
	defs.WriteString("</defs>")

	return body + defs.String() + doc[closing:]
}

func writeShimmerGradient(b *strings.Builder, id string) {
	fmt.Fprintf(b, `<linearGradient id="%s" x1="0" y1="0" x2="1" y2="0">`, id)
	fmt.Fprintf(b, `<stop offset="0" stop-color="%s"/>`, GainColor)
	b.WriteString(`<stop offset="0.5" stop-color="#6ee7b7"/>`)
	fmt.Fprintf(b, `<stop offset="1" stop-color="%s"/>`, GainColor)
	b.WriteString(`<animateTransform attributeName="gradientTransform" type="translate" from="-1 0" to="1 0" dur="2.6s" repeatCount="indefinite"/>`)
	b.WriteString(`</linearGradient>`)
}
