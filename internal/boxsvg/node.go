// Package boxsvg lays out a small tree of styled boxes and writes it as a
// static SVG document. It supports the subset of flexbox the embed banner
// needs: rows and columns, wrapping, gaps, padding, fixed sizes and grow.
//
// Text is drawn as glyph outlines from the supplied fonts so the output does
// not depend on fonts installed where the SVG is viewed. Every filled shape is
// written as
//
//	<path d="..." fill="#rrggbb" />
//
// and callers post-processing the SVG may rely on that shape.
package boxsvg

type Kind int

const (
	KindBox Kind = iota
	KindText
	KindImage
)

type Direction int

const (
	Column Direction = iota
	Row
)

// Align positions children on the cross axis. Boxes without a fixed size
// are stretched regardless of Align.
type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
)

// Justify distributes free main-axis space in non-wrapping rows and columns.
type Justify int

const (
	JustifyStart Justify = iota
	JustifyCenter
	JustifyEnd
	JustifyBetween
)

type Edges struct {
	Top, Right, Bottom, Left float64
}

// Pad returns equal padding on every side.
func Pad(v float64) Edges {
	return Edges{Top: v, Right: v, Bottom: v, Left: v}
}

// PadXY returns horizontal padding x and vertical padding y.
func PadXY(x, y float64) Edges {
	return Edges{Top: y, Right: x, Bottom: y, Left: x}
}

type Style struct {
	Direction Direction
	Wrap      bool
	Gap       float64
	Padding   Edges

	// Width and Height fix the border-box size; zero means automatic.
	Width  float64
	Height float64
	// Grow shares leftover row space between boxes without a fixed width.
	// Boxes in a row with neither Width nor Grow are treated as Grow 1.
	Grow float64
	// Fit sizes a box to the natural width of its content. Fit boxes are
	// never stretched by their parent.
	Fit bool

	Align   Align
	Justify Justify

	Background   string
	BorderColor  string
	BorderWidth  float64
	BorderDashed bool
	Radius       float64
	Shadow       string

	// Text properties are inherited by descendants when zero.
	Color      string
	FontSize   float64
	FontWeight int
}

type Node struct {
	Kind     Kind
	Style    Style
	Text     string
	Src      string
	Children []*Node

	// Computed by layout, relative to the parent's border box.
	x, y, w, h float64
	// Resolved text properties after inheritance.
	color  string
	size   float64
	weight int
	// drawn is Text after truncation to the available width.
	drawn string
}

// Box returns a container node.
func Box(style Style, children ...*Node) *Node {
	kept := make([]*Node, 0, len(children))
	for _, c := range children {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return &Node{Kind: KindBox, Style: style, Children: kept}
}

// Text returns a single-line text node.
func Text(style Style, s string) *Node {
	return &Node{Kind: KindText, Style: style, Text: s}
}

// Image returns an image node. Style.Width and Style.Height must be set.
func Image(style Style, src string) *Node {
	return &Node{Kind: KindImage, Style: style, Src: src}
}

// Walk calls fn for n and every descendant in document order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Texts returns the text content of every text node under n.
func (n *Node) Texts() []string {
	var out []string
	n.Walk(func(c *Node) {
		if c.Kind == KindText {
			out = append(out, c.Text)
		}
	})
	return out
}
