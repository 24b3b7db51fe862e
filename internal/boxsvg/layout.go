package boxsvg

import "context"

const lineHeightFactor = 1.25

type layouter struct {
	// ctx is checked before each node is placed; nil in unit tests.
	ctx context.Context
	fs  *fontSet
}

// resolve copies inherited text properties down the tree.
func resolve(n *Node, color string, size float64, weight int) {
	if n.Style.Color != "" {
		color = n.Style.Color
	}
	if n.Style.FontSize > 0 {
		size = n.Style.FontSize
	}
	if n.Style.FontWeight > 0 {
		weight = n.Style.FontWeight
	}
	n.color, n.size, n.weight = color, size, weight
	for _, c := range n.Children {
		resolve(c, color, size, weight)
	}
}

// place sizes n given the width offered by its parent and positions its
// children relative to n.
func (l *layouter) place(n *Node, avail float64) error {
	if l.ctx != nil {
		if err := l.ctx.Err(); err != nil {
			return err
		}
	}
	switch n.Kind {
	case KindText:
		return l.placeText(n, avail)
	case KindImage:
		n.w, n.h = n.Style.Width, n.Style.Height
		return nil
	}

	n.w = avail
	if n.Style.Width > 0 {
		n.w = n.Style.Width
	} else if n.Style.Fit {
		w, err := l.intrinsic(n)
		if err != nil {
			return err
		}
		n.w = min(w, avail)
	}
	pad := n.Style.Padding
	inner := max(0, n.w-pad.Left-pad.Right)

	var content float64
	var err error
	switch {
	case n.Style.Direction == Row && n.Style.Wrap:
		content, err = l.wrapRow(n, inner)
	case n.Style.Direction == Row:
		content, err = l.row(n, inner)
	default:
		content, err = l.column(n, inner)
	}
	if err != nil {
		return err
	}

	n.h = content + pad.Top + pad.Bottom
	if n.Style.Height > 0 {
		n.h = n.Style.Height
	}
	return nil
}

func (l *layouter) placeText(n *Node, avail float64) error {
	if n.Style.Width > 0 {
		avail = n.Style.Width
	}
	w, err := l.fs.measure(n.Text, n.size, n.weight)
	if err != nil {
		return err
	}
	n.drawn = n.Text
	if avail > 0 && w > avail {
		n.drawn, w, err = l.fs.truncate(n.Text, avail, n.size, n.weight)
		if err != nil {
			return err
		}
	}
	n.w = w
	if n.Style.Width > 0 {
		n.w = n.Style.Width
	}
	n.h = n.size * lineHeightFactor
	if n.Style.Height > 0 {
		n.h = n.Style.Height
	}
	return nil
}

// fixedCross reports the cross size available to children when n has a
// fixed size on that axis.
func fixedCross(n *Node, vertical bool) (float64, bool) {
	pad := n.Style.Padding
	if vertical {
		if n.Style.Height > 0 {
			return n.Style.Height - pad.Top - pad.Bottom, true
		}
		return 0, false
	}
	if n.Style.Width > 0 {
		return n.Style.Width - pad.Left - pad.Right, true
	}
	return 0, false
}

func crossOffset(a Align, space, size float64) float64 {
	switch a {
	case AlignCenter:
		return (space - size) / 2
	case AlignEnd:
		return space - size
	}
	return 0
}

// justify shifts main-axis offsets to spread free space. offsets are the
// positions produced for JustifyStart.
func justify(j Justify, free float64, count int) func(i int) float64 {
	if free <= 0 || count == 0 {
		return func(int) float64 { return 0 }
	}
	switch j {
	case JustifyCenter:
		return func(int) float64 { return free / 2 }
	case JustifyEnd:
		return func(int) float64 { return free }
	case JustifyBetween:
		if count == 1 {
			return func(int) float64 { return 0 }
		}
		step := free / float64(count-1)
		return func(i int) float64 { return step * float64(i) }
	}
	return func(int) float64 { return 0 }
}

func stretchable(c *Node) bool {
	return c.Kind == KindBox && !c.Style.Fit
}

// intrinsic returns the natural width of n: its fixed width, its measured
// text, or the sum (rows) or maximum (columns) of its children plus padding.
func (l *layouter) intrinsic(n *Node) (float64, error) {
	if n.Style.Width > 0 {
		return n.Style.Width, nil
	}
	switch n.Kind {
	case KindText:
		return l.fs.measure(n.Text, n.size, n.weight)
	case KindImage:
		return 0, nil
	}

	var content float64
	for i, c := range n.Children {
		w, err := l.intrinsic(c)
		if err != nil {
			return 0, err
		}
		if n.Style.Direction == Row {
			content += w
			if i > 0 {
				content += n.Style.Gap
			}
		} else {
			content = max(content, w)
		}
	}
	return content + n.Style.Padding.Left + n.Style.Padding.Right, nil
}

func (l *layouter) column(n *Node, inner float64) (float64, error) {
	pad := n.Style.Padding
	gap := n.Style.Gap
	y := 0.0
	for i, c := range n.Children {
		if err := l.place(c, inner); err != nil {
			return 0, err
		}
		c.y = pad.Top + y
		c.x = pad.Left
		if !stretchable(c) || c.Style.Width > 0 {
			c.x += crossOffset(n.Style.Align, inner, c.w)
		}
		y += c.h
		if i < len(n.Children)-1 {
			y += gap
		}
	}

	if space, ok := fixedCross(n, true); ok {
		shift := justify(n.Style.Justify, space-y, len(n.Children))
		for i, c := range n.Children {
			c.y += shift(i)
		}
	}
	return y, nil
}

func (l *layouter) row(n *Node, inner float64) (float64, error) {
	pad := n.Style.Padding
	gap := n.Style.Gap
	count := len(n.Children)
	if count == 0 {
		return 0, nil
	}

	used := gap * float64(count-1)
	var totalGrow float64
	grows := make([]float64, count)
	for i, c := range n.Children {
		if c.Kind == KindBox && c.Style.Width == 0 && !c.Style.Fit {
			g := c.Style.Grow
			if g <= 0 {
				g = 1
			}
			grows[i] = g
			totalGrow += g
			continue
		}
		if err := l.place(c, inner); err != nil {
			return 0, err
		}
		used += c.w
	}

	remaining := max(0, inner-used)
	for i, c := range n.Children {
		if grows[i] == 0 {
			continue
		}
		if err := l.place(c, remaining*grows[i]/totalGrow); err != nil {
			return 0, err
		}
		used += c.w
	}

	lineH := 0.0
	for _, c := range n.Children {
		lineH = max(lineH, c.h)
	}
	if space, ok := fixedCross(n, true); ok {
		lineH = space
	}

	shift := justify(n.Style.Justify, inner-used, count)
	x := 0.0
	for i, c := range n.Children {
		if stretchable(c) && c.Style.Height == 0 {
			c.h = lineH
		}
		c.x = pad.Left + x + shift(i)
		c.y = pad.Top + crossOffset(n.Style.Align, lineH, c.h)
		x += c.w + gap
	}
	return lineH, nil
}

func (l *layouter) wrapRow(n *Node, inner float64) (float64, error) {
	pad := n.Style.Padding
	gap := n.Style.Gap

	var lines [][]*Node
	var line []*Node
	x := 0.0
	for _, c := range n.Children {
		if err := l.place(c, inner); err != nil {
			return 0, err
		}
		if len(line) > 0 && x+gap+c.w > inner {
			lines = append(lines, line)
			line, x = nil, 0
		}
		if len(line) > 0 {
			x += gap
		}
		c.x = pad.Left + x
		x += c.w
		line = append(line, c)
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}

	y := 0.0
	for i, ln := range lines {
		lineH := 0.0
		for _, c := range ln {
			lineH = max(lineH, c.h)
		}
		for _, c := range ln {
			if stretchable(c) && c.Style.Height == 0 {
				c.h = lineH
			}
			c.y = pad.Top + y + crossOffset(n.Style.Align, lineH, c.h)
		}
		y += lineH
		if i < len(lines)-1 {
			y += gap
		}
	}
	return y, nil
}
