package display

// Rect is a screen rectangle in pixels.
type Rect struct {
	X, Y, W, H float32
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Size is a panel's measured width and height.
type Size struct {
	W, H float32
}

// Stack places panels one after another starting at (x, y), top to bottom
// when vertical and left to right otherwise, with gap pixels between them.
func Stack(x, y float32, sizes []Size, vertical bool, gap float32) []Rect {
	rects := make([]Rect, len(sizes))
	for i, s := range sizes {
		rects[i] = Rect{X: x, Y: y, W: s.W, H: s.H}
		if vertical {
			y += s.H + gap
		} else {
			x += s.W + gap
		}
	}
	return rects
}

// BarRects lays out n bars inside area, bottom-aligned, each scaled by its
// Height. Empty slots get a zero-height rectangle at the baseline.
func BarRects(area Rect, bars []Bar, gap float32) []Rect {
	n := len(bars)
	if n == 0 {
		return nil
	}
	w := (area.W - gap*float32(n-1)) / float32(n)
	if w < 1 {
		w = 1
	}
	rects := make([]Rect, n)
	for i, b := range bars {
		h := area.H * clamp01(b.Height)
		rects[i] = Rect{
			X: area.X + float32(i)*(w+gap),
			Y: area.Y + area.H - h,
			W: w,
			H: h,
		}
	}
	return rects
}

// BarAt returns the index of the bar column under (x, y), or -1. The whole
// column height counts so short bars are still easy to hover.
func BarAt(area Rect, rects []Rect, x, y float32) int {
	if !area.Contains(x, y) {
		return -1
	}
	for i, r := range rects {
		if x >= r.X && x < r.X+r.W {
			return i
		}
	}
	return -1
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
