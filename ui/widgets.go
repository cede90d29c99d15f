package ui

import (
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/goldhelper/display"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the given theme.
func NewRenderer(theme Theme) *Renderer {
	return &Renderer{Theme: theme}
}

func rect(r display.Rect) rl.Rectangle {
	return rl.Rectangle{X: r.X, Y: r.Y, Width: r.W, Height: r.H}
}

// MeasureText returns the size of a possibly multi-line text block.
func (r *Renderer) MeasureText(text string, fontSize int32) display.Size {
	lines := strings.Split(text, "\n")
	var w int32
	for _, line := range lines {
		if lw := rl.MeasureText(line, fontSize); lw > w {
			w = lw
		}
	}
	return display.Size{W: float32(w), H: float32(int32(len(lines)) * r.Theme.LineHeight)}
}

// MeasurePanel returns the size of a panel with the given title and body,
// plus room for the graph when graph is set.
func (r *Renderer) MeasurePanel(title, body string, graph bool, minWidth float32) display.Size {
	th := r.MeasureText(title, r.Theme.TitleSize)
	bd := r.MeasureText(body, r.Theme.FontSize)
	pad := float32(r.Theme.Padding)

	w := max(th.W, bd.W, minWidth) + 2*pad
	h := float32(r.Theme.LineHeight) + 2*pad + bd.H
	if graph {
		h += float32(r.Theme.GraphH) + pad
	}
	return display.Size{W: w, H: h}
}

// DrawPanel draws a panel background with a title bar and returns the body
// area below the title.
func (r *Renderer) DrawPanel(area display.Rect, title string) display.Rect {
	pad := float32(r.Theme.Padding)
	titleH := float32(r.Theme.LineHeight) + pad

	rl.DrawRectangleRec(rect(area), r.Theme.PanelBg)
	rl.DrawRectangleRec(rl.Rectangle{X: area.X, Y: area.Y, Width: area.W, Height: titleH}, r.Theme.TitleBar)
	rl.DrawText(title, int32(area.X+pad), int32(area.Y+pad/2), r.Theme.TitleSize, r.Theme.TitleText)

	return display.Rect{X: area.X + pad, Y: area.Y + titleH + pad/2, W: area.W - 2*pad, H: area.H - titleH - pad}
}

// DrawLines draws a multi-line text block and returns the Y below it.
func (r *Renderer) DrawLines(x, y float32, text string) float32 {
	for _, line := range strings.Split(text, "\n") {
		rl.DrawText(line, int32(x), int32(y), r.Theme.FontSize, r.Theme.Text)
		y += float32(r.Theme.LineHeight)
	}
	return y
}

// DrawGraph draws the recent-runs bar graph with slot labels under each
// bar. It returns the index of the hovered bar, or -1.
func (r *Renderer) DrawGraph(area display.Rect, bars []display.Bar) int {
	labelH := float32(r.Theme.LineHeight)
	plot := display.Rect{X: area.X, Y: area.Y, W: area.W, H: area.H - labelH}
	rects := display.BarRects(plot, bars, float32(r.Theme.Gap))

	rl.DrawRectangleRec(rect(plot), r.Theme.BarBg)
	for i, br := range rects {
		if bars[i].Filled() {
			rl.DrawRectangleRec(rect(br), r.Theme.BarColor(i))
		}
		lw := rl.MeasureText(bars[i].Label, r.Theme.FontSize)
		rl.DrawText(bars[i].Label, int32(br.X+br.W/2)-lw/2, int32(plot.Y+plot.H+2), r.Theme.FontSize, r.Theme.Text)
	}

	mouse := rl.GetMousePosition()
	i := display.BarAt(plot, rects, mouse.X, mouse.Y)
	if i >= 0 && !bars[i].Filled() {
		return -1
	}
	return i
}

// DrawTooltip draws text in a box next to the cursor.
func (r *Renderer) DrawTooltip(text string) {
	mouse := rl.GetMousePosition()
	size := r.MeasureText(text, r.Theme.FontSize)
	pad := float32(r.Theme.Padding)
	box := rl.Rectangle{X: mouse.X + 12, Y: mouse.Y + 12, Width: size.W + 2*pad, Height: size.H + pad}

	rl.DrawRectangleRec(box, r.Theme.TooltipBg)
	rl.DrawRectangleLinesEx(box, 1, r.Theme.TitleBar)
	r.DrawLines(box.X+pad, box.Y+pad/2, text)
}
