package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/goldhelper/config"
	"github.com/pthm-cable/goldhelper/display"
	"github.com/pthm-cable/goldhelper/plugin"
)

const minPanelWidth = 150

// HUD renders the overlay panels.
type HUD struct {
	renderer *Renderer
	panels   []PanelDescriptor
	x, y     float32
	vertical bool
}

// NewHUD creates the overlay from display settings.
func NewHUD(cfg config.DisplayConfig, vertical bool) *HUD {
	return &HUD{
		renderer: NewRenderer(ThemeFromConfig(cfg)),
		panels:   Panels(cfg),
		x:        float32(cfg.PositionX),
		y:        float32(cfg.PositionY),
		vertical: vertical,
	}
}

// Draw renders every visible panel for v and returns the area they cover.
func (h *HUD) Draw(v plugin.View) display.Rect {
	r := h.renderer

	visible := make([]PanelDescriptor, 0, len(h.panels))
	sizes := make([]display.Size, 0, len(h.panels))
	for _, p := range h.panels {
		if !p.Visible {
			continue
		}
		visible = append(visible, p)
		sizes = append(sizes, r.MeasurePanel(p.Title(v.Texts), p.Body(v.Texts), p.Graph, minPanelWidth))
	}
	if h.vertical {
		// Same width for a tidy column
		var w float32
		for _, s := range sizes {
			w = max(w, s.W)
		}
		for i := range sizes {
			sizes[i].W = w
		}
	}

	rects := display.Stack(h.x, h.y, sizes, h.vertical, float32(r.Theme.Gap))
	hovered := -1
	for i, p := range visible {
		body := r.DrawPanel(rects[i], p.Title(v.Texts))
		y := r.DrawLines(body.X, body.Y, p.Body(v.Texts))
		if p.Graph {
			graph := display.Rect{X: body.X, Y: y + float32(r.Theme.Padding)/2, W: body.W, H: float32(r.Theme.GraphH)}
			hovered = r.DrawGraph(graph, v.Bars)
		}
	}
	if hovered >= 0 {
		b := v.Bars[hovered]
		r.DrawTooltip(fmt.Sprintf("%s\nGained: %s", b.Name, display.FormatCount(float64(b.Gold))))
	}

	return bounds(rects)
}

// DrawStatus renders the status line and shortcut legend at the bottom of
// the screen.
func (h *HUD) DrawStatus(v plugin.View, screenHeight int32) {
	text := fmt.Sprintf("Tick: %d | Run: %s | FPS: %d", v.Tick, v.Phase, rl.GetFPS())
	rl.DrawText(text, 10, screenHeight-45, 14, rl.LightGray)
	rl.DrawText(Legend, 10, screenHeight-25, 14, rl.Gray)
}

func bounds(rects []display.Rect) display.Rect {
	if len(rects) == 0 {
		return display.Rect{}
	}
	out := rects[0]
	for _, r := range rects[1:] {
		right := max(out.X+out.W, r.X+r.W)
		bottom := max(out.Y+out.H, r.Y+r.H)
		out.X = min(out.X, r.X)
		out.Y = min(out.Y, r.Y)
		out.W = right - out.X
		out.H = bottom - out.Y
	}
	return out
}
