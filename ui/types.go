// Package ui draws the gold overlay with raylib: the session, map, area and
// ranking panels, the recent-runs graph, and the reset controls.
package ui

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/goldhelper/config"
	"github.com/pthm-cable/goldhelper/display"
)

// PanelID identifies one overlay panel.
type PanelID int

const (
	PanelSession PanelID = iota
	PanelMap
	PanelArea
	PanelRanking
)

// PanelDescriptor defines what a panel shows. Title and Body read the
// published view's prebuilt texts.
type PanelDescriptor struct {
	ID      PanelID
	Title   func(display.Texts) string
	Body    func(display.Texts) string
	Graph   bool // draw the recent-runs graph under the body
	Visible bool
}

// Panels returns the panel list in drawing order, with visibility taken
// from cfg.
func Panels(cfg config.DisplayConfig) []PanelDescriptor {
	fixed := func(s string) func(display.Texts) string {
		return func(display.Texts) string { return s }
	}
	return []PanelDescriptor{
		{
			ID:      PanelSession,
			Title:   fixed("Session"),
			Body:    func(t display.Texts) string { return t.Session },
			Graph:   cfg.ShowGraph,
			Visible: cfg.ShowSession,
		},
		{
			ID:      PanelMap,
			Title:   fixed("Maps"),
			Body:    func(t display.Texts) string { return t.Map },
			Visible: cfg.ShowMap,
		},
		{
			ID:      PanelArea,
			Title:   func(t display.Texts) string { return t.AreaTitle },
			Body:    func(t display.Texts) string { return t.Area },
			Visible: cfg.ShowArea,
		},
		{
			ID:      PanelRanking,
			Title:   fixed("Most Profitable"),
			Body:    func(t display.Texts) string { return t.Ranking },
			Visible: cfg.ShowRanking,
		},
	}
}

// Theme holds UI styling.
type Theme struct {
	PanelBg    rl.Color
	TitleBar   rl.Color
	TitleText  rl.Color
	Text       rl.Color
	BarBg      rl.Color
	BarColors  []rl.Color
	TooltipBg  rl.Color
	Padding    int32
	LineHeight int32
	FontSize   int32
	TitleSize  int32
	GraphH     int32
	Gap        int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:    rl.Color{R: 0, G: 0, B: 0, A: 180},
		TitleBar:   rl.Color{R: 0, G: 157, B: 255, A: 130},
		TitleText:  rl.White,
		Text:       rl.White,
		BarBg:      rl.Color{R: 40, G: 40, B: 40, A: 200},
		BarColors:  []rl.Color{rl.Red, {R: 0, G: 191, B: 255, A: 255}, {R: 50, G: 205, B: 50, A: 255}},
		TooltipBg:  rl.Color{R: 20, G: 25, B: 30, A: 240},
		Padding:    6,
		LineHeight: 16,
		FontSize:   14,
		TitleSize:  14,
		GraphH:     48,
		Gap:        4,
	}
}

// ThemeFromConfig overrides the default colors with the configured ones.
// Unparsable colors keep their defaults.
func ThemeFromConfig(cfg config.DisplayConfig) Theme {
	t := DefaultTheme()
	t.PanelBg = colorOr(cfg.BackgroundColor, t.PanelBg)
	t.TitleBar = colorOr(cfg.TitleBarColor, t.TitleBar)
	t.TitleText = colorOr(cfg.TitleTextColor, t.TitleText)
	t.Text = colorOr(cfg.TextColor, t.Text)

	if len(cfg.BarColors) > 0 {
		bars := make([]rl.Color, len(cfg.BarColors))
		for i, s := range cfg.BarColors {
			bars[i] = colorOr(s, t.BarColors[i%len(t.BarColors)])
		}
		t.BarColors = bars
	}
	return t
}

// BarColor returns the color for graph slot i.
func (t Theme) BarColor(i int) rl.Color {
	if len(t.BarColors) == 0 {
		return t.Text
	}
	return t.BarColors[i%len(t.BarColors)]
}

func colorOr(s string, def rl.Color) rl.Color {
	c := display.ColorOr(s, color.RGBA{R: def.R, G: def.G, B: def.B, A: def.A})
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
