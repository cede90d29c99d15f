package ui

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/goldhelper/display"
	"github.com/pthm-cable/goldhelper/plugin"
)

// Commander accepts reset commands from the UI. plugin.Plugin implements it.
type Commander interface {
	Enqueue(cmd plugin.Command) bool
}

// Controls draws the reset buttons under the overlay and handles keyboard
// shortcuts.
type Controls struct {
	cmd     Commander
	visible bool
}

// NewControls creates visible controls that send commands to cmd.
func NewControls(cmd Commander) *Controls {
	return &Controls{cmd: cmd, visible: true}
}

// Toggle switches button visibility.
func (c *Controls) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// HandleInput processes keyboard shortcuts.
func (c *Controls) HandleInput() {
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		c.Toggle()
	}
	if rl.IsKeyDown(rl.KeyLeftControl) && rl.IsKeyPressed(rl.KeyR) {
		c.cmd.Enqueue(plugin.CommandResetAll)
	}
	if rl.IsKeyDown(rl.KeyLeftControl) && rl.IsKeyPressed(rl.KeyP) {
		c.cmd.Enqueue(plugin.CommandResetProfitability)
	}
}

// Draw renders the buttons below the overlay area.
func (c *Controls) Draw(overlay display.Rect) {
	if !c.visible {
		return
	}
	x := overlay.X
	y := overlay.Y + overlay.H + 8

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 120, Height: 26}, "Reset All") {
		c.cmd.Enqueue(plugin.CommandResetAll)
	}
	if gui.Button(rl.Rectangle{X: x + 130, Y: y, Width: 150, Height: 26}, "Reset Profitability") {
		c.cmd.Enqueue(plugin.CommandResetProfitability)
	}
}

// Legend is the shortcut help line.
const Legend = "H: buttons | Ctrl+R: reset all | Ctrl+P: reset profitability | F11: fullscreen"
