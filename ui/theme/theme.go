package theme

// Palette and ttk styles for the skill check window. The window is small and
// always on top, so the styles favour contrast over decoration.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Palette defines core semantic colors used across widgets.
const (
	ColorBg        = "#f7f9fb" // app background
	ColorDanger    = "#dc2626"
	ColorIdle      = "#10b981"
	ColorCooldown  = "#f59e0b"
	ColorText      = "#1e293b"
	ColorTextMuted = "#64748b"
)

// style names used with Style("state.TLabel") etc.
const (
	StyleDangerButton = "danger.TButton"
	StyleStateLabel   = "state.TLabel"
	StyleMutedLabel   = "muted.TLabel"
)

// InitStyles activates the base theme and configures the semantic styles.
func InitStyles() {
	_ = ActivateTheme("azure light") // baseline metrics
	App.Configure(Background(ColorBg))
	StyleConfigure(StyleDangerButton,
		Background(ColorDanger),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleMutedLabel,
		Foreground(ColorTextMuted),
		Padding("2p 1p"),
	)
	StyleConfigure(StyleStateLabel,
		Foreground("white"),
		Background(ColorIdle),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
}

// StateColor returns the label background for a trigger state name.
func StateColor(state string) string {
	if state == "cooldown" {
		return ColorCooldown
	}
	return ColorIdle
}
