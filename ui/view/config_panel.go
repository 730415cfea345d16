package view

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soocke/skillcheck-bot-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel edits the detection settings. Saved values take effect on the
// next start; the running pipeline keeps the configuration it was built with.
type ConfigPanel interface {
	Build(parent *FrameWidget, startRow int) (endRow int)
	ApplyChanges()
}

type configPanel struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	status  *LabelWidget
	widgets map[string]*TextWidget // keyed by JSON key
}

// NewConfigPanel creates the view bound to cfg.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) Build(parent *FrameWidget, startRow int) (row int) {
	c := v.cfg
	row = startRow
	makeRow := func(id, label, value string) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(12))
		Grid(w, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		row++
	}
	makeRow("hex_grey", "Grey Hex", c.HexGrey)
	makeRow("hex_white", "White Hex", c.HexWhite)
	makeRow("color_tolerance", "Color Tolerance", fmt.Sprintf("%d", c.ColorTolerance))
	makeRow("middle_threshold", "Middle Threshold Px", fmt.Sprintf("%d", c.MiddleThreshold))
	makeRow("click_cooldown_seconds", "Cooldown Seconds", fmt.Sprintf("%.2f", c.ClickCooldownSeconds))
	makeRow("bar_thickness_fraction", "Bar Thickness (0-1)", fmt.Sprintf("%.2f", c.BarThicknessFraction))
	makeRow("white_area_width_increase", "White Expand Px", fmt.Sprintf("%d", c.WhiteAreaWidthIncrease))
	makeRow("track_strategy", "Track (annulus/dark)", c.TrackStrategy)
	makeRow("stop_key", "Stop Key (e.g. ESC or F8)", c.StopKey)
	btn := Button(Txt("Save For Next Start"), Command(func() { v.ApplyChanges() }))
	Grid(btn, In(parent), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	v.status = Label(Txt(""), Anchor("w"))
	Grid(v.status, In(parent), Row(row), Column(0), Columnspan(2), Sticky("w"), Padx("0.4m"))
	row++
	return row
}

func (v *configPanel) text(id string) (string, bool) {
	w := v.widgets[id]
	if w == nil {
		return "", false
	}
	s := strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
	return s, s != ""
}

// ApplyChanges parses the widgets into a copy of the config and persists it
// when every value parses and validates. Invalid input leaves the file
// untouched and names the offending keys in the status line.
func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	edits := make(map[string]string, len(v.widgets))
	for id := range v.widgets {
		if s, ok := v.text(id); ok {
			edits[id] = s
		}
	}
	cfg, err := v.cfg.Apply(edits)
	if err != nil {
		var fe *config.FallbackError
		if errors.As(err, &fe) {
			v.setStatus("invalid: " + strings.Join(fe.Keys, ", "))
		} else {
			v.setStatus("invalid configuration")
		}
		if v.logger != nil {
			v.logger.Warn("config not saved", "error", err)
		}
		return
	}
	*v.cfg = *cfg
	if err := v.cfg.Save(v.cfgPath); err != nil {
		v.setStatus("save failed")
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
		return
	}
	v.setStatus("saved, restart to apply")
	if v.logger != nil {
		v.logger.Info("config saved", "path", v.cfgPath)
	}
}

func (v *configPanel) setStatus(s string) {
	if v.status != nil {
		v.status.Configure(Txt(s))
	}
}
