package view

import (
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/soocke/skillcheck-bot-go/config"
	"github.com/soocke/skillcheck-bot-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// previewScale enlarges the capture rectangle for display.
const previewScale = 2

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Session     SessionStats
	ConfigPanel ConfigPanel
	Previews    PreviewPanel

	// Widgets
	StateLabel   *TLabelWidget
	ReadoutLabel *LabelWidget
}

// UI abstracts the subset of view operations needed by presenters, enabling decoupling
// from the concrete RootView implementation.
type UI interface {
	SetStateLabel(text string)
	SetSession(session, total time.Duration)
	UpdateFrame(img image.Image)
	UpdateGreyMask(img image.Image)
	UpdateWhiteMask(img image.Image)
	UpdateTrackMask(img image.Image)
	SetReadout(text string)
	Close()
}

var _ UI = (*RootView)(nil)

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout. onExit runs for the Exit button and the Escape key.
func (rv *RootView) Build(onExit func()) {
	if rv == nil {
		return
	}
	theme.InitStyles()

	// Row 0: session stats, state label, exit button
	top := Frame()
	Grid(top, Row(0), Column(0), Columnspan(4), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	rv.Session = NewSessionStats(top, 0, 0)
	rv.StateLabel = TLabel(Txt("State: idle"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, In(top), Row(0), Column(2), Sticky("we"), Padx("0.4m"))
	exitBtn := TButton(Txt("Exit"), Style(theme.StyleDangerButton), Command(onExit))
	Grid(exitBtn, In(top), Row(0), Column(3), Sticky("e"), Padx("0.4m"))
	GridColumnConfigure(top.Window, 2, Weight(1))

	// Rows 1-2: previews
	w, h := 200, 200
	if rv.cfg != nil {
		r := rv.cfg.Rect()
		w, h = r.Dx()*previewScale, r.Dy()*previewScale
	}
	rv.Previews = NewPreviewPanel(1, w, h)

	// Row 3: readout
	rv.ReadoutLabel = Label(Txt("Waiting for first frame"), Anchor("w"))
	Grid(rv.ReadoutLabel, Row(3), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.2m"))

	// Row 4: config panel
	cfgFrame := Frame()
	Grid(cfgFrame, Row(4), Column(0), Columnspan(4), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger)
	rv.ConfigPanel.Build(cfgFrame, 0)

	Bind(App, "<Escape>", Command(onExit))
	WmAttributes(App, "-topmost", 1)
}

// SetStateLabel updates the state label text and colour.
func (rv *RootView) SetStateLabel(text string) {
	if rv == nil || rv.StateLabel == nil {
		return
	}
	name := strings.TrimPrefix(text, "State: ")
	StyleConfigure(theme.StyleStateLabel, Background(theme.StateColor(name)))
	rv.StateLabel.Configure(Txt(text))
}

// SetSession updates both session and total run durations.
func (rv *RootView) SetSession(session, total time.Duration) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetSession(session)
	rv.Session.SetTotal(total)
}

func (rv *RootView) UpdateFrame(img image.Image) {
	if rv != nil && rv.Previews != nil {
		rv.Previews.UpdateFrame(img)
	}
}

func (rv *RootView) UpdateGreyMask(img image.Image) {
	if rv != nil && rv.Previews != nil {
		rv.Previews.UpdateGreyMask(img)
	}
}

func (rv *RootView) UpdateWhiteMask(img image.Image) {
	if rv != nil && rv.Previews != nil {
		rv.Previews.UpdateWhiteMask(img)
	}
}

func (rv *RootView) UpdateTrackMask(img image.Image) {
	if rv != nil && rv.Previews != nil {
		rv.Previews.UpdateTrackMask(img)
	}
}

// SetReadout updates the status line under the previews.
func (rv *RootView) SetReadout(text string) {
	if rv != nil && rv.ReadoutLabel != nil {
		rv.ReadoutLabel.Configure(Txt(text))
	}
}

// Close blanks the previews and destroys the main window, ending App.Wait.
func (rv *RootView) Close() {
	if rv != nil && rv.Previews != nil {
		rv.Previews.Reset()
	}
	Destroy(App)
}
