package model

import (
	"github.com/soocke/skillcheck-bot-go/domain/pipeline"
)

// ReadoutModel holds the most recent pipeline readout shown in the window.
// No synchronization needed: updates occur on the UI thread tick.
type ReadoutModel struct {
	latest pipeline.Readout
	has    bool
}

func NewReadoutModel() *ReadoutModel { return &ReadoutModel{} }

// Set records r. Readouts older than the current one are ignored.
func (m *ReadoutModel) Set(r pipeline.Readout) {
	if m == nil {
		return
	}
	if m.has && r.Tick <= m.latest.Tick {
		return
	}
	m.latest, m.has = r, true
}

// Latest returns the stored readout, if any.
func (m *ReadoutModel) Latest() (pipeline.Readout, bool) {
	if m == nil {
		return pipeline.Readout{}, false
	}
	return m.latest, m.has
}
