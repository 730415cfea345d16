package presenter

import (
	"sync"
	"time"

	"github.com/soocke/skillcheck-bot-go/domain/skillcheck"
)

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// StatePresenter receives trigger transitions from the pipeline goroutine and
// reflects the latest one on the UI thread.
type StatePresenter struct {
	view    StateView
	mu      sync.Mutex
	pending []skillcheck.State
	latest  skillcheck.State
	shown   bool
}

func NewStatePresenter(view StateView) *StatePresenter {
	return &StatePresenter{view: view}
}

// OnState queues a transitioned state. It matches skillcheck.Listener and may
// be called from any goroutine.
//
// The latest queued state will be reflected on the next Tick.
func (p *StatePresenter) OnState(_, next skillcheck.State) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, next)
	p.mu.Unlock()
}

// Tick processes queued states and updates the view with the most recent state.
// The first Tick always shows a label, even without transitions.
func (p *StatePresenter) Tick(now time.Time) {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	last, ok := p.latest, false
	if n := len(p.pending); n > 0 {
		last, ok = p.pending[n-1], true
		p.pending = p.pending[:0]
	}
	p.mu.Unlock()
	if !p.shown || (ok && last != p.latest) {
		p.latest, p.shown = last, true
		p.view.SetStateLabel("State: " + last.String())
	}
}
