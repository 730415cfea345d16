package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick/ProcessFrame on the sub-presenters, then Exit once the
// pipeline has stopped, and otherwise invokes a scheduler callback.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Session  *SessionPresenter
	State    *StatePresenter
	Preview  *PreviewPresenter
	Run      RunningModel
	Exit     func()
	Schedule func()
}

func NewLoop(sess *SessionPresenter, state *StatePresenter, preview *PreviewPresenter, run RunningModel, exit, schedule func()) *Loop {
	return &Loop{Session: sess, State: state, Preview: preview, Run: run, Exit: exit, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.State != nil {
		l.State.Tick(now)
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Preview != nil {
		l.Preview.ProcessFrame()
	}
	if l.Run != nil && !l.Run.Running() {
		if l.Exit != nil {
			l.Exit()
		}
		return
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
