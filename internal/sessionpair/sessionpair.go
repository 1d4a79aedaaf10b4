// Package sessionpair models a session plus the UI metadata the manager
// tracks alongside it: which view is showing, scroll position, activity, and
// whether it started as a resume. Exactly one ActivePair may exist at a time;
// every other live session is a BackgroundPair.
package sessionpair

import (
	"github.com/ehayes2000/shepherd/internal/session"
)

// View selects which content a session pair currently shows.
type View int

const (
	ViewClaude View = iota
	ViewShell
)

// Activity reflects whether a background session has produced output or an
// OSC completion notification recently.
type Activity int

const (
	ActivityActive Activity = iota
	ActivityStopped
)

// ActivePair is the single foreground session: its claude child is
// Attached and receives routed input.
type ActivePair struct {
	Name    string
	Path    string
	View    View
	Claude  *session.Session
	Resumed bool

	ScrollOffset uint32
	Activity     Activity
}

// New creates an ActivePair around an already-attached claude session.
func New(name, path string, claude *session.Session, resumed bool) *ActivePair {
	return &ActivePair{
		Name:    name,
		Path:    path,
		View:    ViewClaude,
		Claude:  claude,
		Resumed: resumed,
	}
}

// Detach converts the ActivePair into a BackgroundPair, detaching its claude
// session so it stops receiving input and stops being rendered.
func (p *ActivePair) Detach() *BackgroundPair {
	p.Claude.Detach()
	return &BackgroundPair{
		Name:         p.Name,
		Path:         p.Path,
		LastView:     p.View,
		Claude:       p.Claude,
		Resumed:      p.Resumed,
		ScrollOffset: p.ScrollOffset,
		Activity:     p.Activity,
	}
}

// BackgroundPair is a session pair not currently visible. Its claude session
// keeps running (and its reader thread keeps draining the PTY) but the
// manager does not render it.
type BackgroundPair struct {
	Name     string
	Path     string
	LastView View
	Claude   *session.Session
	Resumed  bool

	ScrollOffset uint32
	Activity     Activity
}

// Attach converts the BackgroundPair back into an ActivePair, re-attaching
// its claude session.
func (p *BackgroundPair) Attach() *ActivePair {
	p.Claude.Attach()
	return &ActivePair{
		Name:         p.Name,
		Path:         p.Path,
		View:         p.LastView,
		Claude:       p.Claude,
		Resumed:      p.Resumed,
		ScrollOffset: p.ScrollOffset,
		Activity:     p.Activity,
	}
}
