package app

import "fmt"

// State is a startup phase of the viewer. Phases only move forward.
type State int

const (
	Uninitialized State = iota
	EngineReady
	ShadersLoaded
	SceneBuilt
	Rendering
)

var stateNames = [...]string{
	Uninitialized: "uninitialized",
	EngineReady:   "engine-ready",
	ShadersLoaded: "shaders-loaded",
	SceneBuilt:    "scene-built",
	Rendering:     "rendering",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// advance moves to next, which must be the immediate successor.
func (a *App) advance(next State) error {
	if next != a.state+1 {
		return fmt.Errorf("invalid state transition %s -> %s", a.state, next)
	}
	a.state = next
	a.log.Debug("state " + next.String())
	return nil
}
