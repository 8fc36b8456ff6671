// Package app provides application state and the event bus connecting the
// redaction core to the display.
package app

import (
	"sync"
)

// EventType identifies application events.
type EventType int

const (
	EventFrameLoaded EventType = iota
	EventFrameSkipped
	EventRedactionApplied
	EventPersistFailed
	EventWalkFinished
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State holds the per-run application state: where the dataset and its
// mirror live, which scene is being walked, and the frame currently on
// screen.
type State struct {
	mu sync.RWMutex

	SourceRoot string
	MirrorRoot string
	SceneIndex int
	ViewOnly   bool

	frameToken string

	listeners map[EventType][]EventListener
}

// NewState creates a new application state.
func NewState(sourceRoot, mirrorRoot string, sceneIndex int, viewOnly bool) *State {
	return &State{
		SourceRoot: sourceRoot,
		MirrorRoot: mirrorRoot,
		SceneIndex: sceneIndex,
		ViewOnly:   viewOnly,
		listeners:  make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetFrame records the frame currently displayed and emits EventFrameLoaded.
func (s *State) SetFrame(frameToken string) {
	s.mu.Lock()
	s.frameToken = frameToken
	s.mu.Unlock()
	s.Emit(EventFrameLoaded, frameToken)
}

// CurrentFrame returns the token of the frame currently displayed.
func (s *State) CurrentFrame() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frameToken
}

// PersistFailure describes a non-fatal mirror write failure, surfaced to the
// operator without interrupting the session.
type PersistFailure struct {
	ViewID string
	Err    error
}
