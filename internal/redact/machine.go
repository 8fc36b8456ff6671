// Package redact implements the pointer-driven region-selection state machine
// that applies rectangular redactions uniformly over camera rasters and the
// projected LiDAR point cloud.
package redact

import (
	"image"
	"log"

	"scene-redactor/pkg/geometry"
)

// State is the machine's interaction state.
type State int

const (
	// Idle: no view is active.
	Idle State = iota
	// ViewActive: a view is the selection target, no drag in progress.
	ViewActive
	// Selecting: a drag is in progress on the active view.
	Selecting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case ViewActive:
		return "ViewActive"
	case Selecting:
		return "Selecting"
	default:
		return "Unknown"
	}
}

// EventKind classifies a pointer event.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
)

// Event is one pointer interaction, tagged with the view it happened in and
// the pointer's coordinates in that view's own space (pixels for rasters,
// the plotted spatial axes for the point cloud).
type Event struct {
	ViewID string
	Kind   EventKind
	Point  geometry.Point2D
}

// View is one sensor view of the current frame. The two variants (raster and
// point cloud) each carry their own redaction semantics behind ApplyRedaction.
type View interface {
	ID() string
	// Bounds is the view's extent in its own coordinate space.
	Bounds() geometry.Rect
	// ApplyRedaction mutates the view's data inside the region and reports
	// whether anything changed.
	ApplyRedaction(region geometry.Rect) bool
}

// PersistableView is a View whose redacted data is written to the dataset
// mirror after a commit. Rasters are persistable; point clouds are not.
type PersistableView interface {
	View
	MirroredPath() string
	Image() image.Image
}

// Display receives the machine's draw intents. The machine never holds
// rendering handles.
type Display interface {
	// UpdateSelection draws or moves the selection rectangle overlay on the
	// given view. The rectangle is in the view's own coordinate space.
	UpdateSelection(viewID string, region geometry.Rect)
	// ClearSelection removes the selection rectangle overlay from the view.
	ClearSelection(viewID string)
	// RefreshView re-renders a view whose underlying data changed.
	RefreshView(viewID string)
}

// PersistFunc writes a redacted raster to its mirrored path.
type PersistFunc func(mirroredPath string, img image.Image) error

// Machine tracks the active view and the in-progress selection for one
// frame's visualization cycle, and applies the modality-appropriate
// redaction when a selection commits.
//
// All methods must be called from the single event-handling goroutine.
type Machine struct {
	display  Display
	persist  PersistFunc
	viewOnly bool

	onCommit       func(viewID string, region geometry.Rect)
	onPersistError func(viewID string, err error)

	views map[string]View

	state      State
	active     View
	corner1    geometry.Point2D
	hasCorner1 bool

	// redacted records raster views persisted this cycle, keyed by view ID.
	redacted map[string]bool
}

// NewMachine creates a machine emitting draw intents to display and writing
// committed raster redactions through persist. A nil persist leaves raster
// edits in memory only.
func NewMachine(display Display, persist PersistFunc) *Machine {
	return &Machine{
		display:  display,
		persist:  persist,
		views:    make(map[string]View),
		redacted: make(map[string]bool),
	}
}

// SetViewOnly disables mutation and persistence: selections can still be
// drawn but a commit changes nothing.
func (m *Machine) SetViewOnly(viewOnly bool) {
	m.viewOnly = viewOnly
}

// SetDisplay installs the display after construction. The display and the
// machine reference each other, so one side has to be wired late.
func (m *Machine) SetDisplay(display Display) {
	m.display = display
}

// OnCommit registers a callback invoked after a selection is applied.
func (m *Machine) OnCommit(fn func(viewID string, region geometry.Rect)) {
	m.onCommit = fn
}

// OnPersistError registers a callback for non-fatal persistence failures.
// Without one, failures are logged.
func (m *Machine) OnPersistError(fn func(viewID string, err error)) {
	m.onPersistError = fn
}

// Reset installs the views of a newly loaded frame and returns the machine
// to Idle, discarding any in-progress selection and the per-cycle redaction
// record.
func (m *Machine) Reset(views []View) {
	if m.state == Selecting && m.active != nil {
		m.display.ClearSelection(m.active.ID())
	}
	m.views = make(map[string]View, len(views))
	for _, v := range views {
		m.views[v.ID()] = v
	}
	m.state = Idle
	m.active = nil
	m.hasCorner1 = false
	m.redacted = make(map[string]bool)
}

// State returns the current interaction state.
func (m *Machine) State() State {
	return m.state
}

// ActiveView returns the current selection target, or nil in Idle.
func (m *Machine) ActiveView() View {
	return m.active
}

// RedactedViews returns the IDs of raster views persisted this cycle.
func (m *Machine) RedactedViews() []string {
	ids := make([]string, 0, len(m.redacted))
	for id := range m.redacted {
		ids = append(ids, id)
	}
	return ids
}

// Handle processes one pointer event and runs the resulting transition.
// Events for unknown views are ignored.
func (m *Machine) Handle(ev Event) {
	v, ok := m.views[ev.ViewID]
	if !ok {
		return
	}

	// Any interaction while Idle, or while another view is active outside a
	// drag, activates the event's view and clears the previous selection.
	if m.state == Idle || (m.state == ViewActive && m.active != v) {
		m.activate(v)
		return
	}

	// Mid-drag events from other views are stray and ignored.
	if m.active != v {
		return
	}

	switch ev.Kind {
	case PointerDown:
		if m.state == ViewActive {
			m.beginSelection(ev.Point)
		}
	case PointerMove:
		if m.state == Selecting {
			m.display.UpdateSelection(m.active.ID(), geometry.RectFromCorners(m.corner1, ev.Point))
		}
	case PointerUp:
		// An up with no matching down (corner1 unset) is ignored.
		if m.state == Selecting && m.hasCorner1 {
			m.commit(ev.Point)
		}
	}
}

// activate makes v the selection target, discarding any in-progress
// selection on the previous view.
func (m *Machine) activate(v View) {
	if m.active != nil && m.hasCorner1 {
		m.display.ClearSelection(m.active.ID())
	}
	m.active = v
	m.state = ViewActive
	m.hasCorner1 = false
}

// beginSelection anchors corner1 and starts the zero-size overlay.
func (m *Machine) beginSelection(p geometry.Point2D) {
	m.corner1 = p
	m.hasCorner1 = true
	m.state = Selecting
	m.display.UpdateSelection(m.active.ID(), geometry.RectFromCorners(p, p))
}

// commit normalizes the selection, applies the active view's redaction, and
// persists rasters to the mirror. Runs synchronously; the machine is back in
// ViewActive when it returns.
func (m *Machine) commit(corner2 geometry.Point2D) {
	viewID := m.active.ID()
	region := geometry.RectFromCorners(m.corner1, corner2)

	m.display.ClearSelection(viewID)
	m.hasCorner1 = false
	m.state = ViewActive

	// A release outside the view discards the selection.
	if !m.active.Bounds().Contains(corner2) {
		return
	}
	if m.viewOnly {
		return
	}

	changed := m.active.ApplyRedaction(region)
	if changed {
		m.display.RefreshView(viewID)
	}
	if m.onCommit != nil {
		m.onCommit(viewID, region)
	}

	pv, persistable := m.active.(PersistableView)
	if !persistable || !changed || m.persist == nil {
		return
	}
	if err := m.persist(pv.MirroredPath(), pv.Image()); err != nil {
		// Non-fatal: the in-memory edit stays visible even when the mirror
		// write fails.
		if m.onPersistError != nil {
			m.onPersistError(viewID, err)
		} else {
			log.Printf("persist %s: %v", viewID, err)
		}
		return
	}
	m.redacted[viewID] = true
}
