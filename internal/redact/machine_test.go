package redact

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"scene-redactor/pkg/geometry"
)

// fakeView records redactions applied to it.
type fakeView struct {
	id      string
	bounds  geometry.Rect
	applied []geometry.Rect
	mutates bool // whether ApplyRedaction reports a change
}

func (f *fakeView) ID() string            { return f.id }
func (f *fakeView) Bounds() geometry.Rect { return f.bounds }
func (f *fakeView) ApplyRedaction(r geometry.Rect) bool {
	f.applied = append(f.applied, r)
	return f.mutates
}

// fakePersistable is a fakeView with a mirror write target.
type fakePersistable struct {
	fakeView
	path string
	img  *image.RGBA
}

func (f *fakePersistable) MirroredPath() string { return f.path }
func (f *fakePersistable) Image() image.Image   { return f.img }

// recordingDisplay captures the machine's draw intents.
type recordingDisplay struct {
	selections map[string]geometry.Rect
	cleared    []string
	refreshed  []string
}

func newRecordingDisplay() *recordingDisplay {
	return &recordingDisplay{selections: make(map[string]geometry.Rect)}
}

func (d *recordingDisplay) UpdateSelection(viewID string, r geometry.Rect) {
	d.selections[viewID] = r
}

func (d *recordingDisplay) ClearSelection(viewID string) {
	delete(d.selections, viewID)
	d.cleared = append(d.cleared, viewID)
}

func (d *recordingDisplay) RefreshView(viewID string) {
	d.refreshed = append(d.refreshed, viewID)
}

func newTestMachine(persist PersistFunc, views ...View) (*Machine, *recordingDisplay) {
	d := newRecordingDisplay()
	m := NewMachine(d, persist)
	m.Reset(views)
	return m, d
}

func camView() *fakeView {
	return &fakeView{id: "CAM_FRONT", bounds: geometry.NewRect(0, 0, 100, 100), mutates: true}
}

func lidarView() *fakeView {
	return &fakeView{id: "LIDAR_TOP", bounds: geometry.NewRect(-50, -50, 100, 100), mutates: true}
}

func down(id string, x, y float64) Event {
	return Event{ViewID: id, Kind: PointerDown, Point: geometry.NewPoint2D(x, y)}
}

func move(id string, x, y float64) Event {
	return Event{ViewID: id, Kind: PointerMove, Point: geometry.NewPoint2D(x, y)}
}

func up(id string, x, y float64) Event {
	return Event{ViewID: id, Kind: PointerUp, Point: geometry.NewPoint2D(x, y)}
}

func TestActivationFromIdle(t *testing.T) {
	cam := camView()
	m, _ := newTestMachine(nil, cam)

	require.Equal(t, Idle, m.State())

	// The first interaction only activates; it does not start a selection.
	m.Handle(down("CAM_FRONT", 10, 10))
	require.Equal(t, ViewActive, m.State())
	require.Equal(t, cam, m.ActiveView())
	require.Empty(t, cam.applied)
}

func TestSelectCommitApply(t *testing.T) {
	cam := camView()
	m, d := newTestMachine(nil, cam)

	m.Handle(down("CAM_FRONT", 0, 0)) // activate
	m.Handle(down("CAM_FRONT", 10, 10))
	require.Equal(t, Selecting, m.State())
	require.Equal(t, geometry.NewRect(10, 10, 0, 0), d.selections["CAM_FRONT"],
		"pointer-down anchors a zero-size overlay")

	m.Handle(move("CAM_FRONT", 30, 20))
	require.Equal(t, geometry.NewRect(10, 10, 20, 10), d.selections["CAM_FRONT"])
	require.Empty(t, cam.applied, "moves must not mutate data")

	m.Handle(up("CAM_FRONT", 30, 40))
	require.Equal(t, ViewActive, m.State())
	require.Len(t, cam.applied, 1)
	require.Equal(t, geometry.NewRect(10, 10, 20, 30), cam.applied[0])
	require.NotContains(t, d.selections, "CAM_FRONT", "overlay is cleared after commit")
	require.Equal(t, []string{"CAM_FRONT"}, d.refreshed)
}

func TestCommitNormalizesInvertedDrag(t *testing.T) {
	cam := camView()
	m, _ := newTestMachine(nil, cam)

	m.Handle(down("CAM_FRONT", 0, 0))
	m.Handle(down("CAM_FRONT", 30, 40))
	m.Handle(up("CAM_FRONT", 10, 10)) // dragged up-left

	require.Len(t, cam.applied, 1)
	require.Equal(t, geometry.NewRect(10, 10, 20, 30), cam.applied[0])
}

func TestReleaseOutsideViewDiscards(t *testing.T) {
	cam := camView()
	m, d := newTestMachine(nil, cam)

	m.Handle(down("CAM_FRONT", 0, 0))
	m.Handle(down("CAM_FRONT", 10, 10))
	m.Handle(up("CAM_FRONT", 150, 150)) // off-canvas

	require.Equal(t, ViewActive, m.State())
	require.Empty(t, cam.applied, "discarded selection must not mutate")
	require.NotContains(t, d.selections, "CAM_FRONT")
}

func TestStrayPointerUpIgnored(t *testing.T) {
	cam := camView()
	m, _ := newTestMachine(nil, cam)

	// Up in Idle: activation only, never a mutation.
	m.Handle(up("CAM_FRONT", 10, 10))
	require.Equal(t, ViewActive, m.State())
	require.Empty(t, cam.applied)

	// Up in ViewActive with no prior down: ignored.
	m.Handle(up("CAM_FRONT", 20, 20))
	require.Equal(t, ViewActive, m.State())
	require.Empty(t, cam.applied)
}

func TestStrayPointerMoveIgnored(t *testing.T) {
	cam := camView()
	m, d := newTestMachine(nil, cam)

	m.Handle(down("CAM_FRONT", 0, 0)) // activate
	m.Handle(move("CAM_FRONT", 20, 20))
	require.Equal(t, ViewActive, m.State())
	require.NotContains(t, d.selections, "CAM_FRONT")
}

func TestUnknownViewIgnored(t *testing.T) {
	cam := camView()
	m, _ := newTestMachine(nil, cam)

	m.Handle(down("CAM_REAR_WIDE", 10, 10))
	require.Equal(t, Idle, m.State())
	require.Nil(t, m.ActiveView())
}

func TestActivatingAnotherViewClearsSelection(t *testing.T) {
	cam, lidar := camView(), lidarView()
	m, _ := newTestMachine(nil, cam, lidar)

	m.Handle(down("CAM_FRONT", 0, 0))
	require.Equal(t, cam, m.ActiveView())

	// Interaction with a different view while ViewActive re-targets.
	m.Handle(down("LIDAR_TOP", 0, 0))
	require.Equal(t, ViewActive, m.State())
	require.Equal(t, lidar, m.ActiveView())

	// The down that switched views must not have anchored a selection.
	m.Handle(up("LIDAR_TOP", 5, 5))
	require.Empty(t, lidar.applied)
}

func TestMidDragEventsFromOtherViewsIgnored(t *testing.T) {
	cam, lidar := camView(), lidarView()
	m, _ := newTestMachine(nil, cam, lidar)

	m.Handle(down("CAM_FRONT", 0, 0))
	m.Handle(down("CAM_FRONT", 10, 10))
	require.Equal(t, Selecting, m.State())

	m.Handle(move("LIDAR_TOP", 5, 5))
	m.Handle(up("LIDAR_TOP", 5, 5))
	require.Equal(t, Selecting, m.State())
	require.Equal(t, cam, m.ActiveView())
	require.Empty(t, lidar.applied)

	m.Handle(up("CAM_FRONT", 20, 20))
	require.Len(t, cam.applied, 1)
}

func TestZeroAreaCommitIsValid(t *testing.T) {
	cam := camView()
	cam.mutates = false // nothing changes for an empty region
	m, d := newTestMachine(nil, cam)

	m.Handle(down("CAM_FRONT", 0, 0))
	m.Handle(down("CAM_FRONT", 25, 25))
	m.Handle(up("CAM_FRONT", 25, 25))

	require.Equal(t, ViewActive, m.State())
	require.Len(t, cam.applied, 1, "a zero-area selection is still a valid commit")
	require.True(t, cam.applied[0].IsEmpty())
	require.Empty(t, d.refreshed, "no refresh when nothing changed")
}

func TestCommitPersistsRaster(t *testing.T) {
	pv := &fakePersistable{
		fakeView: fakeView{id: "CAM_FRONT", bounds: geometry.NewRect(0, 0, 100, 100), mutates: true},
		path:     "/mirror/samples/CAM_FRONT/a.jpg",
		img:      image.NewRGBA(image.Rect(0, 0, 1, 1)),
	}

	var gotPath string
	persist := func(path string, img image.Image) error {
		gotPath = path
		return nil
	}
	m, _ := newTestMachine(persist, pv)

	m.Handle(down("CAM_FRONT", 0, 0))
	m.Handle(down("CAM_FRONT", 10, 10))
	m.Handle(up("CAM_FRONT", 20, 20))

	require.Equal(t, pv.path, gotPath)
	require.Equal(t, []string{"CAM_FRONT"}, m.RedactedViews())
}

func TestCommitDoesNotPersistPointCloud(t *testing.T) {
	lidar := lidarView()
	called := false
	persist := func(string, image.Image) error {
		called = true
		return nil
	}
	m, _ := newTestMachine(persist, lidar)

	m.Handle(down("LIDAR_TOP", 0, 0))
	m.Handle(down("LIDAR_TOP", -10, -10))
	m.Handle(up("LIDAR_TOP", 10, 10))

	require.Len(t, lidar.applied, 1)
	require.False(t, called, "point-cloud edits are never written back")
	require.Empty(t, m.RedactedViews())
}

func TestPersistFailureIsNonFatal(t *testing.T) {
	pv := &fakePersistable{
		fakeView: fakeView{id: "CAM_FRONT", bounds: geometry.NewRect(0, 0, 100, 100), mutates: true},
		path:     "/mirror/a.jpg",
		img:      image.NewRGBA(image.Rect(0, 0, 1, 1)),
	}
	persist := func(string, image.Image) error {
		return errors.New("disk full")
	}

	var reportedView string
	var reportedErr error
	m, d := newTestMachine(persist, pv)
	m.OnPersistError(func(viewID string, err error) {
		reportedView = viewID
		reportedErr = err
	})

	m.Handle(down("CAM_FRONT", 0, 0))
	m.Handle(down("CAM_FRONT", 10, 10))
	m.Handle(up("CAM_FRONT", 20, 20))

	require.Equal(t, ViewActive, m.State(), "session continues after a write failure")
	require.Equal(t, "CAM_FRONT", reportedView)
	require.ErrorContains(t, reportedErr, "disk full")
	require.Contains(t, d.refreshed, "CAM_FRONT", "the in-memory edit stays displayed")
	require.Empty(t, m.RedactedViews(), "a failed write is not recorded as redacted")
}

func TestViewOnlyModeNeverMutates(t *testing.T) {
	cam := camView()
	called := false
	m, d := newTestMachine(func(string, image.Image) error {
		called = true
		return nil
	}, cam)
	m.SetViewOnly(true)

	m.Handle(down("CAM_FRONT", 0, 0))
	m.Handle(down("CAM_FRONT", 10, 10))
	m.Handle(move("CAM_FRONT", 30, 30))
	require.Contains(t, d.selections, "CAM_FRONT", "selection overlay still draws in view-only mode")

	m.Handle(up("CAM_FRONT", 30, 30))
	require.Empty(t, cam.applied)
	require.False(t, called)
	require.Equal(t, ViewActive, m.State())
}

func TestResetDropsSelectionAndRedactedSet(t *testing.T) {
	pv := &fakePersistable{
		fakeView: fakeView{id: "CAM_FRONT", bounds: geometry.NewRect(0, 0, 100, 100), mutates: true},
		img:      image.NewRGBA(image.Rect(0, 0, 1, 1)),
	}
	m, d := newTestMachine(func(string, image.Image) error { return nil }, pv)

	m.Handle(down("CAM_FRONT", 0, 0))
	m.Handle(down("CAM_FRONT", 10, 10))
	m.Handle(up("CAM_FRONT", 20, 20))
	require.NotEmpty(t, m.RedactedViews())

	next := camView()
	m.Reset([]View{next})
	require.Equal(t, Idle, m.State())
	require.Nil(t, m.ActiveView())
	require.Empty(t, m.RedactedViews())
	require.NotContains(t, d.selections, "CAM_FRONT")
}

func TestOnCommitCallback(t *testing.T) {
	cam := camView()
	m, _ := newTestMachine(nil, cam)

	var gotID string
	var gotRegion geometry.Rect
	m.OnCommit(func(viewID string, region geometry.Rect) {
		gotID = viewID
		gotRegion = region
	})

	m.Handle(down("CAM_FRONT", 0, 0))
	m.Handle(down("CAM_FRONT", 5, 5))
	m.Handle(up("CAM_FRONT", 15, 25))

	require.Equal(t, "CAM_FRONT", gotID)
	require.Equal(t, geometry.NewRect(5, 5, 10, 20), gotRegion)
}
