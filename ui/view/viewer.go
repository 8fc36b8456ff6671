package view

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"scene-redactor/internal/app"
	"scene-redactor/internal/catalog"
	"scene-redactor/internal/redact"
	"scene-redactor/internal/session"
	"scene-redactor/pkg/geometry"
)

// Viewer is the multi-panel frame window: six camera panels around a central
// LiDAR scatter, an info cell, and the advance control. It implements
// redact.Display, routing the machine's draw intents to the right panel.
type Viewer struct {
	win     fyne.Window
	state   *app.State
	machine *redact.Machine

	panels  map[string]*panel
	scatter *scatterSource

	infoToken *widget.Label
	infoScene *widget.Label
	infoPath  *widget.Label
	status    *widget.Label
	nextBtn   *widget.Button

	grid *fyne.Container

	advance chan struct{}
}

var _ redact.Display = (*Viewer)(nil)

// New builds the frame window. The machine must have been created with this
// Viewer as its Display.
func New(fyneApp fyne.App, state *app.State, machine *redact.Machine, width, height float32) *Viewer {
	title := "Scene Redactor"
	if state.ViewOnly {
		title += " (view only)"
	}

	v := &Viewer{
		win:     fyneApp.NewWindow(title),
		state:   state,
		machine: machine,
		panels:  make(map[string]*panel),
		advance: make(chan struct{}, 1),
	}

	v.infoToken = widget.NewLabel("")
	v.infoScene = widget.NewLabel("")
	v.infoPath = widget.NewLabel("")
	v.infoPath.Wrapping = fyne.TextWrapBreak
	v.status = widget.NewLabel("Loading…")
	v.nextBtn = widget.NewButton("Next frame", func() {
		select {
		case v.advance <- struct{}{}:
		default:
		}
	})

	v.grid = container.NewGridWithColumns(3)

	content := container.NewBorder(
		nil,
		container.NewBorder(nil, nil, v.status, v.nextBtn),
		nil, nil,
		v.grid,
	)
	v.win.SetContent(content)
	v.win.Resize(fyne.NewSize(width, height))

	state.On(app.EventPersistFailed, func(data interface{}) {
		if f, ok := data.(app.PersistFailure); ok {
			v.SetStatus(fmt.Sprintf("write failed for %s: %v (edit kept on screen)", f.ViewID, f.Err))
		}
	})
	state.On(app.EventFrameSkipped, func(data interface{}) {
		v.SetStatus(fmt.Sprintf("skipped unreadable frame %v", data))
	})

	return v
}

// Window returns the underlying Fyne window.
func (v *Viewer) Window() fyne.Window {
	return v.win
}

// SetStatus updates the status line.
func (v *Viewer) SetStatus(msg string) {
	v.status.SetText(msg)
}

// ShowFrame rebuilds the panel grid for a newly loaded frame and resets the
// redaction machine onto its views.
func (v *Viewer) ShowFrame(f *session.Frame) {
	views := make([]redact.View, 0, len(f.Cameras)+1)
	for _, cam := range f.Cameras {
		views = append(views, cam)
	}
	views = append(views, f.Lidar)
	v.machine.Reset(views)

	v.panels = make(map[string]*panel)
	sink := v.machine.Handle

	for _, cam := range f.Cameras {
		img := cam.Img
		v.panels[cam.ID()] = newPanel(cam.ID(), func() image.Image { return img }, identityMapper{}, sink)
	}

	v.scatter = newScatterSource(f.Lidar)
	v.panels[f.Lidar.ID()] = newPanel(
		f.Lidar.ID(),
		func() image.Image { return v.scatter.Image() },
		newScatterMapper(v.scatter.dataRect),
		sink,
	)

	// Same arrangement as the capture review tooling: front cameras on top,
	// back cameras on the bottom, the scatter and frame info in the middle.
	info := container.NewVBox(
		widget.NewLabelWithStyle("Frame", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		v.infoToken,
		v.infoScene,
		v.infoPath,
	)
	v.grid.Objects = []fyne.CanvasObject{
		v.panels["CAM_FRONT_LEFT"], v.panels["CAM_FRONT"], v.panels["CAM_FRONT_RIGHT"],
		widget.NewLabel(""), v.panels[catalog.LidarChannel], info,
		v.panels["CAM_BACK_LEFT"], v.panels["CAM_BACK"], v.panels["CAM_BACK_RIGHT"],
	}
	v.grid.Refresh()

	v.infoToken.SetText("Sample: " + f.Token)
	v.infoScene.SetText("Scene: " + f.SceneToken)
	v.infoPath.SetText("CAM_FRONT: " + f.FrontSourcePath)
	v.SetStatus("Drag on any view to redact a region.")

	v.state.SetFrame(f.Token)
}

// WaitAdvance blocks the navigation loop until the operator advances to the
// next frame.
func (v *Viewer) WaitAdvance() {
	<-v.advance
}

// UpdateSelection implements redact.Display.
func (v *Viewer) UpdateSelection(viewID string, region geometry.Rect) {
	if p, ok := v.panels[viewID]; ok {
		p.SetSelection(region)
	}
}

// ClearSelection implements redact.Display.
func (v *Viewer) ClearSelection(viewID string) {
	if p, ok := v.panels[viewID]; ok {
		p.ClearSelection()
	}
}

// RefreshView implements redact.Display.
func (v *Viewer) RefreshView(viewID string) {
	if viewID == catalog.LidarChannel && v.scatter != nil {
		v.scatter.Invalidate()
	}
	if p, ok := v.panels[viewID]; ok {
		p.Refresh()
	}
}
