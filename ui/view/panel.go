// Package view provides the Fyne display surface: one panel per sensor view,
// a scatter renderer for the LiDAR channel, and the multi-panel frame window.
package view

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"

	"scene-redactor/internal/redact"
	"scene-redactor/pkg/colorutil"
	"scene-redactor/pkg/geometry"
)

// CoordMapper converts between a panel's displayed image pixels and the
// sensor view's own coordinate space. Rasters use the identity mapping;
// the LiDAR scatter maps pixels to its plotted data axes.
type CoordMapper interface {
	ImageToView(x, y float64) geometry.Point2D
	ViewToImage(p geometry.Point2D) (x, y float64)
}

// identityMapper is the raster mapping: view space is pixel space.
type identityMapper struct{}

func (identityMapper) ImageToView(x, y float64) geometry.Point2D {
	return geometry.NewPoint2D(x, y)
}

func (identityMapper) ViewToImage(p geometry.Point2D) (x, y float64) {
	return p.X, p.Y
}

// panel displays one sensor view, forwards pointer events to the redaction
// machine tagged with the view's ID, and composites the selection overlay.
type panel struct {
	widget.BaseWidget

	viewID string
	source func() image.Image
	mapper CoordMapper
	sink   func(redact.Event)

	raster *fynecanvas.Raster

	// selection, when non-nil, is the overlay rectangle in view coordinates.
	selection *geometry.Rect

	dragging bool
	lastPos  fyne.Position

	// scale and offsets of the last draw, for panel->image conversion.
	scale      float64
	offX, offY float64
}

func newPanel(viewID string, source func() image.Image, mapper CoordMapper, sink func(redact.Event)) *panel {
	p := &panel{
		viewID: viewID,
		source: source,
		mapper: mapper,
		sink:   sink,
		scale:  1,
	}
	p.raster = fynecanvas.NewRaster(p.draw)
	p.raster.ScaleMode = fynecanvas.ImageScalePixels
	p.ExtendBaseWidget(p)
	return p
}

func (p *panel) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.raster)
}

func (p *panel) MinSize() fyne.Size {
	return fyne.NewSize(320, 200)
}

// SetSelection installs or moves the overlay rectangle (view coordinates).
func (p *panel) SetSelection(r geometry.Rect) {
	p.selection = &r
	p.Refresh()
}

// ClearSelection removes the overlay rectangle.
func (p *panel) ClearSelection() {
	p.selection = nil
	p.Refresh()
}

func (p *panel) Refresh() {
	p.raster.Refresh()
	p.BaseWidget.Refresh()
}

// toViewPoint converts a panel position to the view's coordinate space.
func (p *panel) toViewPoint(pos fyne.Position) geometry.Point2D {
	imgX := (float64(pos.X) - p.offX) / p.scale
	imgY := (float64(pos.Y) - p.offY) / p.scale
	return p.mapper.ImageToView(imgX, imgY)
}

// Dragged begins a selection on the first event of a drag and extends it on
// subsequent ones.
func (p *panel) Dragged(ev *fyne.DragEvent) {
	p.lastPos = ev.Position
	if !p.dragging {
		p.dragging = true
		p.sink(redact.Event{ViewID: p.viewID, Kind: redact.PointerDown, Point: p.toViewPoint(ev.Position)})
		return
	}
	p.sink(redact.Event{ViewID: p.viewID, Kind: redact.PointerMove, Point: p.toViewPoint(ev.Position)})
}

// DragEnd releases the pointer at the last dragged position.
func (p *panel) DragEnd() {
	if !p.dragging {
		return
	}
	p.dragging = false
	p.sink(redact.Event{ViewID: p.viewID, Kind: redact.PointerUp, Point: p.toViewPoint(p.lastPos)})
}

// Tapped forwards a click as a zero-size press/release pair: on an inactive
// view this just activates it, on the active view it commits a zero-area
// selection, which masks nothing.
func (p *panel) Tapped(ev *fyne.PointEvent) {
	pt := p.toViewPoint(ev.Position)
	p.sink(redact.Event{ViewID: p.viewID, Kind: redact.PointerDown, Point: pt})
	p.sink(redact.Event{ViewID: p.viewID, Kind: redact.PointerUp, Point: pt})
}

// draw renders the view image scaled to fit the panel, then the selection
// overlay on top.
func (p *panel) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(output, output.Bounds(), image.NewUniform(colorutil.PanelBackground), image.Point{}, xdraw.Src)

	src := p.source()
	if src == nil || w == 0 || h == 0 {
		return output
	}

	sb := src.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	if sw == 0 || sh == 0 {
		return output
	}

	scale := float64(w) / sw
	if s := float64(h) / sh; s < scale {
		scale = s
	}
	dw, dh := int(sw*scale), int(sh*scale)
	ox, oy := (w-dw)/2, (h-dh)/2

	p.scale = scale
	p.offX, p.offY = float64(ox), float64(oy)

	xdraw.NearestNeighbor.Scale(output, image.Rect(ox, oy, ox+dw, oy+dh), src, sb, xdraw.Src, nil)

	if p.selection != nil {
		p.drawSelectionRect(output, *p.selection)
	}
	return output
}

// drawSelectionRect draws the dashed selection outline over the panel.
func (p *panel) drawSelectionRect(output *image.RGBA, sel geometry.Rect) {
	col := colorutil.SelectionOutline

	ix1, iy1 := p.mapper.ViewToImage(geometry.NewPoint2D(sel.X, sel.Y))
	ix2, iy2 := p.mapper.ViewToImage(geometry.NewPoint2D(sel.X2(), sel.Y2()))
	x1 := int(ix1*p.scale + p.offX)
	y1 := int(iy1*p.scale + p.offY)
	x2 := int(ix2*p.scale + p.offX)
	y2 := int(iy2*p.scale + p.offY)
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}

	bounds := output.Bounds()

	// Dashed outline, alternating pixels.
	for x := x1; x <= x2; x++ {
		if (x+y1)%4 < 2 && x >= bounds.Min.X && x < bounds.Max.X && y1 >= bounds.Min.Y && y1 < bounds.Max.Y {
			output.Set(x, y1, col)
		}
		if (x+y2)%4 < 2 && x >= bounds.Min.X && x < bounds.Max.X && y2 >= bounds.Min.Y && y2 < bounds.Max.Y {
			output.Set(x, y2, col)
		}
	}
	for y := y1; y <= y2; y++ {
		if (x1+y)%4 < 2 && x1 >= bounds.Min.X && x1 < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			output.Set(x1, y, col)
		}
		if (x2+y)%4 < 2 && x2 >= bounds.Min.X && x2 < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			output.Set(x2, y, col)
		}
	}
}
