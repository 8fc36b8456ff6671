package view

import (
	"image"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"scene-redactor/internal/pointcloud"
	"scene-redactor/pkg/geometry"
)

const (
	scatterWidth  = 640
	scatterHeight = 640
)

// scatterSource renders a point cloud as a top-down scatter, coloring each
// point by its auxiliary scalar. The render is cached and invalidated when
// the underlying points change.
type scatterSource struct {
	view *pointcloud.View

	// dataRect is the plotted axis range: the cloud's X/Y extent. The plot
	// is drawn with hidden axes and zero padding so the pixel<->data mapping
	// stays linear over the full image.
	dataRect geometry.Rect

	img image.Image
}

func newScatterSource(v *pointcloud.View) *scatterSource {
	return &scatterSource{view: v, dataRect: v.Bounds()}
}

// Image returns the cached render, producing it on first use.
func (s *scatterSource) Image() image.Image {
	if s.img == nil {
		s.img = s.render()
	}
	return s.img
}

// Invalidate drops the cached render so the next Image call re-renders from
// the mutated point data.
func (s *scatterSource) Invalidate() {
	s.img = nil
}

func (s *scatterSource) render() image.Image {
	p := plot.New()
	p.HideAxes()
	p.X.Padding = 0
	p.Y.Padding = 0
	p.X.Min, p.X.Max = s.dataRect.X, s.dataRect.X2()
	p.Y.Min, p.Y.Max = s.dataRect.Y, s.dataRect.Y2()

	pts := make(plotter.XYs, len(s.view.Points))
	for i, pt := range s.view.Points {
		pts[i] = plotter.XY{X: float64(pt.X), Y: float64(pt.Y)}
	}

	scatter, err := plotter.NewScatter(pts)
	if err == nil {
		auxMin, auxMax := s.view.AuxRange()
		cm := moreland.Kindlmann()
		if auxMax > auxMin {
			cm.SetMin(auxMin)
			cm.SetMax(auxMax)
		} else {
			cm.SetMin(0)
			cm.SetMax(1)
		}
		points := s.view.Points
		scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			c, cerr := cm.At(float64(points[i].Aux))
			if cerr != nil {
				c, _ = cm.At(cm.Min())
			}
			return draw.GlyphStyle{Color: c, Radius: vg.Points(1), Shape: draw.CircleGlyph{}}
		}
		p.Add(edgeToEdge{scatter})
	}

	img := image.NewRGBA(image.Rect(0, 0, scatterWidth, scatterHeight))
	c := vgimg.NewWith(vgimg.UseImage(img))
	p.Draw(draw.New(c))
	return img
}

// edgeToEdge suppresses a plotter's glyph boxes. plot.Draw pads the data
// area by them, which would shift the pixel<->data mapping scatterMapper
// relies on; without boxes the axis ranges span the full canvas and glyphs
// at the extremes clip instead.
type edgeToEdge struct {
	*plotter.Scatter
}

func (edgeToEdge) GlyphBoxes(*plot.Plot) []plot.GlyphBox { return nil }

// scatterMapper converts between scatter image pixels and the cloud's
// plotted data axes. The plot's Y axis points up while image rows grow
// down, so Y is flipped.
type scatterMapper struct {
	dataRect geometry.Rect
	w, h     float64
}

func newScatterMapper(dataRect geometry.Rect) *scatterMapper {
	return &scatterMapper{dataRect: dataRect, w: scatterWidth, h: scatterHeight}
}

func (m *scatterMapper) ImageToView(x, y float64) geometry.Point2D {
	return geometry.NewPoint2D(
		m.dataRect.X+(x/m.w)*m.dataRect.Width,
		m.dataRect.Y+(1-y/m.h)*m.dataRect.Height,
	)
}

func (m *scatterMapper) ViewToImage(p geometry.Point2D) (x, y float64) {
	if m.dataRect.Width == 0 || m.dataRect.Height == 0 {
		return 0, 0
	}
	x = (p.X - m.dataRect.X) / m.dataRect.Width * m.w
	y = (1 - (p.Y-m.dataRect.Y)/m.dataRect.Height) * m.h
	return x, y
}
