// Package pointcloud provides the LiDAR variant of a sensor view: decoding
// packed point files and masking the color-mapped scalar inside a region.
//
// Point-cloud edits are intentionally transient: only rasters are persisted
// to the dataset mirror, matching the observed behavior of the capture
// tooling this replaces.
package pointcloud

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"

	"scene-redactor/pkg/geometry"
)

// Point is one LiDAR return: spatial position plus the auxiliary scalar
// (reflectance/intensity) that the display maps to color.
type Point struct {
	X, Y, Z float32
	Aux     float32
}

// pointSize is the on-disk record size: four packed little-endian float32s.
const pointSize = 16

// View is the materialized point cloud for the LiDAR channel of one frame.
// It has no mirrored path; redactions live only in memory.
type View struct {
	Channel    string
	SourcePath string
	Points     []Point
}

// Load reads a packed point file into a View.
func Load(channel, sourcePath string) (*View, error) {
	f, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("pointcloud: opening %s: %w", sourcePath, err)
	}
	defer f.Close()

	pts, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("pointcloud: decoding %s: %w", sourcePath, err)
	}
	return &View{Channel: channel, SourcePath: sourcePath, Points: pts}, nil
}

// Decode reads packed little-endian (x, y, z, aux) float32 records until EOF.
func Decode(r io.Reader) ([]Point, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(raw)%pointSize != 0 {
		return nil, fmt.Errorf("truncated point record: %d trailing bytes", len(raw)%pointSize)
	}

	pts := make([]Point, len(raw)/pointSize)
	for i := range pts {
		off := i * pointSize
		pts[i] = Point{
			X:   math.Float32frombits(binary.LittleEndian.Uint32(raw[off:])),
			Y:   math.Float32frombits(binary.LittleEndian.Uint32(raw[off+4:])),
			Z:   math.Float32frombits(binary.LittleEndian.Uint32(raw[off+8:])),
			Aux: math.Float32frombits(binary.LittleEndian.Uint32(raw[off+12:])),
		}
	}
	return pts, nil
}

// Encode writes points as packed little-endian float32 records.
func Encode(w io.Writer, pts []Point) error {
	buf := make([]byte, len(pts)*pointSize)
	for i, p := range pts {
		off := i * pointSize
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(p.X))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(p.Y))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(p.Z))
		binary.LittleEndian.PutUint32(buf[off+12:], math.Float32bits(p.Aux))
	}
	_, err := w.Write(buf)
	return err
}

// ID returns the view's identifier, its channel name.
func (v *View) ID() string {
	return v.Channel
}

// Bounds returns the extent of the plotted spatial axes (X and Y). This is
// the view's own coordinate space: selection regions on the scatter arrive
// in these units.
func (v *View) Bounds() geometry.Rect {
	if len(v.Points) == 0 {
		return geometry.Rect{}
	}
	minX, maxX := float64(v.Points[0].X), float64(v.Points[0].X)
	minY, maxY := float64(v.Points[0].Y), float64(v.Points[0].Y)
	for _, p := range v.Points[1:] {
		minX = math.Min(minX, float64(p.X))
		maxX = math.Max(maxX, float64(p.X))
		minY = math.Min(minY, float64(p.Y))
		maxY = math.Max(maxY, float64(p.Y))
	}
	return geometry.NewRect(minX, minY, maxX-minX, maxY-minY)
}

// ApplyRedaction zeroes the auxiliary scalar of every point whose plotted
// coordinates fall within the region, inclusive on both bounds. Positions
// are never modified and no point is removed; only its displayed scalar is
// blanked. Returns true if any point changed.
func (v *View) ApplyRedaction(region geometry.Rect) bool {
	// A zero-width or zero-height selection is a valid commit that masks
	// nothing, even though the region bounds are otherwise inclusive.
	if region.IsEmpty() {
		return false
	}
	changed := false
	for i := range v.Points {
		p := &v.Points[i]
		x, y := float64(p.X), float64(p.Y)
		if x >= region.X && x <= region.X2() && y >= region.Y && y <= region.Y2() {
			if p.Aux != 0 {
				changed = true
			}
			p.Aux = 0
		}
	}
	return changed
}

// AuxRange returns the minimum and maximum auxiliary scalar, used to scale
// the scatter's color map.
func (v *View) AuxRange() (min, max float64) {
	if len(v.Points) == 0 {
		return 0, 0
	}
	aux := make([]float64, len(v.Points))
	for i, p := range v.Points {
		aux[i] = float64(p.Aux)
	}
	return floats.Min(aux), floats.Max(aux)
}
