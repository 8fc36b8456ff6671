// Package raster provides the camera-image variant of a sensor view: loading,
// in-place rectangular redaction, and the bookkeeping needed to persist edits
// to the dataset mirror.
package raster

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"scene-redactor/pkg/colorutil"
	"scene-redactor/pkg/geometry"

	_ "golang.org/x/image/tiff"
)

// View is the materialized raster for one camera channel of one frame.
type View struct {
	Channel    string
	SourcePath string
	MirrorPath string
	Img        *image.RGBA
}

// Load decodes the image at sourcePath into a View. mirrorPath is the
// write target for later redaction persistence.
func Load(channel, sourcePath, mirrorPath string) (*View, error) {
	if !IsSupportedFormat(sourcePath) {
		return nil, fmt.Errorf("raster: unsupported format %q (supported: %s)",
			filepath.Ext(sourcePath), strings.Join(SupportedFormats(), ", "))
	}

	f, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("raster: opening %s: %w", sourcePath, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("raster: decoding %s: %w", sourcePath, err)
	}

	return &View{
		Channel:    channel,
		SourcePath: sourcePath,
		MirrorPath: mirrorPath,
		Img:        toRGBA(img),
	}, nil
}

// toRGBA converts any decoded image to RGBA so redaction can write pixels
// directly.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// ID returns the view's identifier, its channel name.
func (v *View) ID() string {
	return v.Channel
}

// Bounds returns the view's extent in its own pixel coordinate space.
func (v *View) Bounds() geometry.Rect {
	b := v.Img.Bounds()
	return geometry.NewRect(0, 0, float64(b.Dx()), float64(b.Dy()))
}

// ApplyRedaction zeroes every pixel strictly within the region on all color
// channels (opaque black). The continuous corners are truncated toward zero
// and the region clipped to the raster before masking; pixels in
// [x1,x2) x [y1,y2) are affected. Returns true if any pixel changed.
func (v *View) ApplyRedaction(region geometry.Rect) bool {
	clipped := region.Clip(v.Bounds())

	x1, y1 := int(clipped.X), int(clipped.Y)
	x2, y2 := int(clipped.X2()), int(clipped.Y2())

	fill := colorutil.RedactionFill
	changed := false
	for y := y1; y < y2; y++ {
		row := v.Img.Pix[y*v.Img.Stride+x1*4 : y*v.Img.Stride+x2*4]
		for i := 0; i < len(row); i += 4 {
			if row[i] != fill.R || row[i+1] != fill.G || row[i+2] != fill.B || row[i+3] != fill.A {
				changed = true
			}
			row[i], row[i+1], row[i+2], row[i+3] = fill.R, fill.G, fill.B, fill.A
		}
	}
	return changed
}

// MirroredPath returns the view's write target in the dataset mirror.
func (v *View) MirroredPath() string {
	return v.MirrorPath
}

// Image returns the view's pixel data.
func (v *View) Image() image.Image {
	return v.Img
}

// SupportedFormats returns the raster file extensions the loader accepts.
func SupportedFormats() []string {
	return []string{".jpg", ".jpeg", ".png", ".tiff", ".tif"}
}

// IsSupportedFormat checks if the given path has a supported raster format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
