package mirror

import (
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
)

// jpegQuality matches the quality of typical dataset capture pipelines
// closely enough that a redacted frame is not visibly re-degraded.
const jpegQuality = 95

// Persist writes a redacted raster to its mirrored path, overwriting any
// prior content there. The encoding is chosen by file extension.
func Persist(mirroredPath string, img image.Image) error {
	out, err := os.Create(mirroredPath)
	if err != nil {
		return &StorageError{Op: "create", Path: mirroredPath, Err: err}
	}

	var encErr error
	switch strings.ToLower(filepath.Ext(mirroredPath)) {
	case ".png":
		encErr = png.Encode(out, img)
	case ".tif", ".tiff":
		encErr = tiff.Encode(out, img, nil)
	default:
		encErr = jpeg.Encode(out, img, &jpeg.Options{Quality: jpegQuality})
	}
	if encErr != nil {
		out.Close()
		return &StorageError{Op: "encode", Path: mirroredPath, Err: encErr}
	}
	if err := out.Close(); err != nil {
		return &StorageError{Op: "close", Path: mirroredPath, Err: err}
	}
	return nil
}
