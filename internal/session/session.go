// Package session materializes one frame's full set of sensor views for a
// single visualization cycle.
package session

import (
	"fmt"

	"scene-redactor/internal/catalog"
	"scene-redactor/internal/mirror"
	"scene-redactor/internal/pointcloud"
	"scene-redactor/internal/raster"
)

// LoadError reports a frame whose assets could not be materialized: a
// channel missing from the catalog, or a file missing or undecodable on
// disk. The navigation loop skips such frames.
type LoadError struct {
	Frame   string
	Channel string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("session: frame %s channel %s: %v", e.Frame, e.Channel, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Frame is one synchronization point across sensors, fully materialized.
// Views are loaded fresh from the source/mirror trees on every cycle;
// nothing is cached across frames.
type Frame struct {
	Token      string
	SceneToken string

	// FrontSourcePath is the CAM_FRONT asset path, shown in the info panel.
	FrontSourcePath string

	Cameras []*raster.View
	Lidar   *pointcloud.View
}

// Loader materializes frames by resolving channels through the catalog and
// decoding the referenced files.
type Loader struct {
	cat        *catalog.Catalog
	sourceRoot string
	mirrorRoot string
}

// NewLoader creates a Loader. mirrorRoot is where redacted rasters will be
// persisted; each RasterView records its mirrored path at load time.
func NewLoader(cat *catalog.Catalog, sourceRoot, mirrorRoot string) *Loader {
	return &Loader{cat: cat, sourceRoot: sourceRoot, mirrorRoot: mirrorRoot}
}

// Load materializes all camera rasters and the LiDAR point cloud for the
// frame. Any resolve or decode failure aborts the whole frame with a
// LoadError.
func (l *Loader) Load(frameToken string) (*Frame, error) {
	sceneToken, err := l.cat.SceneToken(frameToken)
	if err != nil {
		return nil, &LoadError{Frame: frameToken, Channel: "", Err: err}
	}

	f := &Frame{
		Token:      frameToken,
		SceneToken: sceneToken,
		Cameras:    make([]*raster.View, 0, len(catalog.CameraChannels)),
	}

	for _, channel := range catalog.CameraChannels {
		srcPath, err := l.cat.ResolveChannel(frameToken, channel)
		if err != nil {
			return nil, &LoadError{Frame: frameToken, Channel: channel, Err: err}
		}
		mirrorPath, err := mirror.MirroredPath(l.sourceRoot, l.mirrorRoot, srcPath)
		if err != nil {
			return nil, &LoadError{Frame: frameToken, Channel: channel, Err: err}
		}
		view, err := raster.Load(channel, srcPath, mirrorPath)
		if err != nil {
			return nil, &LoadError{Frame: frameToken, Channel: channel, Err: err}
		}
		f.Cameras = append(f.Cameras, view)

		if channel == "CAM_FRONT" {
			f.FrontSourcePath = srcPath
		}
	}

	lidarPath, err := l.cat.ResolveChannel(frameToken, catalog.LidarChannel)
	if err != nil {
		return nil, &LoadError{Frame: frameToken, Channel: catalog.LidarChannel, Err: err}
	}
	f.Lidar, err = pointcloud.Load(catalog.LidarChannel, lidarPath)
	if err != nil {
		return nil, &LoadError{Frame: frameToken, Channel: catalog.LidarChannel, Err: err}
	}

	return f, nil
}
