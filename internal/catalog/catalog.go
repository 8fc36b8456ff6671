// Package catalog provides read-only access to the dataset index that maps
// scenes to frame chains and frames to per-channel asset files.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultVersion is the index directory used when none is specified.
const DefaultVersion = "v1.0-mini"

// CameraChannels lists the camera sensor channels of a frame, in display order.
var CameraChannels = []string{
	"CAM_FRONT_LEFT", "CAM_FRONT", "CAM_FRONT_RIGHT",
	"CAM_BACK_LEFT", "CAM_BACK", "CAM_BACK_RIGHT",
}

// LidarChannel is the LiDAR sensor channel of a frame.
const LidarChannel = "LIDAR_TOP"

// NotFoundError reports a catalog lookup miss: a scene index out of range, an
// unknown frame token, or a channel absent for a frame.
type NotFoundError struct {
	Kind string // "scene", "frame", or "channel"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("catalog: %s %q not found", e.Kind, e.Key)
}

// sceneRecord mirrors one entry of scene.json.
type sceneRecord struct {
	Token            string `json:"token"`
	Name             string `json:"name"`
	FirstSampleToken string `json:"first_sample_token"`
}

// sampleRecord mirrors one entry of sample.json. Next is empty at the end of
// a scene's frame chain.
type sampleRecord struct {
	Token      string `json:"token"`
	Next       string `json:"next"`
	SceneToken string `json:"scene_token"`
}

// sampleDataRecord mirrors one entry of sample_data.json. Filename is
// relative to the dataset root.
type sampleDataRecord struct {
	Token       string `json:"token"`
	SampleToken string `json:"sample_token"`
	Channel     string `json:"channel"`
	Filename    string `json:"filename"`
}

// Catalog is an in-memory view of the dataset index. It is read-only after
// Open and safe for concurrent readers.
type Catalog struct {
	root     string
	scenes   []sceneRecord
	samples  map[string]sampleRecord
	channels map[string]map[string]string // frame token -> channel -> relative filename
}

// Open reads the index tables from <root>/<version> and returns a Catalog.
// An empty version selects DefaultVersion.
func Open(root, version string) (*Catalog, error) {
	if version == "" {
		version = DefaultVersion
	}
	dir := filepath.Join(root, version)

	c := &Catalog{
		root:     root,
		samples:  make(map[string]sampleRecord),
		channels: make(map[string]map[string]string),
	}

	if err := readTable(filepath.Join(dir, "scene.json"), &c.scenes); err != nil {
		return nil, err
	}

	var samples []sampleRecord
	if err := readTable(filepath.Join(dir, "sample.json"), &samples); err != nil {
		return nil, err
	}
	for _, s := range samples {
		c.samples[s.Token] = s
	}

	var data []sampleDataRecord
	if err := readTable(filepath.Join(dir, "sample_data.json"), &data); err != nil {
		return nil, err
	}
	for _, d := range data {
		m := c.channels[d.SampleToken]
		if m == nil {
			m = make(map[string]string)
			c.channels[d.SampleToken] = m
		}
		m[d.Channel] = d.Filename
	}

	return c, nil
}

func readTable(path string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("catalog: reading %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("catalog: parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Root returns the dataset root the catalog was opened on.
func (c *Catalog) Root() string {
	return c.root
}

// SceneCount returns the number of scenes in the index.
func (c *Catalog) SceneCount() int {
	return len(c.scenes)
}

// FirstFrame returns the token of the first frame of the scene at the given
// index.
func (c *Catalog) FirstFrame(sceneIndex int) (string, error) {
	if sceneIndex < 0 || sceneIndex >= len(c.scenes) {
		return "", &NotFoundError{Kind: "scene", Key: fmt.Sprintf("%d", sceneIndex)}
	}
	return c.scenes[sceneIndex].FirstSampleToken, nil
}

// NextFrame returns the token of the frame following frameToken in its
// scene's chain, or "" at the end of the chain.
func (c *Catalog) NextFrame(frameToken string) (string, error) {
	s, ok := c.samples[frameToken]
	if !ok {
		return "", &NotFoundError{Kind: "frame", Key: frameToken}
	}
	return s.Next, nil
}

// SceneToken returns the token of the scene owning frameToken.
func (c *Catalog) SceneToken(frameToken string) (string, error) {
	s, ok := c.samples[frameToken]
	if !ok {
		return "", &NotFoundError{Kind: "frame", Key: frameToken}
	}
	return s.SceneToken, nil
}

// ResolveChannel returns the absolute path of the asset file backing the
// given channel of the given frame.
func (c *Catalog) ResolveChannel(frameToken, channel string) (string, error) {
	if _, ok := c.samples[frameToken]; !ok {
		return "", &NotFoundError{Kind: "frame", Key: frameToken}
	}
	filename, ok := c.channels[frameToken][channel]
	if !ok {
		return "", &NotFoundError{Kind: "channel", Key: channel}
	}
	return filepath.Join(c.root, filename), nil
}
