package nav

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"scene-redactor/internal/catalog"
	"scene-redactor/internal/mirror"
	"scene-redactor/internal/pointcloud"
	"scene-redactor/internal/session"
)

// buildDataset writes a one-scene dataset with the given frames chained in
// order, each carrying all six cameras and a small LiDAR sweep.
func buildDataset(t *testing.T, root string, frames ...string) {
	t.Helper()

	indexDir := filepath.Join(root, catalog.DefaultVersion)
	require.NoError(t, os.MkdirAll(indexDir, 0o755))

	var samples []map[string]string
	var sampleData []map[string]string
	for i, token := range frames {
		next := ""
		if i+1 < len(frames) {
			next = frames[i+1]
		}
		samples = append(samples, map[string]string{
			"token": token, "next": next, "scene_token": "scene-0",
		})
		for _, channel := range catalog.CameraChannels {
			rel := filepath.Join("samples", channel, token+".png")
			writePNG(t, filepath.Join(root, rel))
			sampleData = append(sampleData, map[string]string{
				"token":        fmt.Sprintf("sd-%s-%s", token, channel),
				"sample_token": token, "channel": channel, "filename": rel,
			})
		}
		rel := filepath.Join("samples", catalog.LidarChannel, token+".pcd.bin")
		writeSweep(t, filepath.Join(root, rel))
		sampleData = append(sampleData, map[string]string{
			"token":        fmt.Sprintf("sd-%s-lidar", token),
			"sample_token": token, "channel": catalog.LidarChannel, "filename": rel,
		})
	}

	writeJSON(t, filepath.Join(indexDir, "scene.json"), []map[string]string{
		{"token": "scene-0", "name": "scene-0001", "first_sample_token": frames[0]},
	})
	writeJSON(t, filepath.Join(indexDir, "sample.json"), samples)
	writeJSON(t, filepath.Join(indexDir, "sample_data.json"), sampleData)
}

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewRGBA(image.Rect(0, 0, 16, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 50, G: 50, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func writeSweep(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	var buf bytes.Buffer
	require.NoError(t, pointcloud.Encode(&buf, []pointcloud.Point{{X: 1, Y: 2, Z: 3, Aux: 0.5}}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func newWalker(t *testing.T, frames ...string) (*Walker, string, *[]string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "dataset")
	buildDataset(t, root, frames...)

	mirrorRoot, err := mirror.EnsureMirror(root)
	require.NoError(t, err)
	cat, err := catalog.Open(root, "")
	require.NoError(t, err)

	visited := &[]string{}
	w := &Walker{
		Catalog: cat,
		Loader:  session.NewLoader(cat, root, mirrorRoot),
		Visit:   func(f *session.Frame) { *visited = append(*visited, f.Token) },
	}
	return w, root, visited
}

func TestWalk_FollowsChainToEnd(t *testing.T) {
	w, _, visited := newWalker(t, "frame-a", "frame-b", "frame-c")

	require.NoError(t, w.Walk(0, 10))
	require.Equal(t, []string{"frame-a", "frame-b", "frame-c"}, *visited)
}

func TestWalk_HonorsFrameBudget(t *testing.T) {
	w, _, visited := newWalker(t, "frame-a", "frame-b", "frame-c")

	require.NoError(t, w.Walk(0, 2))
	require.Equal(t, []string{"frame-a", "frame-b"}, *visited)
}

func TestWalk_SkipsUnloadableFrame(t *testing.T) {
	w, root, visited := newWalker(t, "frame-a", "frame-b", "frame-c")

	// Corrupt one camera of the middle frame.
	bad := filepath.Join(root, "samples", "CAM_FRONT", "frame-b.png")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o644))

	var skipped []string
	w.OnSkip = func(token string, err error) { skipped = append(skipped, token) }

	require.NoError(t, w.Walk(0, 10))
	require.Equal(t, []string{"frame-a", "frame-c"}, *visited, "the broken frame is skipped, not fatal")
	require.Equal(t, []string{"frame-b"}, skipped)
}

func TestWalk_SceneIndexOutOfRange(t *testing.T) {
	w, _, visited := newWalker(t, "frame-a")

	err := w.Walk(7, 10)
	var nf *catalog.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Empty(t, *visited)
}
