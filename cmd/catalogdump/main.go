// Command catalogdump prints the frame chain of a dataset scene and summary
// statistics for each frame's LiDAR sweep, without opening a window.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"scene-redactor/internal/catalog"
	"scene-redactor/internal/pointcloud"
)

func main() {
	root := flag.StringP("root", "r", "", "dataset root directory")
	sceneIndex := flag.IntP("scene", "s", 0, "scene index to dump")
	flag.Parse()

	if *root == "" {
		fmt.Println("Usage: catalogdump --root <path> [--scene 0]")
		os.Exit(1)
	}

	cat, err := catalog.Open(*root, catalog.DefaultVersion)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Catalog at %s: %d scenes\n", cat.Root(), cat.SceneCount())

	token, err := cat.FirstFrame(*sceneIndex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve scene %d: %v\n", *sceneIndex, err)
		os.Exit(1)
	}

	for n := 1; token != ""; n++ {
		scene, err := cat.SceneToken(token)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Frame %s: %v\n", token, err)
			os.Exit(1)
		}
		fmt.Printf("\n#%d frame %s (scene %s)\n", n, token, scene)

		for _, channel := range catalog.CameraChannels {
			path, err := cat.ResolveChannel(token, channel)
			if err != nil {
				fmt.Printf("  %-16s missing\n", channel)
				continue
			}
			fmt.Printf("  %-16s %s\n", channel, path)
		}

		lidarPath, err := cat.ResolveChannel(token, catalog.LidarChannel)
		if err != nil {
			fmt.Printf("  %-16s missing\n", catalog.LidarChannel)
		} else if sweep, err := pointcloud.Load(catalog.LidarChannel, lidarPath); err != nil {
			fmt.Printf("  %-16s unreadable: %v\n", catalog.LidarChannel, err)
		} else {
			lo, hi := sweep.AuxRange()
			b := sweep.Bounds()
			fmt.Printf("  %-16s %d points, extent %.1fx%.1f, intensity %.3f-%.3f\n",
				catalog.LidarChannel, len(sweep.Points), b.Width, b.Height, lo, hi)
		}

		token, err = cat.NextFrame(token)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to advance: %v\n", err)
			os.Exit(1)
		}
	}
}
