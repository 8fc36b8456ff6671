package main

import (
	"fmt"
	"log"
	"os"

	fyneapp "fyne.io/fyne/v2/app"
	flag "github.com/spf13/pflag"

	"scene-redactor/internal/app"
	"scene-redactor/internal/catalog"
	"scene-redactor/internal/mirror"
	"scene-redactor/internal/nav"
	"scene-redactor/internal/redact"
	"scene-redactor/internal/session"
	"scene-redactor/internal/version"
	"scene-redactor/pkg/geometry"
	"scene-redactor/ui/prefs"
	"scene-redactor/ui/view"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	pref := prefs.Load()

	var (
		root        = flag.StringP("root", "r", pref.String(prefs.KeyDatasetRoot, ""), "dataset root directory")
		sceneIndex  = flag.IntP("scene", "s", pref.Int(prefs.KeySceneIndex, 0), "scene index to review")
		maxFrames   = flag.IntP("frames", "n", 10, "maximum number of frames to step through")
		viewOnly    = flag.Bool("view-only", false, "browse frames without redacting or writing")
		showVersion = flag.BoolP("version", "v", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *root == "" {
		log.Fatal("no dataset root given; pass --root or set it in preferences")
	}

	mirrorRoot := mirror.Root(*root)
	if *viewOnly {
		log.Printf("view-only mode, edits will not be written")
	} else {
		var err error
		mirrorRoot, err = mirror.EnsureMirror(*root)
		if err != nil {
			log.Fatalf("preparing mirror copy: %v", err)
		}
		log.Printf("edits write to %s", mirrorRoot)
	}

	cat, err := catalog.Open(*root, catalog.DefaultVersion)
	if err != nil {
		log.Fatalf("opening catalog: %v", err)
	}
	if *sceneIndex < 0 || *sceneIndex >= cat.SceneCount() {
		log.Fatalf("scene index %d out of range (catalog has %d scenes)", *sceneIndex, cat.SceneCount())
	}

	pref.SetString(prefs.KeyDatasetRoot, *root)
	pref.SetInt(prefs.KeySceneIndex, *sceneIndex)
	if err := pref.Save(); err != nil {
		log.Printf("saving preferences: %v", err)
	}

	loader := session.NewLoader(cat, *root, mirrorRoot)
	state := app.NewState(*root, mirrorRoot, *sceneIndex, *viewOnly)

	fyneApp := fyneapp.New()
	fyneApp.Settings().SetTheme(&app.RedactorTheme{})

	var persist redact.PersistFunc
	if !*viewOnly {
		persist = mirror.Persist
	}

	machine := redact.NewMachine(nil, persist)
	machine.SetViewOnly(*viewOnly)

	width := float32(pref.Float(prefs.KeyWindowWidth, 1600))
	height := float32(pref.Float(prefs.KeyWindowHeight, 900))
	viewer := view.New(fyneApp, state, machine, width, height)
	machine.SetDisplay(viewer)

	machine.OnCommit(func(viewID string, region geometry.Rect) {
		state.Emit(app.EventRedactionApplied, viewID)
	})
	machine.OnPersistError(func(viewID string, err error) {
		log.Printf("persisting %s: %v", viewID, err)
		state.Emit(app.EventPersistFailed, app.PersistFailure{ViewID: viewID, Err: err})
	})

	walker := &nav.Walker{
		Catalog: cat,
		Loader:  loader,
		Visit: func(f *session.Frame) {
			viewer.ShowFrame(f)
			viewer.WaitAdvance()
		},
		OnSkip: func(token string, err error) {
			log.Printf("skipping frame %s: %v", token, err)
			state.Emit(app.EventFrameSkipped, token)
		},
	}

	go func() {
		if err := walker.Walk(*sceneIndex, *maxFrames); err != nil {
			log.Printf("walk stopped: %v", err)
		}
		state.Emit(app.EventWalkFinished, nil)
		viewer.SetStatus("End of scene.")
	}()

	viewer.Window().SetOnClosed(func() {
		sz := viewer.Window().Canvas().Size()
		pref.SetFloat(prefs.KeyWindowWidth, float64(sz.Width))
		pref.SetFloat(prefs.KeyWindowHeight, float64(sz.Height))
		if err := pref.Save(); err != nil {
			log.Printf("saving preferences: %v", err)
		}
		os.Exit(0)
	})

	viewer.Window().ShowAndRun()
}
