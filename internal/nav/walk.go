// Package nav walks a scene's frame chain, driving one visualization cycle
// per frame.
package nav

import (
	"errors"
	"log"

	"scene-redactor/internal/catalog"
	"scene-redactor/internal/session"
)

// Walker steps through a scene's frames in chain order. Visit blocks for the
// duration of one interactive visualization cycle; the walk is user-paced.
type Walker struct {
	Catalog *catalog.Catalog
	Loader  *session.Loader

	// Visit runs one visualization cycle on a materialized frame.
	Visit func(*session.Frame)

	// OnSkip is called when a frame fails to load and is skipped. Optional;
	// skips are logged either way.
	OnSkip func(frameToken string, err error)
}

// Walk visits up to maxFrames frames of the scene at sceneIndex, starting
// from its first frame and following successor links until the chain ends or
// the budget is exhausted. A frame that fails to load is skipped, not fatal;
// a catalog miss on first/next ends the walk with the error surfaced.
func (w *Walker) Walk(sceneIndex, maxFrames int) error {
	token, err := w.Catalog.FirstFrame(sceneIndex)
	if err != nil {
		return err
	}

	for i := 0; i < maxFrames && token != ""; i++ {
		frame, err := w.Loader.Load(token)
		if err != nil {
			var le *session.LoadError
			if !errors.As(err, &le) {
				return err
			}
			log.Printf("skipping frame %s: %v", token, err)
			if w.OnSkip != nil {
				w.OnSkip(token, err)
			}
		} else {
			w.Visit(frame)
		}

		token, err = w.Catalog.NextFrame(token)
		if err != nil {
			return err
		}
	}
	return nil
}
