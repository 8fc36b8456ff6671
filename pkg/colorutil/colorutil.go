// Package colorutil provides the shared palette for the scene redactor's
// overlays and chrome.
package colorutil

import "image/color"

// Overlay and chrome colors used throughout the application.
var (
	// RedactionFill is what a committed region becomes: opaque black.
	RedactionFill = color.RGBA{A: 255}

	// SelectionOutline marks the rubber-band rectangle while dragging.
	SelectionOutline = color.RGBA{R: 255, G: 255, B: 0, A: 255}

	// PanelBackground fills the letterbox area around a scaled view.
	PanelBackground = color.RGBA{A: 255}

	// ChromeBackground is the window background behind the panel grid.
	ChromeBackground = color.NRGBA{R: 0x12, G: 0x12, B: 0x14, A: 0xFF}

	// AccentPrimary tints buttons and focus rings.
	AccentPrimary = color.NRGBA{R: 0xC6, G: 0x28, B: 0x28, A: 0xFF}

	// TextSelection is the translucent fill behind selected label text.
	TextSelection = color.NRGBA{R: 0xFF, G: 0x3B, B: 0x30, A: 0x80}
)
