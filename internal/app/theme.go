package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"scene-redactor/pkg/colorutil"
)

// RedactorTheme darkens the chrome around the sensor panels so frame imagery
// stands out, and picks a high-visibility selection color.
type RedactorTheme struct{}

var _ fyne.Theme = (*RedactorTheme)(nil)

func (t *RedactorTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return colorutil.ChromeBackground
	case theme.ColorNamePrimary:
		return colorutil.AccentPrimary
	case theme.ColorNameSelection:
		return colorutil.TextSelection
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *RedactorTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *RedactorTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *RedactorTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}
