// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: attr/style.go
// Summary: Bridges an Attributes value to a tcell.Style for rendering.
// Notes: tcell has no Invisible() style method; that flag bit is carried
//        through the identifier but has no renderer-side effect here,
//        matching the teacher's own style mapping.

package attr

import "github.com/gdamore/tcell/v2"

// ToTcellStyle renders a's current (flags, fg, bg) as a tcell.Style. It
// does not consult a Storage; callers already hold the dereferenced
// Attributes (typically via Storage.FromAddress).
func ToTcellStyle(a *Attributes) tcell.Style {
	style := tcell.StyleDefault.
		Bold(a.Bold()).
		Underline(a.Underline()).
		Blink(a.Blink()).
		Reverse(a.Inverse()).
		Dim(a.Dim()).
		Italic(a.Italic())

	style = style.Foreground(colorFor(a.FgMode(), a.GetFg()))
	style = style.Background(colorFor(a.BgMode(), a.GetBg()))
	return style
}

func colorFor(mode ColorMode, value uint32) tcell.Color {
	switch mode {
	case ColorModeDefault:
		return tcell.ColorDefault
	case ColorModeP16, ColorModeP256:
		return tcell.PaletteColor(int(value))
	case ColorModeRGB:
		r, g, b := FromRGB(value)
		return tcell.NewRGBColor(int32(r), int32(g), int32(b))
	default:
		return tcell.ColorDefault
	}
}
