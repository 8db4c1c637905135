// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: attr/attributes.go
// Summary: Accessors over the 32-bit packed attribute identifier: the
//          inline (no-RGB) form and the RGB working value that backs a
//          pool-pointer identifier.

package attr

// ColorMode discriminates how a foreground or background channel is
// encoded.
type ColorMode uint32

const (
	ColorModeDefault ColorMode = 0
	ColorModeP16     ColorMode = 1
	ColorModeP256    ColorMode = 2
	ColorModeRGB     ColorMode = 3
)

const (
	maskFgIndex  uint32 = 0x000000FF
	maskBgIndex  uint32 = 0x0000FF00
	shiftBgIndex        = 8

	maskFgMode  uint32 = 0x00030000
	shiftFgMode        = 16
	maskBgMode  uint32 = 0x000C0000
	shiftBgMode        = 18

	bitBold      uint32 = 1 << 20
	bitUnderline uint32 = 1 << 21
	bitBlink     uint32 = 1 << 22
	bitInverse   uint32 = 1 << 23
	bitInvisible uint32 = 1 << 24
	bitDim       uint32 = 1 << 25
	bitItalic    uint32 = 1 << 26

	// TagBit discriminates the inline form (0) from the pool-pointer form
	// (1) of a 32-bit Identifier.
	TagBit uint32 = 1 << 31
)

// Identifier is the 32-bit tagged attribute value: either the attribute
// itself (inline form) or a pool word-index with the tag bit set.
type Identifier uint32

// IsPoolPointer reports whether id's low 31 bits address a pool node.
func (id Identifier) IsPoolPointer() bool { return uint32(id)&TagBit != 0 }

// Index returns the pool word-index encoded in a pool-pointer identifier.
// The result is meaningless for an inline identifier.
func (id Identifier) Index() uint32 { return uint32(id) &^ TagBit }

// Attributes is a working value holding (flags, fg, bg) plus a memoized
// address: the last identifier returned for the current field values.
// The memo is explicit rather than relying on object identity, per the
// design note on replacing identity-based memoization in a systems
// language: it is a tuple invalidated by any setter.
type Attributes struct {
	flags uint32
	fg    uint32
	bg    uint32

	memoSet   bool
	memoFlags uint32
	memoFg    uint32
	memoBg    uint32
	address   uint32
}

func (a *Attributes) invalidate() {
	a.memoSet = false
}

// Flags returns the raw flags word (mode bits, palette bytes, flag bits).
func (a *Attributes) Flags() uint32 { return a.flags }

// Address returns the last memoized identifier, without checking whether
// the memo is still valid. Use UpdateAddress for that.
func (a *Attributes) Address() uint32 { return a.address }

// Equal reports whether two attribute values hold the same (flags, fg, bg)
// triple.
func (a *Attributes) Equal(other *Attributes) bool {
	return a.flags == other.flags && a.fg == other.fg && a.bg == other.bg
}

func (a *Attributes) flagBit(bit uint32) bool { return a.flags&bit != 0 }

func (a *Attributes) setFlagBit(bit uint32, v bool) {
	if v {
		a.flags |= bit
	} else {
		a.flags &^= bit
	}
	a.invalidate()
}

func (a *Attributes) Bold() bool           { return a.flagBit(bitBold) }
func (a *Attributes) SetBold(v bool)       { a.setFlagBit(bitBold, v) }
func (a *Attributes) Underline() bool      { return a.flagBit(bitUnderline) }
func (a *Attributes) SetUnderline(v bool)  { a.setFlagBit(bitUnderline, v) }
func (a *Attributes) Blink() bool          { return a.flagBit(bitBlink) }
func (a *Attributes) SetBlink(v bool)      { a.setFlagBit(bitBlink, v) }
func (a *Attributes) Inverse() bool        { return a.flagBit(bitInverse) }
func (a *Attributes) SetInverse(v bool)    { a.setFlagBit(bitInverse, v) }
func (a *Attributes) Invisible() bool      { return a.flagBit(bitInvisible) }
func (a *Attributes) SetInvisible(v bool)  { a.setFlagBit(bitInvisible, v) }
func (a *Attributes) Dim() bool            { return a.flagBit(bitDim) }
func (a *Attributes) SetDim(v bool)        { a.setFlagBit(bitDim, v) }
func (a *Attributes) Italic() bool         { return a.flagBit(bitItalic) }
func (a *Attributes) SetItalic(v bool)     { a.setFlagBit(bitItalic, v) }

// FgMode returns the foreground color mode.
func (a *Attributes) FgMode() ColorMode {
	return ColorMode((a.flags & maskFgMode) >> shiftFgMode)
}

// SetFgMode sets the foreground color mode. Switching to RGB clears the
// foreground palette-index byte, so two attributes interned as pool nodes
// compare equal bit-for-bit once in RGB mode.
func (a *Attributes) SetFgMode(m ColorMode) {
	a.flags = (a.flags &^ maskFgMode) | (uint32(m) << shiftFgMode)
	if m == ColorModeRGB {
		a.flags &^= maskFgIndex
	}
	a.invalidate()
}

// BgMode returns the background color mode.
func (a *Attributes) BgMode() ColorMode {
	return ColorMode((a.flags & maskBgMode) >> shiftBgMode)
}

// SetBgMode sets the background color mode, with the same RGB clearing
// behavior as SetFgMode.
func (a *Attributes) SetBgMode(m ColorMode) {
	a.flags = (a.flags &^ maskBgMode) | (uint32(m) << shiftBgMode)
	if m == ColorModeRGB {
		a.flags &^= maskBgIndex
	}
	a.invalidate()
}

// GetFg returns the foreground color value, interpreted according to the
// current foreground mode.
func (a *Attributes) GetFg() uint32 {
	switch a.FgMode() {
	case ColorModeDefault:
		return 0
	case ColorModeRGB:
		return a.fg
	default:
		return a.flags & maskFgIndex
	}
}

// SetFg sets the foreground color value, interpreted according to the
// current foreground mode. A no-op in DEFAULT mode; truncated to a byte
// in P16/P256 mode; stored verbatim in RGB mode.
func (a *Attributes) SetFg(value uint32) {
	switch a.FgMode() {
	case ColorModeDefault:
		return
	case ColorModeRGB:
		a.fg = value
	default:
		a.flags = (a.flags &^ maskFgIndex) | (value & 0xFF)
	}
	a.invalidate()
}

// GetBg returns the background color value, symmetric to GetFg.
func (a *Attributes) GetBg() uint32 {
	switch a.BgMode() {
	case ColorModeDefault:
		return 0
	case ColorModeRGB:
		return a.bg
	default:
		return (a.flags & maskBgIndex) >> shiftBgIndex
	}
}

// SetBg sets the background color value, symmetric to SetFg.
func (a *Attributes) SetBg(value uint32) {
	switch a.BgMode() {
	case ColorModeDefault:
		return
	case ColorModeRGB:
		a.bg = value
	default:
		a.flags = (a.flags &^ maskBgIndex) | ((value & 0xFF) << shiftBgIndex)
	}
	a.invalidate()
}

// HasRGB reports whether either channel needs pool-pointer storage.
func (a *Attributes) HasRGB() bool {
	return a.FgMode() == ColorModeRGB || a.BgMode() == ColorModeRGB
}

// UpdateAddress returns the memoized identifier if (flags, fg, bg) are
// unchanged since it was set; otherwise it clears the memo and returns 0.
func (a *Attributes) UpdateAddress() uint32 {
	if a.memoSet && a.memoFlags == a.flags && a.memoFg == a.fg && a.memoBg == a.bg {
		return a.address
	}
	a.memoSet = false
	a.address = 0
	return 0
}

// memoize records id as the identifier for the current field values.
func (a *Attributes) memoize(id uint32) {
	a.memoFlags = a.flags
	a.memoFg = a.fg
	a.memoBg = a.bg
	a.memoSet = true
	a.address = id
}

// setRaw overwrites (flags, fg, bg) directly, bypassing the mode-aware
// setters. Used when reconstructing a value from a stored identifier,
// where the fields are already known to be internally consistent.
func (a *Attributes) setRaw(flags, fg, bg uint32) {
	a.flags = flags
	a.fg = fg
	a.bg = bg
}

// ToRGB packs three 8-bit channels into the 0x00RRGGBB word stored in the
// FG/BG pool fields.
func ToRGB(r, g, b uint8) uint32 {
	return (uint32(r) << 16) | (uint32(g) << 8) | uint32(b)
}

// FromRGB unpacks a 0x00RRGGBB word into its three channels.
func FromRGB(v uint32) (r, g, b uint8) {
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}
