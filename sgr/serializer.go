// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sgr/serializer.go
// Summary: Streaming scan over buffer cells that emits the minimal SGR
//          escape transitions between consecutive cells' attributes.
// Notes: The cell buffer itself is an external collaborator (see
//        attr package docs); Cell here is the narrow read-only view this
//        package needs: a glyph, its stored column width, and the
//        identifier attr.Storage minted for it.

package sgr

import (
	"fmt"
	"strconv"
	"strings"

	"texelation/attr"
)

// Cell is one grid position as the serializer needs to see it.
type Cell struct {
	Glyph string
	Width int
	ID    attr.Identifier
}

// Row is one line of cells.
type Row struct {
	Cells []Cell
}

// Serializer walks rows of cells and reconstructs their attributes
// through a Storage, emitting minimal SGR transitions between them.
type Serializer struct {
	storage *attr.Storage
}

// NewSerializer returns a Serializer that resolves identifiers through
// storage.
func NewSerializer(storage *attr.Storage) *Serializer {
	return &Serializer{storage: storage}
}

// Serialize renders rows as UTF-8 text with CSI SGR escapes, joining rows
// with "\r\n". The starting state is a synthetic all-default, all-flags-
// clear attribute, so the first non-default cell always triggers a
// transition.
func (s *Serializer) Serialize(rows []Row) string {
	var buf strings.Builder
	old := attr.Attributes{}
	for i, row := range rows {
		if i > 0 {
			buf.WriteString("\r\n")
		}
		s.serializeRow(&buf, row.Cells, &old)
	}
	return buf.String()
}

func (s *Serializer) serializeRow(buf *strings.Builder, cells []Cell, old *attr.Attributes) {
	for _, c := range cells {
		var next attr.Attributes
		s.storage.FromAddress(c.ID, &next)

		if esc := transition(old, &next); esc != "" {
			buf.WriteString(esc)
		}

		if c.Glyph == "" {
			buf.WriteByte(' ')
		} else {
			buf.WriteString(c.Glyph)
		}

		*old = next
	}
}

// RowWidth returns the column count a row of cells occupies, accounting
// for zero-width combining-mark cells and wide cells that occupy more
// than one column. Callers that lay out a fixed-width grid use this to
// validate a row fits, rather than relying on len(cells).
func RowWidth(cells []Cell) int {
	total := 0
	for _, c := range cells {
		total += AdvanceColumns(c.Width, c.Glyph == "")
	}
	return total
}

var flagDiffCodes = []struct {
	get    func(*attr.Attributes) bool
	setOn  string
	setOff string
}{
	{(*attr.Attributes).Bold, "1", "22"},
	{(*attr.Attributes).Dim, "2", "22"},
	{(*attr.Attributes).Italic, "3", "23"},
	{(*attr.Attributes).Underline, "4", "24"},
	{(*attr.Attributes).Blink, "5", "25"},
	{(*attr.Attributes).Inverse, "7", "27"},
	{(*attr.Attributes).Invisible, "8", "28"},
}

// transition computes the minimal SGR escape sequence to move from old to
// new, or "" if they are identical. Emission order is flags, then
// foreground, then background.
func transition(old, next *attr.Attributes) string {
	var codes []string

	for _, f := range flagDiffCodes {
		was, now := f.get(old), f.get(next)
		if was == now {
			continue
		}
		if now {
			codes = append(codes, f.setOn)
		} else {
			codes = append(codes, f.setOff)
		}
	}

	if old.FgMode() != next.FgMode() || old.GetFg() != next.GetFg() {
		codes = append(codes, colorCode(next.FgMode(), next.GetFg(), true))
	}
	if old.BgMode() != next.BgMode() || old.GetBg() != next.GetBg() {
		codes = append(codes, colorCode(next.BgMode(), next.GetBg(), false))
	}

	if len(codes) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(codes, ";") + "m"
}

func colorCode(mode attr.ColorMode, value uint32, isFg bool) string {
	switch mode {
	case attr.ColorModeDefault:
		if isFg {
			return "39"
		}
		return "49"
	case attr.ColorModeP16:
		base := 30
		if !isFg {
			base = 40
		}
		if value&8 != 0 {
			base += 60
		}
		return strconv.Itoa(base + int(value&7))
	case attr.ColorModeP256:
		if isFg {
			return "38;5;" + strconv.Itoa(int(value))
		}
		return "48;5;" + strconv.Itoa(int(value))
	case attr.ColorModeRGB:
		r, g, b := attr.FromRGB(value)
		prefix := "38"
		if !isFg {
			prefix = "48"
		}
		return fmt.Sprintf("%s;2;%d;%d;%d", prefix, r, g, b)
	default:
		return ""
	}
}
