// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tui/parser/vterm.go
// Summary: Virtual terminal grid state. Tracks cursor, scrolling region,
//          and the active SGR attribute state, interning every cell's
//          attributes through a shared attr.Storage instead of carrying a
//          raw color struct per cell.

package parser

import (
	"fmt"
	"log"

	"texelation/attr"
)

// VTerm holds the state of a virtual terminal.
type VTerm struct {
	width, height              int
	cursorX, cursorY           int
	savedCursorX, savedCursorY int
	grid                       [][]Cell
	currentAttrs               attr.Attributes
	storage                    *attr.Storage
	tabStops                   map[int]bool
	cursorVisible              bool
	wrapNext                   bool
	autoWrapMode               bool
	TitleChanged               func(string)
	WriteToPty                 func([]byte)
	marginTop, marginBottom    int
}

// NewVTerm creates and initializes a new virtual terminal. storage is the
// attribute interning pool every cell's attributes are minted against; it
// is typically shared across every pane a client renders.
func NewVTerm(width, height int, storage *attr.Storage, opts ...Option) *VTerm {
	v := &VTerm{
		width:         width,
		height:        height,
		grid:          make([][]Cell, height),
		storage:       storage,
		tabStops:      make(map[int]bool),
		wrapNext:      false,
		cursorVisible: true,
		autoWrapMode:  true,
		marginTop:     0,          // Default margin is top row
		marginBottom:  height - 1, // Default margin is bottom row
	}
	for _, opt := range opts {
		opt(v)
	}
	for i := range v.grid {
		v.grid[i] = make([]Cell, width)
	}
	v.ClearScreen()
	for i := 0; i < width; i++ {
		if i%8 == 0 {
			v.tabStops[i] = true
		}
	}
	return v
}

// cellFor mints an identifier for the current attribute state and pairs it
// with r.
func (v *VTerm) cellFor(r rune) Cell {
	id, err := v.storage.Ref(&v.currentAttrs)
	if err != nil {
		log.Printf("parser: attribute storage exhausted: %v", err)
		return Cell{Rune: r}
	}
	return Cell{Rune: r, ID: id}
}

// setCell releases whatever identifier previously occupied (y, x) and
// installs c in its place.
func (v *VTerm) setCell(y, x int, c Cell) {
	v.storage.Unref(v.grid[y][x].ID)
	v.grid[y][x] = c
}

// reref re-mints an identifier for old's attributes, used when content
// moves to a new grid position (e.g. a character shift within a row).
func (v *VTerm) reref(old Cell) Cell {
	if old.Rune == 0 {
		old.Rune = ' '
	}
	var a attr.Attributes
	v.storage.FromAddress(old.ID, &a)
	id, err := v.storage.Ref(&a)
	if err != nil {
		log.Printf("parser: attribute storage exhausted: %v", err)
		return Cell{Rune: old.Rune}
	}
	return Cell{Rune: old.Rune, ID: id}
}

func (v *VTerm) unrefRow(row []Cell) {
	for _, c := range row {
		v.storage.Unref(c.ID)
	}
}

func (v *VTerm) blankRow(width int) []Cell {
	row := make([]Cell, width)
	for i := range row {
		row[i] = v.cellFor(' ')
	}
	return row
}

func (v *VTerm) Resize(width, height int) {
	if width == v.width && height == v.height {
		return
	}

	rowsToCopy := min(v.height, height)
	colsToCopy := min(v.width, width)

	// Release cells that fall outside the retained rectangle before they
	// are discarded.
	for y := 0; y < v.height; y++ {
		row := v.grid[y]
		if y >= rowsToCopy {
			v.unrefRow(row)
			continue
		}
		for x := colsToCopy; x < v.width; x++ {
			v.storage.Unref(row[x].ID)
		}
	}

	newGrid := make([][]Cell, height)
	for y := range newGrid {
		newGrid[y] = v.blankRow(width)
	}
	for y := 0; y < rowsToCopy; y++ {
		for x := 0; x < colsToCopy; x++ {
			v.storage.Unref(newGrid[y][x].ID)
			newGrid[y][x] = v.grid[y][x]
		}
	}

	v.grid = newGrid
	v.width = width
	v.height = height

	// Clamp the bottom margin in case the screen has shrunk.
	if v.marginBottom >= v.height {
		v.marginBottom = v.height - 1
	}

	// Clamp cursor position to new bounds
	v.SetCursorPos(v.cursorY, v.cursorX)
}

// SetMargins defines the active scrolling region.
func (v *VTerm) SetMargins(top, bottom int) {
	// ANSI coordinates are 1-based.
	if top == 0 {
		top = 1
	}
	if bottom == 0 {
		bottom = v.height
	}

	// Clamp to screen size
	if top < 1 {
		top = 1
	}
	if bottom > v.height {
		bottom = v.height
	}
	if top >= bottom {
		return
	} // Invalid region

	v.marginTop = top - 1
	v.marginBottom = bottom - 1
	v.SetCursorPos(0, 0) // Per spec, move cursor to home on change
}

// EraseCharacters overwrites N characters from the cursor with space.
func (v *VTerm) EraseCharacters(n int) {
	for i := 0; i < n; i++ {
		if v.cursorX+i < v.width {
			v.setCell(v.cursorY, v.cursorX+i, v.cellFor(' '))
		}
	}
}

// DeleteCharacters deletes N characters, shifting the rest of the line left.
func (v *VTerm) DeleteCharacters(n int) {
	line := v.grid[v.cursorY]
	end := v.width
	start := v.cursorX
	if start >= end {
		return
	}
	if n > end-start {
		n = end - start
	}

	old := append([]Cell(nil), line...)
	v.unrefRow(old)
	for i := 0; i < end; i++ {
		switch {
		case i < start:
			line[i] = v.reref(old[i])
		case i+n < end:
			line[i] = v.reref(old[i+n])
		default:
			line[i] = v.cellFor(' ')
		}
	}
}

func (v *VTerm) scrollUp() {
	v.unrefRow(v.grid[v.marginTop])
	copy(v.grid[v.marginTop:], v.grid[v.marginTop+1:v.marginBottom+1])
	v.grid[v.marginBottom] = v.blankRow(v.width)
}

func (v *VTerm) scrollDown(n int) {
	// Shift lines down within the scrolling region
	for i := 0; i < n; i++ {
		v.unrefRow(v.grid[v.marginBottom])
		copy(v.grid[v.marginTop+1:v.marginBottom+1], v.grid[v.marginTop:v.marginBottom])
		v.grid[v.marginTop] = v.blankRow(v.width)
	}
}

// --- NEW METHODS ---

// MoveCursorUp moves the cursor n positions up.
func (v *VTerm) MoveCursorUp(n int) {
	v.wrapNext = false
	v.cursorY -= n
	if v.cursorY < v.marginTop { // Respect top margin
		v.cursorY = v.marginTop
	}
}

// MoveCursorDown moves the cursor n positions down.
func (v *VTerm) MoveCursorDown(n int) {
	v.wrapNext = false
	v.cursorY += n
	if v.cursorY > v.marginBottom { // Respect bottom margin
		v.cursorY = v.marginBottom
	}
}

// SetCursorRow moves the cursor to a specific row without changing the column.
func (v *VTerm) SetCursorRow(row int) {
	if row < 0 {
		row = 0
	}
	if row >= v.height {
		row = v.height - 1
	}
	v.cursorY = row
}

func (v *VTerm) SaveCursor() {
	v.savedCursorX, v.savedCursorY = v.cursorX, v.cursorY
}
func (v *VTerm) RestoreCursor() {
	v.cursorX, v.cursorY = v.savedCursorX, v.savedCursorY
}
func (v *VTerm) ProcessCSI(command byte, params []int, private bool) {
	if private {
		v.processPrivateCSI(command, params)
		return
	}

	param := func(i int, defaultVal int) int {
		if i < len(params) && params[i] != 0 {
			return params[i]
		}
		return defaultVal
	}

	switch command {
	case 'A': // Cursor Up
		v.MoveCursorUp(param(0, 1))
	case 'B': // Cursor Down
		v.MoveCursorDown(param(0, 1))
	case 'H', 'f':
		v.SetCursorPos(param(0, 1)-1, param(1, 1)-1)
	case 'C': // Cursor Forward
		v.MoveCursorForward(param(0, 1))
	case 'D': // Cursor Backward
		v.MoveCursorBackward(param(0, 1))
	case 'G':
		v.SetCursorColumn(param(0, 1) - 1)
	case 'n': // Device Status Report (DSR)
		if param(0, 0) == 6 {
			// The application is asking for the cursor position.
			// Format the response: ESC[<row>;<col>R (1-based)
			response := fmt.Sprintf("\x1b[%d;%dR", v.cursorY+1, v.cursorX+1)
			if v.WriteToPty != nil {
				v.WriteToPty([]byte(response))
			}
		}
	case 'd': // Vertical Line Position Absolute (VPA)
		v.SetCursorRow(param(0, 1) - 1)
	case 'r': // Set Top and Bottom Margins (DECSTBM)
		v.SetMargins(param(0, 1), param(1, v.height))
	case 'P': // Delete Character (DCH)
		v.DeleteCharacters(param(0, 1))
	case 'T': // Scroll Down (SD)
		v.scrollDown(param(0, 1))
	case 'X': // Erase Character (ECH)
		v.EraseCharacters(param(0, 1))
	case 'm':
		v.processSGR(params)
	case 's':
		v.SaveCursor()
	case 'u':
		v.RestoreCursor()
	case 'J':
		v.ClearScreenMode(param(0, 0))
	case 'K':
		v.ClearLine(param(0, 0))
	case 'g':
		if param(0, 0) == 3 {
			v.ClearAllTabStops()
		}
	case 'c':
		log.Println("Parser: Ignoring device attribute request (0c)")
	}
}

// processSGR drives v.currentAttrs's setters and color mode/value fields
// from a CSI "m" parameter list.
func (v *VTerm) processSGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	a := &v.currentAttrs
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			*a = attr.Attributes{}
		case p == 1:
			a.SetBold(true)
		case p == 2:
			a.SetDim(true)
		case p == 3:
			a.SetItalic(true)
		case p == 4:
			a.SetUnderline(true)
		case p == 5:
			a.SetBlink(true)
		case p == 7:
			a.SetInverse(true)
		case p == 8:
			a.SetInvisible(true)
		case p == 22:
			a.SetBold(false)
			a.SetDim(false)
		case p == 23:
			a.SetItalic(false)
		case p == 24:
			a.SetUnderline(false)
		case p == 25:
			a.SetBlink(false)
		case p == 27:
			a.SetInverse(false)
		case p == 28:
			a.SetInvisible(false)
		case p == 39:
			a.SetFgMode(attr.ColorModeDefault)
		case p == 49:
			a.SetBgMode(attr.ColorModeDefault)
		case p >= 30 && p <= 37:
			a.SetFgMode(attr.ColorModeP16)
			a.SetFg(uint32(p - 30))
		case p >= 40 && p <= 47:
			a.SetBgMode(attr.ColorModeP16)
			a.SetBg(uint32(p - 40))
		case p >= 90 && p <= 97:
			a.SetFgMode(attr.ColorModeP16)
			a.SetFg(uint32(p - 90 + 8))
		case p >= 100 && p <= 107:
			a.SetBgMode(attr.ColorModeP16)
			a.SetBg(uint32(p - 100 + 8))
		case p == 38: // Set extended foreground color
			if i+2 < len(params) && params[i+1] == 5 { // 256-color palette
				a.SetFgMode(attr.ColorModeP256)
				a.SetFg(uint32(params[i+2]))
				i += 2
			} else if i+4 < len(params) && params[i+1] == 2 { // RGB true-color
				a.SetFgMode(attr.ColorModeRGB)
				a.SetFg(attr.ToRGB(uint8(params[i+2]), uint8(params[i+3]), uint8(params[i+4])))
				i += 4
			}
		case p == 48: // Set extended background color
			if i+2 < len(params) && params[i+1] == 5 { // 256-color palette
				a.SetBgMode(attr.ColorModeP256)
				a.SetBg(uint32(params[i+2]))
				i += 2
			} else if i+4 < len(params) && params[i+1] == 2 { // RGB true-color
				a.SetBgMode(attr.ColorModeRGB)
				a.SetBg(attr.ToRGB(uint8(params[i+2]), uint8(params[i+3]), uint8(params[i+4])))
				i += 4
			}
		}
	}
}

func (v *VTerm) ClearScreenMode(mode int) {
	switch mode {
	case 0:
		v.ClearToEndOfScreen()
	case 2:
		v.ClearScreen()
		v.SetCursorPos(0, 0)
	}
}

func (v *VTerm) Grid() [][]Cell                { return v.grid }
func (v *VTerm) Cursor() (int, int)            { return v.cursorX, v.cursorY }
func (v *VTerm) CursorVisible() bool           { return v.cursorVisible }
func (v *VTerm) SetCursorVisible(visible bool) { v.cursorVisible = visible }

// PlaceChar puts a rune at the current cursor position, handling wrapping.
func (v *VTerm) PlaceChar(r rune) {
	v.placeChar(r)
}

func (v *VTerm) placeChar(r rune) {
	if v.wrapNext {
		v.cursorX = 0
		v.LineFeed()
		v.wrapNext = false
	}

	if v.cursorY >= 0 && v.cursorY < v.height && v.cursorX >= 0 && v.cursorX < v.width {
		v.setCell(v.cursorY, v.cursorX, v.cellFor(r))
	}
	if v.autoWrapMode && v.cursorX == v.width-1 {
		v.wrapNext = true
	} else if v.cursorX < v.width-1 {
		v.cursorX++
	}
}
func (v *VTerm) SetCursorPos(row, col int) {
	v.wrapNext = false
	if row < 0 {
		row = 0
	}
	if row >= v.height {
		row = v.height - 1
	}
	if col < 0 {
		col = 0
	}
	if col >= v.width {
		col = v.width - 1
	}
	v.cursorY, v.cursorX = row, col
}

func (v *VTerm) SetCursorColumn(col int) {
	if col < 0 {
		col = 0
	}
	if col >= v.width {
		col = v.width - 1
	}
	v.cursorX = col
}
func (v *VTerm) ClearScreen() {
	for y := 0; y < v.height; y++ {
		v.unrefRow(v.grid[y])
		v.grid[y] = v.blankRow(v.width)
	}
}
func (v *VTerm) ClearLine(mode int) {
	start, end := 0, 0
	switch mode {
	case 0:
		start, end = v.cursorX, v.width-1
	case 1:
		start, end = 0, v.cursorX
	case 2:
		start, end = 0, v.width-1
	}
	for x := start; x <= end && x < v.width; x++ {
		v.setCell(v.cursorY, x, v.cellFor(' '))
	}
}

func (v *VTerm) LineFeed() {
	if v.cursorY == v.marginBottom {
		v.scrollUp()
	} else if v.cursorY < v.height-1 {
		v.cursorY++
	}
}

func (v *VTerm) CarriageReturn() {
	v.wrapNext = false
	v.cursorX = 0
}
func (v *VTerm) Backspace() {
	v.wrapNext = false
	if v.cursorX > 0 {
		v.cursorX--
	}
}
func (v *VTerm) Tab() {
	v.wrapNext = false
	for x := v.cursorX + 1; x < v.width; x++ {
		if v.tabStops[x] {
			v.cursorX = x
			return
		}
	}
	v.cursorX = v.width - 1
}
func (v *VTerm) ClearAllTabStops() { v.tabStops = make(map[int]bool) }
func (v *VTerm) processPrivateCSI(command byte, params []int) {
	if len(params) == 0 {
		return
	}
	mode := params[0]
	switch command {
	case 'h':
		switch mode {
		case 1:
			log.Println("Parser: Ignoring set cursor key application mode (1h)")
		case 7:
			v.autoWrapMode = true // DECAWM enable
		case 25:
			v.SetCursorVisible(true)
		case 1049:
			log.Println("Parser: Ignoring set alternate screen buffer (1049h)")
		case 2004:
			log.Println("Parser: Ignoring set bracketed paste mode (2004h)")
		}
	case 'l':
		switch mode {
		case 1:
			log.Println("Parser: Ignoring reset cursor key application mode (1l)")
		case 7:
			v.autoWrapMode = false // DECAWM disable
		case 25:
			v.SetCursorVisible(false)
		case 1049:
			log.Println("Parser: Ignoring reset alternate screen buffer (1049l)")
		case 2004:
			log.Println("Parser: Ignoring reset bracketed paste mode (2004l)")
		}
	}
}
func (v *VTerm) ClearToEndOfScreen() {
	v.ClearLine(0)
	for y := v.cursorY + 1; y < v.height; y++ {
		v.unrefRow(v.grid[y])
		v.grid[y] = v.blankRow(v.width)
	}
}

// MoveCursorForward moves the cursor n positions to the right.
func (v *VTerm) MoveCursorForward(n int) {
	v.cursorX += n
	if v.cursorX >= v.width {
		v.cursorX = v.width - 1
	}
}

// MoveCursorBackward moves the cursor n positions to the left.
func (v *VTerm) MoveCursorBackward(n int) {
	v.cursorX -= n
	if v.cursorX < 0 {
		v.cursorX = 0
	}
}

type Option func(*VTerm)

func WithTitleChangeHandler(handler func(string)) Option {
	return func(v *VTerm) { v.TitleChanged = handler }
}
func (v *VTerm) SetTitle(title string) {
	if v.TitleChanged != nil {
		v.TitleChanged(title)
	}
}

func WithPtyWriter(writer func([]byte)) Option {
	return func(v *VTerm) {
		v.WriteToPty = writer
	}
}
