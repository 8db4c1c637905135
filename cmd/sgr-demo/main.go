// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/sgr-demo/main.go
// Summary: Feeds a short SGR-laden byte stream through a VTerm and prints
//          the grid back out through the minimal-transition serializer,
//          exercising the attr/tui/sgr pipeline end to end.

package main

import (
	"flag"
	"fmt"

	"texelation/attr"
	"texelation/config"
	"texelation/sgr"
	"texelation/tui/parser"
)

var demo = "\x1b[1mHello\x1b[0m, \x1b[38;2;255;105;180mworld\x1b[0m!\r\n" +
	"\x1b[4;33munderlined yellow\x1b[0m and \x1b[7mreverse\x1b[0m"

func main() {
	width := flag.Int("width", 40, "terminal width")
	height := flag.Int("height", 2, "terminal height")
	flag.Parse()

	storage := attr.NewStorage(config.AttrsInitialNodes(), config.AttrsMaxNodes())
	v := parser.NewVTerm(*width, *height, storage)
	p := parser.NewParser(v)
	p.Parse([]byte(demo))

	fmt.Println(sgr.NewSerializer(storage).Serialize(gridToRows(v)))
}

func gridToRows(v *parser.VTerm) []sgr.Row {
	grid := v.Grid()
	rows := make([]sgr.Row, len(grid))
	for y, line := range grid {
		cells := make([]sgr.Cell, len(line))
		for x, c := range line {
			glyph := string(c.Rune)
			if c.Rune == 0 || c.Rune == ' ' {
				glyph = ""
			}
			cells[x] = sgr.Cell{Glyph: glyph, Width: sgr.RuneWidth(c.Rune), ID: c.ID}
		}
		rows[y] = sgr.Row{Cells: cells}
	}
	return rows
}
