package model

import (
	"fmt"
	"io"
	"strings"
)

const (
	gridPosBlock = "██"
	gridPosEmpty = "  "

	// ANSI cursor home + erase display
	clearScreenSeq = "\033[H\033[2J"
)

// TerminalRenderer draws grids as block characters
type TerminalRenderer struct {
	Out io.Writer
	// MaxSize crops the drawn area to MaxSize x MaxSize, zero draws everything
	MaxSize int
}

// Display renders the grid, cropped to the top-left MaxSize x MaxSize corner
func (r *TerminalRenderer) Display(g *Grid) {
	rows, cols := g.rows, g.cols
	if r.MaxSize > 0 {
		rows = min(rows, r.MaxSize)
		cols = min(cols, r.MaxSize)
	}

	var b strings.Builder
	for row := range rows {
		for col := range cols {
			if g.Get(row, col) {
				b.WriteString(gridPosBlock)
			} else {
				b.WriteString(gridPosEmpty)
			}
		}
		b.WriteByte('\n')
	}
	if rows < g.rows || cols < g.cols {
		fmt.Fprintf(&b, "(showing %dx%d of %dx%d)\n", rows, cols, g.rows, g.cols)
	}

	io.WriteString(r.Out, b.String())
}

// Clear clears the terminal screen
func (r *TerminalRenderer) Clear() {
	io.WriteString(r.Out, clearScreenSeq)
}
