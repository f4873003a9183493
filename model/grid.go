package model

import (
	"crypto/md5"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// Grid represents a fixed-size board of binary cells stored row-major in a single buffer
type Grid struct {
	rows  int
	cols  int
	cells []bool
}

// NewGrid creates an all-dead grid with the specified dimensions
func NewGrid(rows, cols int) *Grid {
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]bool, rows*cols),
	}
}

// FromMatrix builds a grid from a 0/1 matrix. The column count is taken from the first row;
// callers are expected to have validated that the matrix is rectangular.
func FromMatrix(m [][]int) *Grid {
	var cols int
	if len(m) > 0 {
		cols = len(m[0])
	}

	g := NewGrid(len(m), cols)
	for r, row := range m {
		for c := 0; c < cols && c < len(row); c++ {
			g.cells[r*cols+c] = row[c] == 1
		}
	}
	return g
}

// Matrix returns the grid as a freshly allocated 0/1 matrix
func (g *Grid) Matrix() [][]int {
	m := make([][]int, g.rows)
	for r := range g.rows {
		row := make([]int, g.cols)
		for c := range g.cols {
			if g.cells[r*g.cols+c] {
				row[c] = 1
			}
		}
		m[r] = row
	}
	return m
}

// Rows returns the number of rows of the grid
func (g *Grid) Rows() int {
	return g.rows
}

// Cols returns the number of columns of the grid
func (g *Grid) Cols() int {
	return g.cols
}

// IsDegenerate reports whether the grid has no cells at all
func (g *Grid) IsDegenerate() bool {
	return g.rows == 0 || g.cols == 0
}

func (g *Grid) inBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// Get returns the state of a cell, positions outside the grid are dead
func (g *Grid) Get(row, col int) bool {
	if !g.inBounds(row, col) {
		return false
	}
	return g.cells[row*g.cols+col]
}

// Set sets a cell to alive (true) or dead (false), out of range positions are ignored
func (g *Grid) Set(row, col int, alive bool) {
	if g.inBounds(row, col) {
		g.cells[row*g.cols+col] = alive
	}
}

// Clone returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	next := &Grid{rows: g.rows, cols: g.cols, cells: make([]bool, len(g.cells))}
	copy(next.cells, g.cells)
	return next
}

// Reset resizes the grid to new dimensions and kills every cell
func (g *Grid) Reset(rows, cols int) {
	g.rows = rows
	g.cols = cols

	// Reuse the buffer if it is large enough
	if cap(g.cells) < rows*cols {
		g.cells = make([]bool, rows*cols)
		return
	}
	g.cells = g.cells[:rows*cols]
	g.Clear()
}

// Clear kills all cells
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = false
	}
}

// CountNeighbors counts living cells among the 8 positions surrounding (row, col).
// The board is surrounded by dead cells: there is no wraparound.
func (g *Grid) CountNeighbors(row, col int) int {
	count := 0

	// Clamp the 3x3 window to the board once instead of bounds checking every position
	minRow := max(0, row-1)
	maxRow := min(g.rows-1, row+1)
	minCol := max(0, col-1)
	maxCol := min(g.cols-1, col+1)

	for nr := minRow; nr <= maxRow; nr++ {
		for nc := minCol; nc <= maxCol; nc++ {
			if nr == row && nc == col {
				continue
			}
			if g.cells[nr*g.cols+nc] {
				count++
			}
		}
	}

	return count
}

// Equal reports whether both grids have the same shape and the same cells
func (g *Grid) Equal(other *Grid) bool {
	if g.rows != other.rows {
		return false
	}
	if g.rows == 0 {
		return true
	}
	if g.cols != other.cols {
		return false
	}
	for i, alive := range g.cells {
		if other.cells[i] != alive {
			return false
		}
	}
	return true
}

// IsEmpty reports whether every cell is dead. Degenerate grids are empty.
func (g *Grid) IsEmpty() bool {
	for _, alive := range g.cells {
		if alive {
			return false
		}
	}
	return true
}

// CountLivingCells returns the total number of living cells
func (g *Grid) CountLivingCells() (count int) {
	for _, alive := range g.cells {
		if alive {
			count++
		}
	}
	return
}

// Hash returns an MD5 fingerprint of the grid shape and state
func (g *Grid) Hash() string {
	h := md5.New()
	fmt.Fprintf(h, "%dx%d:", g.rows, g.cols)
	for _, alive := range g.cells {
		if alive {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// MarshalJSON encodes the grid as a 0/1 matrix
func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Matrix())
}

// UnmarshalJSON decodes a 0/1 matrix. Shape checks belong to the caller.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var m [][]int
	if err := json.Unmarshal(data, &m); err != nil {
		return errors.Wrap(err, "[UnmarshalJSON] failed to decode board matrix")
	}
	*g = *FromMatrix(m)
	return nil
}
