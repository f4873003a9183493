package model

import "math/rand"

// Randomize sets every cell alive with the given probability
func (g *Grid) Randomize(rng *rand.Rand, density float64) {
	for i := range g.cells {
		g.cells[i] = rng.Float64() < density
	}
}

// AddGlider adds a glider pattern with its top-left corner at (startRow, startCol)
func (g *Grid) AddGlider(startRow, startCol int) {
	pattern := [][]bool{
		{false, true, false},
		{false, false, true},
		{true, true, true},
	}

	for r, row := range pattern {
		for c, cell := range row {
			g.Set(startRow+r, startCol+c, cell)
		}
	}
}

// AddOscillator adds a horizontal blinker starting at (startRow, startCol)
func (g *Grid) AddOscillator(startRow, startCol int) {
	g.Set(startRow, startCol, true)
	g.Set(startRow, startCol+1, true)
	g.Set(startRow, startCol+2, true)
}

// SeedInterestingPatterns clears the grid, drops a few gliders and blinkers and sprinkles random life
func (g *Grid) SeedInterestingPatterns(rng *rand.Rand, density float64) {
	g.Randomize(rng, density)

	if g.rows >= 10 && g.cols >= 10 {
		g.AddGlider(5, 5)
		if g.rows >= 15 && g.cols >= 20 {
			g.AddGlider(5, g.cols-8)
		}

		g.AddOscillator(g.rows/4, g.cols/4)
		if g.cols >= 30 {
			g.AddOscillator(3*g.rows/4, 3*g.cols/4)
		}
	}
}
