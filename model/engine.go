package model

import (
	"fmt"

	"github.com/sheikhrachel/gol-boards/rules"
)

// ConvergenceError is returned by Stabilize when the iteration budget runs out
// before the board dies out or stops changing.
type ConvergenceError struct {
	MaxIterations int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("board did not converge within %d iterations", e.MaxIterations)
}

// Result pairs a grid with the number of generations applied to produce it
type Result struct {
	Grid        *Grid
	Generations int
}

// Engine advances grids under a fixed rule set. It never mutates or retains the grids it is given,
// so a single Engine can be shared by any number of goroutines.
type Engine struct {
	rules rules.Rules
	pool  *GridPool
}

// NewEngine creates an engine for the given thresholds
func NewEngine(r rules.Rules) *Engine {
	return &Engine{
		rules: r,
		pool:  NewGridPool(),
	}
}

// Rules returns the thresholds the engine was built with
func (e *Engine) Rules() rules.Rules {
	return e.rules
}

// Step computes the next generation into a new grid of the same shape.
// Every cell is computed from the current grid, never from partially updated neighbors.
func (e *Engine) Step(g *Grid) *Grid {
	return e.stepInto(g, NewGrid(g.rows, g.cols))
}

func (e *Engine) stepInto(g, next *Grid) *Grid {
	if g.IsDegenerate() {
		// Nothing to compute, keep the exact shape ([] stays [], [[]] stays [[]])
		next.Reset(g.rows, g.cols)
		return next
	}

	for r := range g.rows {
		for c := range g.cols {
			idx := r*g.cols + c
			next.cells[idx] = e.rules.Apply(g.CountNeighbors(r, c), g.cells[idx])
		}
	}
	return next
}

// Advance applies Step n times and returns the final grid. n <= 0 returns a copy of g.
func (e *Engine) Advance(g *Grid, n int) *Grid {
	if n <= 0 {
		return g.Clone()
	}

	current := e.Step(g)
	for i := 1; i < n; i++ {
		next := e.stepInto(current, e.pool.Get(g.rows, g.cols))
		e.pool.Put(current)
		current = next
	}
	return current
}

/*
Stabilize advances g until it dies out or stops changing, trying at most maxIterations generations.

Each iteration checks, in order:
 1. extinction: the current grid is empty
 2. stability: the current grid equals the previous generation
 3. otherwise one more generation is computed

Only period-1 stability is detected. Oscillators with a longer period (a blinker, for example)
never satisfy the check and exhaust the budget with a *ConvergenceError.
*/
func (e *Engine) Stabilize(g *Grid, maxIterations int) (Result, error) {
	var (
		current     = g
		previous    *Grid
		generations = 0
	)

	for generations < maxIterations {
		if current.IsEmpty() || (previous != nil && current.Equal(previous)) {
			if current == g {
				current = g.Clone()
			}
			e.release(previous, g)
			return Result{Grid: current, Generations: generations}, nil
		}

		next := e.stepInto(current, e.pool.Get(current.rows, current.cols))
		e.release(previous, g)
		previous, current = current, next
		generations++
	}

	e.release(previous, g)
	e.release(current, g)
	return Result{}, &ConvergenceError{MaxIterations: maxIterations}
}

// release hands an intermediate grid back to the pool, never the caller's input
func (e *Engine) release(grid, input *Grid) {
	if grid == nil || grid == input {
		return
	}
	e.pool.Put(grid)
}
