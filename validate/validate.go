// Package validate rejects malformed input before it reaches the engine.
// The engine trusts its input: anything it would choke on is caught here.
package validate

import "fmt"

// Error describes why a request was rejected. Its message is safe to show to users.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fail(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Board checks that m is a non-empty rectangular 0/1 matrix no larger than maxSize in either dimension
func Board(m [][]int, maxSize int) error {
	if len(m) == 0 || len(m[0]) == 0 {
		return fail("board", "board must be a non-empty 2D array with consistent row lengths")
	}

	cols := len(m[0])
	for r, row := range m {
		if len(row) != cols {
			return fail("board", "row %d has %d cells, expected %d", r, len(row), cols)
		}
		for c, cell := range row {
			if cell != 0 && cell != 1 {
				return fail("board", "cell [%d][%d] must be 0 or 1, got %d", r, c, cell)
			}
		}
	}

	if len(m) > maxSize || cols > maxSize {
		return fail("board", "board dimensions must not exceed %dx%d", maxSize, maxSize)
	}
	return nil
}

// ID checks that a board identifier was supplied
func ID(id string) error {
	if id == "" {
		return fail("id", "ID is required")
	}
	return nil
}

// Generations checks 1 <= n <= limit
func Generations(n, limit int) error {
	if n <= 0 {
		return fail("generations", "must be a positive integer")
	}
	if n > limit {
		return fail("generations", "maximum %d generations allowed", limit)
	}
	return nil
}

// Iterations resolves an optional iteration budget, defaulting to limit when unset
func Iterations(budget *int, limit int) (int, error) {
	if budget == nil {
		return limit, nil
	}
	if *budget <= 0 {
		return 0, fail("maxIterations", "must be a positive integer")
	}
	if *budget > limit {
		return 0, fail("maxIterations", "maximum %d iterations allowed", limit)
	}
	return *budget, nil
}
