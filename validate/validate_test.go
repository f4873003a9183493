package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(n int) [][]int {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	return m
}

func TestBoard(t *testing.T) {
	cases := []struct {
		name  string
		board [][]int
		ok    bool
	}{
		{"valid", [][]int{{0, 1}, {1, 0}}, true},
		{"single cell", [][]int{{1}}, true},
		{"no rows", [][]int{}, false},
		{"nil", nil, false},
		{"empty row", [][]int{{}}, false},
		{"ragged", [][]int{{0, 1}, {1}}, false},
		{"out of range cell", [][]int{{0, 2}}, false},
		{"negative cell", [][]int{{-1}}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Board(tc.board, 1000)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			var vErr *Error
			require.True(t, errors.As(err, &vErr), "expected *Error, got %v", err)
			assert.Equal(t, "board", vErr.Field)
		})
	}
}

func TestBoardSizeBoundary(t *testing.T) {
	assert.NoError(t, Board(square(10), 10))
	assert.ErrorContains(t, Board(square(11), 10), "must not exceed 10x10")

	wide := [][]int{make([]int, 11)}
	assert.Error(t, Board(wide, 10))

	tall := make([][]int, 11)
	for i := range tall {
		tall[i] = []int{0}
	}
	assert.Error(t, Board(tall, 10))
}

func TestGenerations(t *testing.T) {
	assert.NoError(t, Generations(1, 1000))
	assert.NoError(t, Generations(1000, 1000))
	assert.ErrorContains(t, Generations(1001, 1000), "maximum 1000 generations allowed")
	assert.Error(t, Generations(0, 1000))
	assert.Error(t, Generations(-3, 1000))
}

func TestIterations(t *testing.T) {
	budget, err := Iterations(nil, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1000, budget)

	five := 5
	budget, err = Iterations(&five, 1000)
	require.NoError(t, err)
	assert.Equal(t, 5, budget)

	zero, tooMany := 0, 1001
	_, err = Iterations(&zero, 1000)
	assert.Error(t, err)
	_, err = Iterations(&tooMany, 1000)
	assert.Error(t, err)
}

func TestID(t *testing.T) {
	assert.NoError(t, ID("abc"))
	assert.EqualError(t, ID(""), "id: ID is required")
}
