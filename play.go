package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/gol-boards/model"
	"github.com/sheikhrachel/gol-boards/utils"
	"github.com/sheikhrachel/gol-boards/validate"
)

// initialBoard loads the board file, or seeds a random board when no file is given
func initialBoard(config utils.Config, boardPath string) (*model.Grid, error) {
	if boardPath == "" {
		grid := model.NewGrid(config.Height, config.Width)
		grid.SeedInterestingPatterns(rand.New(rand.NewSource(config.Seed)), config.RandomDensity)
		return grid, nil
	}

	data, err := os.ReadFile(boardPath)
	if err != nil {
		return nil, errors.Wrapf(err, "[initialBoard] failed to read board file: %+v", boardPath)
	}

	var m [][]int
	if err = json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "[initialBoard] failed to unmarshal board file: %+v", boardPath)
	}
	if err = validate.Board(m, config.MaxBoardSize); err != nil {
		return nil, errors.Wrapf(err, "[initialBoard] invalid board in file: %+v", boardPath)
	}
	return model.FromMatrix(m), nil
}

// updateGameState updates the stats for the frame and returns the population figures
func updateGameState(
	grid *model.Grid,
	generation int,
	lastFrameTime time.Time,
	stats *utils.Stats,
) (int, float64) {
	livingCells := grid.CountLivingCells()

	var density float64
	if cells := grid.Rows() * grid.Cols(); cells > 0 {
		density = float64(livingCells) / float64(cells) * 100
	}

	stats.Update(generation, livingCells, time.Since(lastFrameTime))
	return livingCells, density
}

// displayGameStatus shows the current game status
func displayGameStatus(
	outW io.Writer,
	generation, livingCells int,
	density float64,
	grid *model.Grid,
	stats *utils.Stats,
) {
	fmt.Fprintf(outW, "Gen: %d | Living: %d | Density: %.1f%% | Board: %dx%d | Hash: %.8s\n",
		generation, livingCells, density, grid.Rows(), grid.Cols(), grid.Hash())
	fmt.Fprintf(outW, "Performance: %.1f gen/sec | Avg Pop: %.1f | Runtime: %.1fs\n",
		stats.GenerationsPerSecond, stats.AveragePopulation, time.Since(stats.StartTime).Seconds())
}

// checkStopConditions reports why the animation should end, or "" to keep going
func checkStopConditions(current, next *model.Grid, generation int, config utils.Config) string {
	if current.IsEmpty() {
		return "extinction"
	}
	if next.Equal(current) {
		return "stable state reached"
	}
	if config.MaxPlayGenerations > 0 && generation >= config.MaxPlayGenerations {
		return fmt.Sprintf("maximum generations limit (%d)", config.MaxPlayGenerations)
	}
	return ""
}

// play animates a board in the terminal until it settles, hits the generation limit or ctx is cancelled.
// Oscillators never settle: they run until the limit.
func play(ctx context.Context, config utils.Config, boardPath string, outW io.Writer) error {
	logger := utils.LoggerFromContext(ctx)

	grid, err := initialBoard(config, boardPath)
	if err != nil {
		return err
	}

	var (
		engine        = model.NewEngine(config.Rules())
		renderer      = &model.TerminalRenderer{Out: outW, MaxSize: config.DisplaySize}
		stats         = utils.NewStats()
		generation    = 0
		lastFrameTime = time.Now()
	)
	logger.Debug("Play started", "rows", grid.Rows(), "cols", grid.Cols(), "living", grid.CountLivingCells())

	for {
		frameStart := time.Now()
		renderer.Clear()

		livingCells, density := updateGameState(grid, generation, lastFrameTime, stats)
		lastFrameTime = frameStart

		displayGameStatus(outW, generation, livingCells, density, grid, stats)
		renderer.Display(grid)

		next := engine.Step(grid)
		if reason := checkStopConditions(grid, next, generation, config); reason != "" {
			fmt.Fprintf(outW, "\n🏁 Finished after %d generations: %s\n", generation, reason)
			logger.Info("Play finished", "generations", generation, "reason", reason, "stats", stats)
			return nil
		}
		grid = next
		generation++

		// Wait before next frame
		select {
		case <-ctx.Done():
			fmt.Fprintln(outW, "\n🛑 Shutting down gracefully...")
			fmt.Fprintf(outW, "Final stats: %d generations in %.1f seconds\n",
				generation, time.Since(stats.StartTime).Seconds())
			return nil
		case <-time.After(config.FrameRate):
		}
	}
}
