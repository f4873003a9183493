package utils

import (
	"log/slog"
	"time"
)

// Stats for performance monitoring
type Stats struct {
	GenerationsPerSecond float64
	AveragePopulation    float64
	TotalGenerations     int
	StartTime            time.Time
}

func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

// Update records one frame: the generation reached, its population and how long it took
func (s *Stats) Update(generation int, population int, duration time.Duration) {
	s.TotalGenerations = generation
	if duration > 0 {
		s.GenerationsPerSecond = 1.0 / duration.Seconds()
	}

	// Simple moving average for population
	if s.AveragePopulation == 0 {
		s.AveragePopulation = float64(population)
	} else {
		s.AveragePopulation = (s.AveragePopulation * 0.9) + (float64(population) * 0.1)
	}
}

// Record summarizes a whole computation of generations that took elapsed
func (s *Stats) Record(generations int, population int, elapsed time.Duration) {
	s.TotalGenerations = generations
	s.AveragePopulation = float64(population)
	if elapsed > 0 && generations > 0 {
		s.GenerationsPerSecond = float64(generations) / elapsed.Seconds()
	}
}

// LogValue implements slog.LogValuer
func (s *Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generations", s.TotalGenerations),
		slog.Float64("generations_per_second", s.GenerationsPerSecond),
		slog.Float64("population", s.AveragePopulation),
		slog.Duration("elapsed", time.Since(s.StartTime)),
	)
}
