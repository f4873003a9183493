package rules

const (
	DefaultSurviveMin     = 2
	DefaultSurviveMax     = 3
	DefaultReproduceCount = 3
)

// Rules holds the neighbor-count thresholds of a Life-like automaton
type Rules struct {
	SurviveMin     int
	SurviveMax     int
	ReproduceCount int
}

// Conway returns the standard B3/S23 thresholds
func Conway() Rules {
	return Rules{
		SurviveMin:     DefaultSurviveMin,
		SurviveMax:     DefaultSurviveMax,
		ReproduceCount: DefaultReproduceCount,
	}
}

/*
Apply determines the next state of a cell from its current state and live neighbor count.

A living cell survives when SurviveMin <= neighbors <= SurviveMax.
A dead cell comes alive when neighbors == ReproduceCount.
*/
func (r Rules) Apply(neighbors int, alive bool) bool {
	if alive {
		return neighbors >= r.SurviveMin && neighbors <= r.SurviveMax
	}
	return neighbors == r.ReproduceCount
}
