package scoring

// DifficultyRamp nudges a session's working difficulty after each answer:
// up on correct answers (extra for fast ones), down on misses, clamped to
// [0.1, 1.0]. One ramp per session; not shared.
type DifficultyRamp struct {
	current float64
	history []float64
}

const (
	rampStart     = 0.5
	rampMin       = 0.1
	rampMax       = 1.0
	rampBaseStep  = 0.05
	rampFastBonus = 0.02
	rampFastTime  = 10.0
)

func NewDifficultyRamp() *DifficultyRamp {
	return &DifficultyRamp{current: rampStart}
}

// Update adjusts the difficulty for the latest answer and returns the new
// value.
func (d *DifficultyRamp) Update(correct bool, elapsed float64) float64 {
	change := rampBaseStep
	if correct {
		if elapsed < rampFastTime {
			change += rampFastBonus
		}
	} else {
		change = -rampBaseStep
	}

	d.current += change
	if d.current < rampMin {
		d.current = rampMin
	}
	if d.current > rampMax {
		d.current = rampMax
	}
	d.history = append(d.history, d.current)
	return d.current
}

// Current returns the working difficulty.
func (d *DifficultyRamp) Current() float64 {
	return d.current
}

// Average returns the mean difficulty across the session, or the starting
// value before any update.
func (d *DifficultyRamp) Average() float64 {
	if len(d.history) == 0 {
		return rampStart
	}
	var sum float64
	for _, v := range d.history {
		sum += v
	}
	return sum / float64(len(d.history))
}
