package metrics

import (
	"math"

	"github.com/san-kum/lagrange/internal/dynamo"
)

// Revolutions counts how often the angle slots of a state pass over the
// top, that is cross an odd multiple of π. A pendulum that only swings
// scores 0; each full turn in either direction adds 1.
type Revolutions struct {
	slots []int
	last  []float64
	count int
	seen  bool
}

func NewRevolutions(slots ...int) *Revolutions {
	return &Revolutions{
		slots: slots,
		last:  make([]float64, len(slots)),
	}
}

func (r *Revolutions) Name() string {
	return "revolutions"
}

// turn is the index of the 2π sector centred on the hanging position.
func turn(q float64) float64 {
	return math.Round(q / (2 * math.Pi))
}

func (r *Revolutions) Observe(x dynamo.State, t float64) {
	for k, slot := range r.slots {
		if slot < 0 || slot >= len(x) {
			continue
		}
		sector := turn(x[slot])
		if r.seen {
			r.count += int(math.Abs(sector - r.last[k]))
		}
		r.last[k] = sector
	}
	r.seen = true
}

func (r *Revolutions) Value() float64 {
	return float64(r.count)
}

func (r *Revolutions) Reset() {
	r.count = 0
	r.seen = false
	clear(r.last)
}
