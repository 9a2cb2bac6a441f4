package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/kinematics"
	"github.com/san-kum/lagrange/internal/physics"
)

const (
	springMassRestLength = 2.0
	coils                = 30
)

// Entry describes one simulated system. Mapper is called after parameters
// are applied so link lengths follow the configured system.
type Entry struct {
	Name        string
	Description string
	New         func() dynamo.System
	Mapper      func(sys dynamo.System) kinematics.Mapper

	// Labels names each state component.
	Labels []string

	// Angular marks systems whose first two components are (θ, θ̇).
	Angular bool

	// Angles lists every state slot holding an angle. When nil and
	// Angular is set, slot 0 is the only angle.
	Angles []int
}

// AngleSlots returns the state slots holding angles.
func (e Entry) AngleSlots() []int {
	if e.Angles != nil {
		return e.Angles
	}
	if e.Angular {
		return []int{0}
	}
	return nil
}

type Registry struct {
	systems map[string]Entry
}

func NewRegistry() *Registry {
	r := &Registry{systems: make(map[string]Entry)}

	r.Register(Entry{
		Name:        "pendulum",
		Labels:      []string{"θ", "θ̇"},
		Description: "simple pendulum, point mass on a massless rod",
		New:         func() dynamo.System { return physics.NewPendulum() },
		Mapper: func(sys dynamo.System) kinematics.Mapper {
			return kinematics.PendulumMapper{Length: sys.(*physics.Pendulum).Length}
		},
		Angular: true,
	})
	r.Register(Entry{
		Name:        "spring_mass",
		Labels:      []string{"x", "ẋ"},
		Description: "mass hanging from a vertical spring, released at rest",
		New:         func() dynamo.System { return physics.NewSpringMass() },
		Mapper: func(dynamo.System) kinematics.Mapper {
			return kinematics.SpringMassMapper{RestLength: springMassRestLength, Coils: coils}
		},
	})
	r.Register(Entry{
		Name:        "double_pendulum",
		Labels:      []string{"θ1", "θ̇1", "θ2", "θ̇2"},
		Description: "two unit point masses on unit massless rods",
		New:         func() dynamo.System { return physics.NewDoublePendulum() },
		Mapper: func(dynamo.System) kinematics.Mapper {
			return kinematics.DoublePendulumMapper{L1: 1, L2: 1}
		},
		Angular: true,
		Angles:  []int{0, 2},
	})
	r.Register(Entry{
		Name:        "compound_pendulum",
		Labels:      []string{"θ1", "θ̇1", "θ2", "θ̇2"},
		Description: "two uniform unit rods, second angle relative to the first",
		New:         func() dynamo.System { return physics.NewCompoundPendulum() },
		Mapper: func(dynamo.System) kinematics.Mapper {
			return kinematics.DoublePendulumMapper{L1: 1, L2: 1, Rods: true}
		},
		Angular: true,
		Angles:  []int{0, 2},
	})
	r.Register(Entry{
		Name:        "elastic_pendulum",
		Labels:      []string{"θ", "θ̇", "ℓ", "ℓ̇"},
		Description: "mass swinging on a spring",
		New:         func() dynamo.System { return physics.NewElasticPendulum() },
		Mapper: func(sys dynamo.System) kinematics.Mapper {
			return kinematics.ElasticMapper{RestLength: sys.(*physics.ElasticPendulum).RestLength, Coils: coils}
		},
		Angular: true,
	})
	r.Register(Entry{
		Name:        "kapitza",
		Labels:      []string{"θ", "θ̇"},
		Description: "inverted pendulum stabilized by a vibrating pivot",
		New:         func() dynamo.System { return physics.NewKapitzaPendulum() },
		Mapper: func(sys dynamo.System) kinematics.Mapper {
			k := sys.(*physics.KapitzaPendulum)
			return kinematics.KapitzaMapper{Length: k.Length, Amplitude: k.Amplitude, Frequency: k.Frequency}
		},
		Angular: true,
	})

	return r
}

func (r *Registry) Register(e Entry) {
	r.systems[e.Name] = e
}

func (r *Registry) Lookup(name string) (Entry, error) {
	e, ok := r.systems[name]
	if !ok {
		return Entry{}, fmt.Errorf("unknown system: %s", name)
	}
	return e, nil
}

func (r *Registry) GetSystem(name string) (dynamo.System, error) {
	e, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return e.New(), nil
}

// ListSystems returns the registered names in sorted order.
func (r *Registry) ListSystems() []string {
	names := make([]string, 0, len(r.systems))
	for name := range r.systems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
