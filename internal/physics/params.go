package physics

import (
	"fmt"
	"sort"
)

// StandardGravity is the gravitational acceleration used by every model, in m/s².
const StandardGravity = 9.81

type paramTable map[string]*float64

func (p paramTable) values() map[string]float64 {
	out := make(map[string]float64, len(p))
	for k, v := range p {
		out[k] = *v
	}
	return out
}

func (p paramTable) set(name string, value float64) error {
	ptr, ok := p[name]
	if !ok {
		return fmt.Errorf("unknown param: %s", name)
	}
	*ptr = value
	return nil
}

// ParamNames returns the sorted parameter names of a params map.
func ParamNames(params map[string]float64) []string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
