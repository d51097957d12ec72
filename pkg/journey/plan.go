package journey

import (
	"fmt"
	"strings"
)

// normalized validates p and returns a copy with every leg's destination
// resolved to its last stop and the overall destination label filled.
func (p *Plan) normalized() (Plan, error) {
	if p == nil {
		return Plan{}, fmt.Errorf("%w: a journey plan is required", ErrInvalidJourneyPlan)
	}
	if len(p.Legs) == 0 {
		return Plan{}, fmt.Errorf("%w: plan must contain at least one leg", ErrInvalidJourneyPlan)
	}

	out := p.clone()
	for i := range out.Legs {
		leg := &out.Legs[i]
		if len(leg.Stops) == 0 {
			return Plan{}, fmt.Errorf("%w: leg %d has no stops", ErrInvalidJourneyPlan, i)
		}
		for j, stop := range leg.Stops {
			if strings.TrimSpace(stop.Name) == "" {
				return Plan{}, fmt.Errorf("%w: leg %d stop %d has no name", ErrInvalidJourneyPlan, i, j)
			}
			if err := (Fix{Latitude: stop.Latitude, Longitude: stop.Longitude}).Validate(); err != nil {
				return Plan{}, fmt.Errorf("%w: leg %d stop %q: %v", ErrInvalidJourneyPlan, i, stop.Name, err)
			}
			if j > 0 && stop.Sequence <= leg.Stops[j-1].Sequence {
				return Plan{}, fmt.Errorf("%w: leg %d stop %q: sequence numbers must be strictly increasing (%d after %d)",
					ErrInvalidJourneyPlan, i, stop.Name, stop.Sequence, leg.Stops[j-1].Sequence)
			}
		}

		last := leg.Stops[len(leg.Stops)-1]
		if leg.Destination != nil && !sameStop(*leg.Destination, last) {
			return Plan{}, fmt.Errorf("%w: leg %d destination %q is not its last stop %q",
				ErrInvalidJourneyPlan, i, leg.Destination.Name, last.Name)
		}
		leg.Destination = &last
	}

	if strings.TrimSpace(out.Destination) == "" {
		out.Destination = out.Legs[len(out.Legs)-1].Destination.Name
	}
	return out, nil
}

// sameStop reports whether a declared destination refers to stop. A
// destination carrying a sequence number must match it; otherwise the names
// are compared.
func sameStop(dest, stop Stop) bool {
	if dest.Sequence != 0 {
		return dest.Sequence == stop.Sequence
	}
	return strings.EqualFold(strings.TrimSpace(dest.Name), strings.TrimSpace(stop.Name))
}

// DemoPlan is the sample 380 bus route from Circular Quay to Bondi Junction.
// It is only used when a caller explicitly asks for a demo session.
func DemoPlan() Plan {
	stops := []Stop{
		{Name: "Circular Quay", Latitude: -33.8610, Longitude: 151.2105, Sequence: 1},
		{Name: "Museum Station", Latitude: -33.8738, Longitude: 151.2127, Sequence: 2},
		{Name: "Hyde Park", Latitude: -33.8688, Longitude: 151.2093, Sequence: 3},
		{Name: "Kings Cross", Latitude: -33.8737, Longitude: 151.2221, Sequence: 4},
		{Name: "Bondi Junction", Latitude: -33.8915, Longitude: 151.2477, Sequence: 5},
	}
	dest := stops[len(stops)-1]
	return Plan{
		Destination: "Bondi Junction",
		Legs: []Leg{{
			TransportMode: "bus",
			RouteLabel:    "380 to Bondi Beach",
			Stops:         stops,
			Destination:   &dest,
		}},
	}
}
