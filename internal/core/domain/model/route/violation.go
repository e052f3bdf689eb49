package route

import (
	"slices"
	"strings"

	"tripplanner/internal/core/domain/model/kernel"
)

// ViolationKind names the constraint a route breaks.
type ViolationKind string

const (
	ViolationStopCount         ViolationKind = "stop_count"
	ViolationDuration          ViolationKind = "duration"
	ViolationWeight            ViolationKind = "weight"
	ViolationVolume            ViolationKind = "volume"
	ViolationTemperatureMix    ViolationKind = "temperature_mix"
	ViolationFragileWithFrozen ViolationKind = "fragile_with_frozen"
	ViolationTimeWindow        ViolationKind = "time_window"
)

// Violation is one reason a route is not compliant. It is data, not an error.
type Violation struct {
	Kind     ViolationKind
	Message  string
	OrderIDs []kernel.UUID
}

// Added returns the violations of after that before does not contain. Two
// violations match when kind and order ids are equal; messages are ignored.
func Added(before, after []Violation) []Violation {
	seen := make(map[string]int, len(before))
	for _, v := range before {
		seen[v.key()]++
	}

	var added []Violation
	for _, v := range after {
		k := v.key()
		if seen[k] > 0 {
			seen[k]--
			continue
		}
		added = append(added, v)
	}
	return added
}

func (v Violation) key() string {
	ids := make([]string, len(v.OrderIDs))
	for i, id := range v.OrderIDs {
		ids[i] = id.String()
	}
	slices.Sort(ids)
	return string(v.Kind) + "|" + strings.Join(ids, ",")
}
