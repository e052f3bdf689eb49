package route

import (
	"fmt"
	"strings"

	"tripplanner/internal/pkg/errs"
)

// DeliveryStatus is the progress of one stop.
type DeliveryStatus int

const (
	StatusUnknown DeliveryStatus = iota
	StatusScheduled
	StatusInTransit
	StatusDelivered
	StatusDelayed
)

var deliveryStatusNames = map[DeliveryStatus]string{
	StatusScheduled: "scheduled",
	StatusInTransit: "in_transit",
	StatusDelivered: "delivered",
	StatusDelayed:   "delayed",
}

// ParseDeliveryStatus maps the snake_case names used on the wire to a DeliveryStatus.
func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	for st, name := range deliveryStatusNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("deliveryStatus", fmt.Errorf("%q is not a known status", s))
}

// Validate rejects StatusUnknown and out-of-range values.
func (s DeliveryStatus) Validate() error {
	if _, ok := deliveryStatusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("deliveryStatus", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s DeliveryStatus) String() string {
	if name, ok := deliveryStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsFixed reports whether the stop can no longer be reordered.
func (s DeliveryStatus) IsFixed() bool {
	return s == StatusDelivered || s == StatusInTransit
}
