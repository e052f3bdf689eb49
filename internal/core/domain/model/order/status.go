package order

import (
	"fmt"

	"tripplanner/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
//	Pending ──> Planned ──> Delivered
type Status int

const (
	// Unknown catches uninitialised values.
	Unknown Status = iota
	// Pending orders wait for the next planning run.
	Pending
	// Planned orders belong to a persisted route.
	Planned
	// Delivered is final.
	Delivered
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "Unknown",
		Pending:   "Pending",
		Planned:   "Planned",
		Delivered: "Delivered",
	}
}

// Validate rejects Unknown and out-of-range values, e.g. those read from storage.
func (s Status) Validate() error {
	if s < Pending || s > Delivered {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// Plan transitions Pending to Planned.
func (s Status) Plan() (Status, error) {
	if s != Pending {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to plan", s),
		)
	}
	return Planned, nil
}

// Deliver transitions Planned to Delivered.
func (s Status) Deliver() (Status, error) {
	if s != Planned {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to deliver", s),
		)
	}
	return Delivered, nil
}
