package lifecycle

import "fmt"

// Status is the display status of an order.
type Status string

// remember to add new statuses to validStatuses
const (
	StatusOrdered        Status = "Ordered"
	StatusShipped        Status = "Shipped"
	StatusOutForDelivery Status = "Out for Delivery"
	StatusDelivered      Status = "Delivered"
	StatusCancelled      Status = "Cancelled"
)

var validStatuses = map[Status]struct{}{
	StatusOrdered:        {},
	StatusShipped:        {},
	StatusOutForDelivery: {},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

// Stages lists the normal delivery progression in display order. Cancelled is not a stage.
var Stages = []Status{StatusOrdered, StatusShipped, StatusOutForDelivery, StatusDelivered}

// ParseStatus converts a wire value into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := validStatuses[status]; ok {
		return status, nil
	}
	return "", fmt.Errorf("invalid order status: %q", s)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := validStatuses[s]
	return ok
}

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return s == StatusCancelled
}

// Cancellable reports whether a customer may still cancel an order in status s.
func (s Status) Cancellable() bool {
	return s == StatusOrdered
}

// StageIndex returns the position of s in Stages, or -1 for Cancelled and unknown values.
func (s Status) StageIndex() int {
	for i, stage := range Stages {
		if stage == s {
			return i
		}
	}
	return -1
}

func (s Status) String() string {
	return string(s)
}
