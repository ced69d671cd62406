package lifecycle

import "time"

// Resolve computes the status an order should display at now.
//
// The delivery-date rule wins over the elapsed-time thresholds, so an order whose
// delivery date is its placement date jumps straight to Delivered. Elapsed time is
// wall-clock based and a clock moving backwards can move the status backwards too.
func Resolve(now, orderedTime, deliveryDate time.Time, current Status) Status {
	if current == StatusCancelled {
		return StatusCancelled
	}
	if SameDate(now, deliveryDate) {
		return StatusDelivered
	}

	elapsed := now.Sub(orderedTime)
	switch {
	case elapsed >= OutForDeliveryAfter:
		return StatusOutForDelivery
	case elapsed >= ShippedAfter:
		return StatusShipped
	default:
		return StatusOrdered
	}
}
