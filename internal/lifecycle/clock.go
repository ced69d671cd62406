package lifecycle

import "time"

// Fixed offsets of the synthetic Shipped and Out for Delivery milestones.
const (
	ShippedAfter        = 30 * time.Minute
	OutForDeliveryAfter = 60 * time.Minute
)

// Milestone is a display-only stage timestamp.
type Milestone struct {
	Status Status    `json:"status"`
	At     time.Time `json:"at"`
}

// Timeline holds one milestone per entry of Stages, in that order.
// It is not guaranteed to be chronological: an order placed late on its delivery
// date gets a Delivered milestone earlier than Out for Delivery.
type Timeline []Milestone

// At returns the timestamp recorded for status.
func (t Timeline) At(status Status) (time.Time, bool) {
	for _, m := range t {
		if m.Status == status {
			return m.At, true
		}
	}
	return time.Time{}, false
}

// StageTimestamps derives the four milestone timestamps of an order.
func StageTimestamps(orderedTime, deliveryDate time.Time) Timeline {
	return Timeline{
		{Status: StatusOrdered, At: orderedTime},
		{Status: StatusShipped, At: orderedTime.Add(ShippedAfter)},
		{Status: StatusOutForDelivery, At: orderedTime.Add(OutForDeliveryAfter)},
		{Status: StatusDelivered, At: StartOfDay(deliveryDate)},
	}
}
