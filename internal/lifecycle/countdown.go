package lifecycle

import (
	"fmt"
	"math"
	"time"
)

const (
	CountdownCancelled = "Tracking unavailable: order was cancelled"
	CountdownDelivered = "Delivered"
	CountdownToday     = "Arriving today"
)

// Countdown renders the customer-facing delivery countdown.
func Countdown(now, deliveryDate time.Time, status Status) string {
	switch status {
	case StatusCancelled:
		return CountdownCancelled
	case StatusDelivered:
		return CountdownDelivered
	}

	days := int(math.Ceil(float64(deliveryDate.Sub(now)) / float64(24*time.Hour)))
	if days <= 0 {
		return CountdownToday
	}
	if days == 1 {
		return "Arriving in 1 day"
	}
	return fmt.Sprintf("Arriving in %d days", days)
}
