package redis

import (
	"fmt"

	"github.com/google/uuid"
)

const ns = "gigbook:v1"

func KeyBookingView(bookingID uuid.UUID) string {
	return fmt.Sprintf("%s:booking:%s:view", ns, bookingID)
}

func KeyBookingFence(bookingID uuid.UUID) string {
	return fmt.Sprintf("%s:booking:%s:fence", ns, bookingID)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func KeyIdemCreateBooking(callerID uuid.UUID, idemKey string) string {
	return fmt.Sprintf("%s:idem:bookings:%s:%s", ns, callerID, idemKey)
}
