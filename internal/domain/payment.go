package domain

import "time"

// Payment records an owner paying to promote a restaurant.
type Payment struct {
	ID            int64
	TransactionID string
	UserID        int64
	RestaurantID  int64
	CreatedAt     time.Time
}
