package models

import "time"

// User is an account identified by phone number. Rating is the running
// average of post-exchange reviews, 0.0-5.0.
type User struct {
	ID             int64     `json:"id"`
	Phone          string    `json:"phone"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Rating         float64   `json:"rating"`
	TotalRatings   int       `json:"total_ratings"`
	TotalExchanges int       `json:"total_exchanges"`
	IsVerified     bool      `json:"is_verified"`
	CreatedAt      time.Time `json:"created_at"`
}

// ApplyRating folds one new review into the running average.
func (u *User) ApplyRating(rating float64) {
	total := u.Rating*float64(u.TotalRatings) + rating
	u.TotalRatings++
	u.Rating = total / float64(u.TotalRatings)
}
