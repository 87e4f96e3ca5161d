package models

import "time"

// User identifies a trader. Authentication is outside this service; the
// caller supplies an already-established user id with each request.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}
