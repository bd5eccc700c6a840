package classverse

import "time"

// Contact is an established relationship between two users. Having a
// contact gates starting a private chat with them and inviting them
// into groups.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ClassName string    `json:"class_name"`
	Role      string    `json:"role"`
	AddedAt   time.Time `json:"added_at"`
	HasChat   bool      `json:"has_chat"`
}
