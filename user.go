package classverse

import "time"

// Roles a profile can carry. Class-group bootstrap and schedule
// editing are restricted to RoleAdmin.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User represents a registered member of the school. Users can be
// members of multiple channels, contacts of each other, etc.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  []byte    `json:"-"`
	ClassName string    `json:"class_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SignupUser carries the fields a new user provides at registration,
// before the password has been hashed.
type SignupUser struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	ClassName string `json:"class_name"`
	Role      string `json:"role" validate:"omitempty,oneof=admin teacher student"`
}

// Profile is the public slice of a user denormalized onto messages
// and private-channel listings for display.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// UserSearchResult is a directory search hit, flagged with whether
// the searching user already has this person as a contact.
type UserSearchResult struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	ClassName string `json:"class_name"`
	Role      string `json:"role"`
	IsContact bool   `json:"is_contact"`
}
