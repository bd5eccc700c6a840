package store

import (
	"time"

	"github.com/classverse/classverse"
)

type user struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Password  []byte    `db:"password"`
	ClassName string    `db:"class_name"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

// userFromModel converts the normal classverse.User model into a user
// which has properties only useful for the database.
func userFromModel(u *classverse.User) *user {
	return &user{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.Password,
		ClassName: u.ClassName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func (u *user) ToModel() *classverse.User {
	return &classverse.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.Password,
		ClassName: u.ClassName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type userForAuth struct {
	ID       string `db:"id"`
	Password []byte `db:"password"`
}

func (u *userForAuth) ToModel() *classverse.User {
	return &classverse.User{
		ID:       u.ID,
		Password: u.Password,
	}
}
