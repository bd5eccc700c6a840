package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/classverse/classverse"
)

func TestUserFromModel(t *testing.T) {
	m := &classverse.User{
		ID:        "abc",
		Name:      "Alice",
		Email:     "alice@school.test",
		ClassName: "9A",
		Role:      classverse.RoleStudent,
	}

	n := userFromModel(m)

	assert.Equal(t, m.ID, n.ID)
	assert.Equal(t, m.Name, n.Name)
	assert.Equal(t, m.Email, n.Email)
	assert.Equal(t, m.ClassName, n.ClassName)
	assert.Equal(t, m.Role, n.Role)
}

func TestUserToModel(t *testing.T) {
	n := &user{
		ID:    "abc",
		Name:  "Alice",
		Email: "alice@school.test",
	}

	m := n.ToModel()

	assert.Equal(t, n.ID, m.ID)
	assert.Equal(t, n.Name, m.Name)
	assert.Equal(t, n.Email, m.Email)
}
