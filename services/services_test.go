package services_test

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/classverse/classverse"
	"github.com/classverse/classverse/mocks"
)

// seedUser puts a user straight into the mock store and returns it.
func seedUser(db *mocks.Store, name, className, role string) *classverse.User {
	u := &classverse.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@school.test",
		ClassName: className,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := db.CreateUser(u); err != nil {
		panic(err)
	}
	return u
}
