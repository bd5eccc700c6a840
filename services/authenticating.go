package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/classverse/classverse"
	"github.com/classverse/classverse/store"
)

type auth struct {
	DB store.Database
}

// NewAuthenticater wraps a database connection with an *auth that
// implements the classverse.Authenticater interface.
func NewAuthenticater(db store.Database) (classverse.Authenticater, error) {
	return &auth{
		DB: db,
	}, nil
}

// Validate gets the requested user from the database, checks the given
// password, then returns the full user if the password is correct.
func (a *auth) Validate(email, password string) (*classverse.User, error) {
	authUser, err := a.DB.UserForAuth(email)
	if err != nil {
		logrus.Errorf("Unable to find user with email: %s", email)
		return nil, classverse.ErrUnauthenticated
	}

	if err := bcrypt.CompareHashAndPassword(authUser.Password, []byte(password)); err != nil {
		logrus.Error(err)
		return nil, classverse.ErrUnauthenticated
	}

	return a.DB.GetUser(authUser.ID)
}

// Signup hashes the new user's password and stores the profile. The
// role defaults to student.
func (a *auth) Signup(su classverse.SignupUser) (*classverse.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "Error hashing password")
	}

	role := su.Role
	if role == "" {
		role = classverse.RoleStudent
	}

	user, err := a.DB.CreateUser(&classverse.User{
		ID:        uuid.New().String(),
		Name:      su.Name,
		Email:     su.Email,
		Password:  hashed,
		ClassName: su.ClassName,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	})
	if err == classverse.ErrAlreadyExists {
		return nil, classverse.NewValidationError(err,
			classverse.FieldError{Field: "email", Error: "a user with this email already exists"})
	}
	return user, err
}

func (a *auth) GetUser(id string) (*classverse.User, error) {
	return a.DB.GetUser(id)
}

// UpdateProfile changes the user's display name and class.
func (a *auth) UpdateProfile(userID, name, className string) (*classverse.User, error) {
	user, err := a.DB.GetUser(userID)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.ClassName = className
	if err := a.DB.UpdateUserInfo(user); err != nil {
		return nil, err
	}

	return a.DB.GetUser(userID)
}
