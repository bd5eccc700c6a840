package server

import (
	"github.com/dgrijalva/jwt-go"
)

// JWTToken is the claim set carried by the auth cookie.
type JWTToken struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	UserName      string `json:"user_name"`
	Authenticated bool   `json:"authenticated"`
	jwt.StandardClaims
}

// AuthInfo is a login attempt.
type AuthInfo struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateGroupRequest struct {
	Name            string `json:"name" validate:"required"`
	Subject         string `json:"subject"`
	Description     string `json:"description"`
	AllowsSubgroups bool   `json:"allows_subgroups"`
}

type CreateSubgroupRequest struct {
	Name    string `json:"name" validate:"required"`
	Subject string `json:"subject"`
}

type ClassGroupRequest struct {
	ClassName string `json:"class_name" validate:"required"`
}

type PrivateChatRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type SendMessageRequest struct {
	ChannelID string `json:"channel_id" validate:"required"`
	Content   string `json:"content"`
}

type ContactRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type ProfileUpdate struct {
	Name      string `json:"name" validate:"required"`
	ClassName string `json:"class_name"`
}
