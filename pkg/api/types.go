package api

import (
	"github.com/platinummonkey/ideagrave/pkg/auth"
	"github.com/platinummonkey/ideagrave/pkg/ideas"
)

// RegisterRequest is the body of POST /register
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Agree    bool   `json:"agree"`
}

// RegisterResponse is returned once the verification mail went out
type RegisterResponse struct {
	VerifyID string `json:"verifyId"`
	Message  string `json:"message"`
}

// VerifyRequest is the body of POST /verify
type VerifyRequest struct {
	VerifyID string `json:"verifyId"`
	Code     string `json:"code"`
}

// CompleteRegisterRequest is the body of POST /complete-register
type CompleteRegisterRequest struct {
	VerifyID    string `json:"verifyId"`
	Code        string `json:"code"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RoleResponse is returned by PUT /users/{id}/role
type RoleResponse struct {
	Success bool      `json:"success"`
	NewRole auth.Role `json:"newRole"`
}

// CreateIdeaRequest is the body of POST /ideas
type CreateIdeaRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// IdeaAuthor is null-username when the author was deleted
type IdeaAuthor struct {
	Username *string `json:"username"`
}

// IdeaResponse is one element of GET /ideas
type IdeaResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
	UserID      int64      `json:"userId"`
	User        IdeaAuthor `json:"user"`
}

func toIdeaResponse(idea *ideas.Idea) IdeaResponse {
	return IdeaResponse{
		ID:          idea.ID,
		Title:       idea.Title,
		Description: idea.Description,
		Date:        idea.Date,
		UserID:      idea.UserID,
		User:        IdeaAuthor{Username: idea.Author},
	}
}

func toPrincipals(users []*auth.User) []*auth.Principal {
	out := make([]*auth.Principal, 0, len(users))
	for _, u := range users {
		out = append(out, u.Principal())
	}
	return out
}
