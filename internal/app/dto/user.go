package dto

import (
	"time"

	domainuser "socialnet/internal/domain/user"
)

type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Handle    string    `json:"handle"`
	Role      string    `json:"role"`
	Bio       string    `json:"bio,omitempty"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSummary is the public snippet embedded in lists and inbox rows.
type UserSummary struct {
	ID       string `json:"id"`
	Handle   string `json:"handle"`
	PhotoURL string `json:"photo_url,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

type AuthResponse struct {
	User  UserProfile `json:"user"`
	Token string      `json:"token"`
}

func MapUserProfile(user *domainuser.User) UserProfile {
	if user == nil {
		return UserProfile{}
	}
	return UserProfile{
		ID:        string(user.ID),
		Email:     user.Email,
		Handle:    user.Handle,
		Role:      string(user.Role),
		Bio:       user.Bio,
		PhotoURL:  user.PhotoURL,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func MapUserSummary(user *domainuser.User) UserSummary {
	if user == nil {
		return UserSummary{}
	}
	return UserSummary{
		ID:       string(user.ID),
		Handle:   user.Handle,
		PhotoURL: user.PhotoURL,
		Bio:      user.Bio,
	}
}

func MapUserSummaries(users []*domainuser.User) []UserSummary {
	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, MapUserSummary(u))
	}
	return summaries
}

func NewAuthResponse(user *domainuser.User, token string) AuthResponse {
	return AuthResponse{
		User:  MapUserProfile(user),
		Token: token,
	}
}
