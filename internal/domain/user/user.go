package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrIDRequired          = errors.New("user: id is required")
	ErrEmailRequired       = errors.New("user: email is required")
	ErrHandleRequired      = errors.New("user: handle is required")
	ErrHandleInvalid       = errors.New("user: handle may contain only letters, digits, dots and underscores")
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrEmailAlreadyUsed    = errors.New("user: email already used")
	ErrHandleAlreadyUsed   = errors.New("user: handle already used")
	ErrNotFound            = errors.New("user: not found")
)

type ID string

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var handlePattern = regexp.MustCompile(`^[a-z0-9._]{3,32}$`)

type User struct {
	ID           ID
	Email        string
	Handle       string
	PasswordHash string
	Role         Role
	Bio          string
	PhotoURL     string
	PushToken    string
	Blocked      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	ByHandle(ctx context.Context, handle string) (*User, error)
	Save(ctx context.Context, user *User) error
	SearchByHandle(ctx context.Context, prefix string, limit int) ([]*User, error)
	Recent(ctx context.Context, limit int) ([]*User, error)
}

type CreateParams struct {
	ID           ID
	Email        string
	Handle       string
	PasswordHash string
	Role         Role
	Bio          string
	PhotoURL     string
	CreatedAt    time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	email := NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	handle, err := NormalizeHandle(params.Handle)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}

	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	role := params.Role
	if role != RoleAdmin {
		role = RoleUser
	}

	return &User{
		ID:           ID(id),
		Email:        email,
		Handle:       handle,
		PasswordHash: params.PasswordHash,
		Role:         role,
		Bio:          strings.TrimSpace(params.Bio),
		PhotoURL:     strings.TrimSpace(params.PhotoURL),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) UpdateProfile(bio, photoURL string, now time.Time) {
	u.Bio = strings.TrimSpace(bio)
	u.PhotoURL = strings.TrimSpace(photoURL)
	u.touch(now)
}

func (u *User) Rename(handle string, now time.Time) error {
	normalized, err := NormalizeHandle(handle)
	if err != nil {
		return err
	}
	u.Handle = normalized
	u.touch(now)
	return nil
}

func (u *User) SetPasswordHash(hash string, now time.Time) error {
	if strings.TrimSpace(hash) == "" {
		return ErrPasswordHashMissing
	}
	u.PasswordHash = hash
	u.touch(now)
	return nil
}

// SetPushToken stores the latest device token; an empty token clears it.
func (u *User) SetPushToken(token string, now time.Time) {
	u.PushToken = strings.TrimSpace(token)
	u.touch(now)
}

func (u *User) SetBlocked(blocked bool, now time.Time) {
	u.Blocked = blocked
	u.touch(now)
}

func (u *User) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeHandle(handle string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(handle))
	if normalized == "" {
		return "", ErrHandleRequired
	}
	if !handlePattern.MatchString(normalized) {
		return "", ErrHandleInvalid
	}
	return normalized, nil
}
