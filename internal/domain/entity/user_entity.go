package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/tiktok-clone-auth/internal/domain/event"
)

// DefaultBio is the placeholder shown until the user writes their own.
const DefaultBio = "No bio yet."

// User is the aggregate root of the identity domain.
// PasswordHash is a bcrypt hash; the aggregate never sees plaintext.
//
// Mutators return the domain event describing the change, or nil when the
// call was an accepted no-op. A non-nil error means the input violated a
// domain rule and nothing was changed.
type User struct {
	ID             string
	Email          string
	Username       string
	Name           string
	PasswordHash   string
	AvatarURL      string
	Bio            string
	IsVerified     bool
	EmailConfirmed bool
	BirthDate      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastLoginAt    *time.Time
}

// NewUser validates and builds a fresh, unconfirmed, unverified user.
// Email and username are normalized to lowercase-trimmed form; the display
// name starts out as the username.
func NewUser(email, username string, birthDate time.Time) (*User, event.Event, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(username) == "" {
		return nil, nil, ErrArgumentEmpty
	}
	email = normalize(email)
	username = normalize(username)

	if !IsValidEmail(email) {
		return nil, nil, ErrInvalidEmailFormat
	}
	if !IsValidUsername(username) {
		return nil, nil, ErrInvalidUsernameFormat
	}
	now := time.Now().UTC()
	if !IsValidBirthDate(birthDate, now) {
		return nil, nil, ErrInvalidBirthDate
	}

	u := &User{
		ID:             uuid.NewString(),
		Email:          email,
		Username:       username,
		Name:           username,
		Bio:            DefaultBio,
		IsVerified:     false,
		EmailConfirmed: false,
		BirthDate:      birthDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return u, event.NewUserCreated(u.ID, u.Email, u.Username), nil
}

// ChangeUsername normalizes and applies a new username. Blank, unchanged,
// or badly formatted input is an accepted no-op, not an error; the caller
// decides whether a no-op is worth surfacing.
func (u *User) ChangeUsername(username string) (event.Event, error) {
	if strings.TrimSpace(username) == "" {
		return nil, nil
	}
	username = normalize(username)
	if !IsValidUsername(username) {
		return nil, nil
	}
	if username == u.Username {
		return nil, nil
	}
	old := u.Username
	u.Username = username
	u.touch()
	return event.NewUsernameChanged(u.ID, old, username), nil
}

// ChangeName updates the display name. Over-length input is rejected.
func (u *User) ChangeName(name string) (event.Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	if len(name) > MaxNameLength {
		return nil, ErrInvalidNameLength
	}
	if name == u.Name {
		return nil, nil
	}
	u.Name = name
	u.touch()
	return event.NewProfileUpdated(u.ID, "name"), nil
}

// ChangeAvatar sets or clears the avatar URL. Blank clears; a non-absolute
// URL is rejected.
func (u *User) ChangeAvatar(avatarURL string) (event.Event, error) {
	avatarURL = strings.TrimSpace(avatarURL)
	if avatarURL != "" && !IsAbsoluteURL(avatarURL) {
		return nil, ErrInvalidAvatarURL
	}
	if avatarURL == u.AvatarURL {
		return nil, nil
	}
	u.AvatarURL = avatarURL
	u.touch()
	return event.NewAvatarChanged(u.ID, avatarURL), nil
}

// ChangeBio updates the bio. Blank input is a no-op so the placeholder
// text survives empty form submissions.
func (u *User) ChangeBio(bio string) (event.Event, error) {
	bio = strings.TrimSpace(bio)
	if bio == "" {
		return nil, nil
	}
	if len(bio) > MaxBioLength {
		return nil, ErrInvalidBioLength
	}
	if bio == u.Bio {
		return nil, nil
	}
	u.Bio = bio
	u.touch()
	return event.NewBioChanged(u.ID, bio), nil
}

// ChangePassword replaces the stored hash. Hashing happens upstream so the
// aggregate never sees plaintext.
func (u *User) ChangePassword(hash string) {
	u.PasswordHash = hash
	u.touch()
}

// ConfirmEmail marks the email address as proven. Idempotent.
func (u *User) ConfirmEmail() event.Event {
	if u.EmailConfirmed {
		return nil
	}
	u.EmailConfirmed = true
	u.touch()
	return event.NewEmailConfirmed(u.ID, u.Email)
}

// Verify grants the verified badge. Idempotent.
func (u *User) Verify() event.Event {
	if u.IsVerified {
		return nil
	}
	u.IsVerified = true
	u.touch()
	return event.NewUserVerified(u.ID)
}

// UnVerify removes the verified badge. Idempotent.
func (u *User) UnVerify() event.Event {
	if !u.IsVerified {
		return nil
	}
	u.IsVerified = false
	u.touch()
	return event.NewUserUnverified(u.ID)
}

// RecordLogin stamps the login time. Always emits.
func (u *User) RecordLogin() event.Event {
	now := time.Now().UTC()
	u.LastLoginAt = &now
	u.touch()
	return event.NewUserLoggedIn(u.ID, now)
}

// RequiresReAuthentication is true when the user never logged in or the
// last login is more than 30 days old.
func (u *User) RequiresReAuthentication() bool {
	return u.LastLoginAt == nil ||
		time.Since(*u.LastLoginAt) > 30*24*time.Hour
}

func (u *User) touch() {
	u.UpdatedAt = time.Now().UTC()
}
