package event

import "time"

// Event is a record of a meaningful state change on an aggregate.
// Mutators return events to the caller instead of buffering them inside the
// entity; the application layer decides where they go (queue, log, both).
type Event interface {
	Name() string
	OccurredAt() time.Time
}

type base struct {
	At time.Time `json:"occurred_at"`
}

func (b base) OccurredAt() time.Time { return b.At }

func now() base { return base{At: time.Now().UTC()} }

type UserCreated struct {
	base
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

func (UserCreated) Name() string { return "user.created" }

func NewUserCreated(userID, email, username string) UserCreated {
	return UserCreated{base: now(), UserID: userID, Email: email, Username: username}
}

type UsernameChanged struct {
	base
	UserID      string `json:"user_id"`
	OldUsername string `json:"old_username"`
	NewUsername string `json:"new_username"`
}

func (UsernameChanged) Name() string { return "user.username_changed" }

func NewUsernameChanged(userID, oldName, newName string) UsernameChanged {
	return UsernameChanged{base: now(), UserID: userID, OldUsername: oldName, NewUsername: newName}
}

type ProfileUpdated struct {
	base
	UserID string `json:"user_id"`
	Field  string `json:"field"`
}

func (ProfileUpdated) Name() string { return "user.profile_updated" }

func NewProfileUpdated(userID, field string) ProfileUpdated {
	return ProfileUpdated{base: now(), UserID: userID, Field: field}
}

type AvatarChanged struct {
	base
	UserID    string `json:"user_id"`
	AvatarURL string `json:"avatar_url"`
}

func (AvatarChanged) Name() string { return "user.avatar_changed" }

func NewAvatarChanged(userID, url string) AvatarChanged {
	return AvatarChanged{base: now(), UserID: userID, AvatarURL: url}
}

type BioChanged struct {
	base
	UserID string `json:"user_id"`
	Bio    string `json:"bio"`
}

func (BioChanged) Name() string { return "user.bio_changed" }

func NewBioChanged(userID, bio string) BioChanged {
	return BioChanged{base: now(), UserID: userID, Bio: bio}
}

type EmailConfirmed struct {
	base
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (EmailConfirmed) Name() string { return "user.email_confirmed" }

func NewEmailConfirmed(userID, email string) EmailConfirmed {
	return EmailConfirmed{base: now(), UserID: userID, Email: email}
}

type UserVerified struct {
	base
	UserID string `json:"user_id"`
}

func (UserVerified) Name() string { return "user.verified" }

func NewUserVerified(userID string) UserVerified {
	return UserVerified{base: now(), UserID: userID}
}

type UserUnverified struct {
	base
	UserID string `json:"user_id"`
}

func (UserUnverified) Name() string { return "user.unverified" }

func NewUserUnverified(userID string) UserUnverified {
	return UserUnverified{base: now(), UserID: userID}
}

type UserLoggedIn struct {
	base
	UserID  string    `json:"user_id"`
	LoginAt time.Time `json:"login_at"`
}

func (UserLoggedIn) Name() string { return "user.logged_in" }

func NewUserLoggedIn(userID string, at time.Time) UserLoggedIn {
	return UserLoggedIn{base: now(), UserID: userID, LoginAt: at}
}
