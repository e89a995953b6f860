package entity

// DomainError is a rule violation raised by an aggregate. The code is a
// stable machine-readable identifier; the message is safe to show to users.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string { return e.Message }

var (
	ErrInvalidEmailFormat = &DomainError{
		Code:    "INVALID_EMAIL_FORMAT",
		Message: "invalid email format",
	}
	ErrInvalidUsernameFormat = &DomainError{
		Code:    "INVALID_USERNAME_FORMAT",
		Message: "username must be 2-24 characters and contain only lowercase letters, numbers, dots, and underscores",
	}
	ErrInvalidNameLength = &DomainError{
		Code:    "INVALID_NAME_LENGTH",
		Message: "name cannot exceed 50 characters",
	}
	ErrInvalidBirthDate = &DomainError{
		Code:    "INVALID_BIRTH_DATE",
		Message: "age must be at least 12 years old",
	}
	ErrInvalidAvatarURL = &DomainError{
		Code:    "INVALID_AVATAR_URL",
		Message: "invalid avatar URL format",
	}
	ErrInvalidBioLength = &DomainError{
		Code:    "INVALID_BIO_LENGTH",
		Message: "bio cannot exceed 80 characters",
	}
	ErrArgumentEmpty = &DomainError{
		Code:    "USER_ARGUMENT_NULL",
		Message: "required argument is empty",
	}
)
