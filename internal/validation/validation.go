package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"heartbridge/internal/apperrors"
)

// Length limits, counted in runes
const (
	MaxNicknameLength = 32
	MinPasswordLength = 6
	MaxPostLength     = 2000
	MaxCommentLength  = 500
)

// MaxPasswordBytes is bcrypt's input limit
const MaxPasswordBytes = 72

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidationError represents a validation error on one form field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return apperrors.ErrValidation
}

// NormalizeNickname trims surrounding whitespace. Case is preserved.
func NormalizeNickname(nickname string) string {
	return strings.TrimSpace(nickname)
}

// ValidateNickname checks an already-normalized nickname
func ValidateNickname(nickname string) error {
	if nickname == "" {
		return ValidationError{Field: "nickname", Message: "nickname is required"}
	}
	if utf8.RuneCountInString(nickname) > MaxNicknameLength {
		return ValidationError{Field: "nickname", Message: fmt.Sprintf("nickname must be at most %d characters", MaxNicknameLength)}
	}
	for _, r := range nickname {
		if unicode.IsControl(r) {
			return ValidationError{Field: "nickname", Message: "nickname contains invalid characters"}
		}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}
	if len(password) > MaxPasswordBytes {
		return ValidationError{Field: "password", Message: fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes)}
	}
	return nil
}

// ValidatePasswordConfirmation compares the confirmation field when the form supplied one
func ValidatePasswordConfirmation(password, confirm string, supplied bool) error {
	if supplied && password != confirm {
		return ValidationError{Field: "confirm_password", Message: "passwords do not match"}
	}
	return nil
}

// ValidateRole accepts only the two account roles
func ValidateRole(role string) error {
	switch role {
	case "parent", "child":
		return nil
	case "":
		return ValidationError{Field: "role", Message: "role is required"}
	default:
		return ValidationError{Field: "role", Message: "role must be parent or child"}
	}
}

// ValidatePostContent trims and length-checks a post body, returning the trimmed text
func ValidatePostContent(content string) (string, error) {
	return validateText("content", content, MaxPostLength)
}

// ValidateCommentContent trims and length-checks a comment body
func ValidateCommentContent(content string) (string, error) {
	return validateText("comment", content, MaxCommentLength)
}

func validateText(field, content string, max int) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ValidationError{Field: field, Message: field + " cannot be empty"}
	}
	if utf8.RuneCountInString(content) > max {
		return "", ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, max)}
	}
	return content, nil
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// Words splits free text into lowercase words for the moderation filter
func Words(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
	seen := make(map[string]bool, len(fields))
	words := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		words = append(words, f)
	}
	return words
}
