package users

import (
	"fmt"
	"time"

	apperrors "github.com/gistree/server/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength applies to mailbox and tree passwords.
const MinPasswordLength = 4

type User struct {
	ID        string    `json:"id"`        // Unique identifier, the IdP subject on first login
	Name      string    `json:"name"`      // Display name from the IdP
	Email     string    `json:"email"`     // Institutional email address
	StudentID string    `json:"studentId"` // Unique student number
	CreatedAt time.Time `json:"createdAt"` // First login

	MailboxProtected    bool   `json:"isMailboxProtected"` // Reading the inbox requires a password
	MailboxPasswordHash string `json:"-"`                  // Never serialize
}

// Summary is the public view of a user returned by search.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
}

func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, StudentID: u.StudentID}
}

// CheckMailboxPassword reports whether password opens the mailbox. An
// unprotected mailbox is always open.
func (u *User) CheckMailboxPassword(password string) bool {
	if !u.MailboxProtected {
		return true
	}
	return CheckPasswordHash(password, u.MailboxPasswordHash)
}

// ValidatePassword checks a mailbox or tree password before hashing.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > 72 {
		return fmt.Errorf("password must be at most 72 bytes long")
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// LockPasswordHash validates and hashes the password for enabling a
// mailbox or tree lock. Disabling a lock needs no password and yields an
// empty hash.
func LockPasswordHash(enabled bool, password string) (string, error) {
	if !enabled {
		return "", nil
	}
	if err := ValidatePassword(password); err != nil {
		return "", apperrors.Public(apperrors.ErrInvalidRequest, "%s", err.Error())
	}
	hash, err := HashPassword(password)
	if err != nil {
		return "", apperrors.Mark(err, apperrors.ErrInternal)
	}
	return hash, nil
}
