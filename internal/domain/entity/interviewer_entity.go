package entity

import (
	"strings"
	"time"
)

// DefaultRole is assigned to every interviewer at registration.
const DefaultRole = "interviewer"

// Interviewer is the authentication principal.
// Password holds the bcrypt digest; it is never serialized.
type Interviewer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	pendingPassword string
	passwordChanged bool
}

// SetPassword stages a new plaintext password. The credential store hashes it on the next save.
func (i *Interviewer) SetPassword(plain string) {
	i.pendingPassword = plain
	i.passwordChanged = true
}

// PasswordChanged reports whether a staged password awaits hashing.
func (i *Interviewer) PasswordChanged() bool { return i.passwordChanged }

// PendingPassword returns the staged plaintext password.
func (i *Interviewer) PendingPassword() string { return i.pendingPassword }

// MarkPasswordHashed stores the digest and drops the staged plaintext.
func (i *Interviewer) MarkPasswordHashed(digest string) {
	i.Password = digest
	i.pendingPassword = ""
	i.passwordChanged = false
}

// Public returns a copy safe to hand to handlers: no digest, no staged password.
func (i *Interviewer) Public() *Interviewer {
	return &Interviewer{
		ID:        i.ID,
		Name:      i.Name,
		Email:     i.Email,
		Role:      i.Role,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

// NormalizeEmail trims and lowercases an address; emails compare case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
