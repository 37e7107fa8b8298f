package user

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prabhdip/recipebox/internal/domain/validation"
	"github.com/prabhdip/recipebox/internal/security"
)

const (
	MsgUsernameRequired = "Username must be present."
	MsgPasswordRequired = "Password must be present."
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	// Write-only credential: set via SetPassword, checked via Authenticate,
	// excluded from every serialization path.
	PasswordHash string    `json:"-"`
	ImageURL     string    `json:"image_url"`
	Bio          string    `json:"bio"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// View is the public projection returned by the API. The credential hash has
// no field here at all.
type View struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	ImageURL string `json:"image_url"`
	Bio      string `json:"bio"`
}

// New builds a user with a fresh id and validates its fields before anything
// touches storage.
func New(username, imageURL, bio string) (User, error) {
	var errs validation.Errors

	if isBlank(username) {
		errs = append(errs, MsgUsernameRequired)
	}

	if len(errs) > 0 {
		return User{}, errs
	}

	now := time.Now().UTC()

	return User{
		ID:        uuid.NewString(),
		Username:  username,
		ImageURL:  imageURL,
		Bio:       bio,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SetPassword hashes the plain text credential and stores the hash, replacing
// any prior one. An empty password is a validation failure, not a hash of "".
func (u *User) SetPassword(plain string) error {
	if plain == "" {
		return validation.Errors{MsgPasswordRequired}
	}

	hash, err := security.HashPassword(plain)

	if err != nil {
		return err
	}

	u.PasswordHash = hash

	return nil
}

// Authenticate reports whether the plain text password matches the stored
// hash. It returns false, never an error, when no hash is set.
func (u User) Authenticate(plain string) bool {
	if u.PasswordHash == "" {
		return false
	}

	return security.CheckPassword(u.PasswordHash, plain) == nil
}

func (u User) View() View {
	return View{
		ID:       u.ID,
		Username: u.Username,
		ImageURL: u.ImageURL,
		Bio:      u.Bio,
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
