package recipe

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/prabhdip/recipebox/internal/domain/user"
	"github.com/prabhdip/recipebox/internal/domain/validation"
)

// Instructions shorter than this (after trimming) are rejected.
const MinInstructionsLen = 50

const (
	MsgTitleRequired        = "Title must be present."
	MsgInstructionsRequired = "Instructions must be present."
	MsgInstructionsTooShort = "Instructions must be at least 50 characters long."
	MsgMinutesRequired      = "Minutes to complete must be present."
)

var ErrOwnerMissing = errors.New("recipe owner no longer exists")

type Recipe struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Instructions      string    `json:"instructions"`
	MinutesToComplete int       `json:"minutes_to_complete"`
	UserID            string    `json:"user_id"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`
}

// WithOwner pairs a recipe with its owning user, the shape the list and
// create responses are built from.
type WithOwner struct {
	Recipe
	Owner user.User
}

type View struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Instructions      string    `json:"instructions"`
	MinutesToComplete int       `json:"minutes_to_complete"`
	User              user.View `json:"user"`
}

type CreateRecipeRequest struct {
	Title        string `json:"title"`
	Instructions string `json:"instructions"`
	// Pointer so an explicit 0 still counts as present.
	MinutesToComplete *int `json:"minutes_to_complete" binding:"required"`
}

// NewFromCreateRequest validates the request and builds a recipe owned by
// userID. Failures come back as validation.Errors with one message per rule.
func NewFromCreateRequest(req CreateRecipeRequest, userID string) (Recipe, error) {
	var errs validation.Errors

	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, MsgTitleRequired)
	}

	instructions := strings.TrimSpace(req.Instructions)

	switch {
	case instructions == "":
		errs = append(errs, MsgInstructionsRequired)
	case utf8.RuneCountInString(instructions) < MinInstructionsLen:
		errs = append(errs, MsgInstructionsTooShort)
	}

	minutes := 0

	if req.MinutesToComplete == nil {
		errs = append(errs, MsgMinutesRequired)
	} else {
		minutes = *req.MinutesToComplete
	}

	if len(errs) > 0 {
		return Recipe{}, errs
	}

	now := time.Now().UTC()

	return Recipe{
		ID:                uuid.NewString(),
		Title:             req.Title,
		Instructions:      req.Instructions,
		MinutesToComplete: minutes,
		UserID:            userID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func (w WithOwner) View() View {
	return View{
		ID:                w.ID,
		Title:             w.Title,
		Instructions:      w.Instructions,
		MinutesToComplete: w.MinutesToComplete,
		User:              w.Owner.View(),
	}
}
