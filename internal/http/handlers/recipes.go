package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prabhdip/recipebox/internal/config"
	"github.com/prabhdip/recipebox/internal/domain/recipe"
	"github.com/prabhdip/recipebox/internal/domain/validation"
	"github.com/prabhdip/recipebox/internal/http/middlewares"
)

type RecipeStore interface {
	Create(ctx context.Context, rec recipe.Recipe) (recipe.WithOwner, error)
	ListWithOwners(ctx context.Context) ([]recipe.WithOwner, error)
}

type RecipesHandler struct {
	repo RecipeStore
}

func NewRecipesHandler(repo RecipeStore) *RecipesHandler {
	return &RecipesHandler{repo: repo}
}

func (h *RecipesHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rows, err := h.repo.ListWithOwners(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list recipes")
		return
	}

	views := make([]recipe.View, 0, len(rows))

	for _, row := range rows {
		views = append(views, row.View())
	}

	RespondJSONWithETag(ctx, http.StatusOK, views)
}

func (h *RecipesHandler) Create(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Not authorized")
		return
	}

	var req recipe.CreateRecipeRequest

	if !BindJSON(ctx, &req) {
		return
	}

	rec, err := recipe.NewFromCreateRequest(req, userID)

	if err != nil {
		var verrs validation.Errors

		if errors.As(err, &verrs) {
			RespondUnprocessable(ctx, verrs.Messages())
			return
		}

		RespondInternal(ctx, "Could not create recipe")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.repo.Create(cctx, rec)

	if err != nil {
		if errors.Is(err, recipe.ErrOwnerMissing) {
			RespondUnAuthorized(ctx, "unauthorized", "Not authorized")
			return
		}

		RespondInternal(ctx, "Could not create recipe")
		return
	}

	ctx.JSON(http.StatusCreated, created.View())
}
