package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prabhdip/recipebox/internal/config"
	"github.com/prabhdip/recipebox/internal/domain/user"
	"github.com/prabhdip/recipebox/internal/domain/validation"
	"github.com/prabhdip/recipebox/internal/http/middlewares"
	"github.com/prabhdip/recipebox/internal/repo/postgres"
	"github.com/prabhdip/recipebox/internal/session"
)

// Keep these interfaces small so tests can fake them easily.
type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

type AuthHandler struct {
	users    UserStore
	sessions session.Store
	cfg      config.Config
}

func NewAuthHandler(users UserStore, sessions session.Store, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
	}
}

type SignUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	ImageURL string `json:"image_url"`
	Bio      string `json:"bio"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// collect every field failure before answering
	var msgs []string

	u, err := user.New(req.Username, req.ImageURL, req.Bio)

	var verrs validation.Errors

	if err != nil {
		if !errors.As(err, &verrs) {
			RespondInternal(ctx, "Could not create user")
			return
		}

		msgs = append(msgs, verrs.Messages()...)
	}

	err = u.SetPassword(req.Password)

	if err != nil {
		if !errors.As(err, &verrs) {
			RespondInternal(ctx, "Could not create user")
			return
		}

		msgs = append(msgs, verrs.Messages()...)
	}

	if len(msgs) > 0 {
		RespondUnprocessable(ctx, msgs)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	created, err := h.users.Create(cctx, u)

	if err != nil {
		if errors.Is(err, postgres.ErrUsernameTaken) {
			RespondUnprocessable(ctx, []string{"Username is already taken."})
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	// auto-login: signing up leaves you authenticated
	token, err := h.sessions.Create(cctx, created.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, token)

	ctx.JSON(http.StatusCreated, created.View())
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByUsername(cctx, req.Username)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Invalid username or password")
		return
	}

	if !foundUser.Authenticate(req.Password) {
		RespondUnAuthorized(ctx, "invalid_credentials", "Invalid username or password")
		return
	}

	token, err := h.sessions.Create(cctx, foundUser.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, token)

	ctx.JSON(http.StatusOK, foundUser.View())
}

// CheckSession runs behind RequireSession, so reaching it means the cookie
// resolved to a live user.
func (h *AuthHandler) CheckSession(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Not authorized")
		return
	}

	ctx.JSON(http.StatusOK, u.View())
}

// Logout destroys the server side session and clears the cookie. A second
// logout never gets here: RequireSession already answered 401.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	token, err := ctx.Cookie(session.CookieName)

	if err != nil || token == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Not authorized")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err = h.sessions.Delete(cctx, token)

	if err != nil && !errors.Is(err, session.ErrNotFound) {
		RespondInternal(ctx, "Could not end session")
		return
	}

	h.clearSessionCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// Cookie helpers

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string) {
	secure := h.cfg.Env == "prod"

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		session.CookieName,
		token,
		int(h.cfg.SessionTTL().Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		session.CookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
