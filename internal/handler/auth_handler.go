package handler

import (
	"errors"
	"net/http"

	"github.com/catprepedge/catprep-backend/internal/config"
	"github.com/catprepedge/catprep-backend/internal/middleware"
	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/catprepedge/catprep-backend/internal/repository"
	"github.com/catprepedge/catprep-backend/internal/response"
	"github.com/catprepedge/catprep-backend/internal/service"
	"github.com/catprepedge/catprep-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthHandler handles account and session endpoints.
type AuthHandler struct {
	authService  *service.AuthService
	userService  *service.UserService
	cookieSecure bool
	cookieMaxAge int
	log          zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	cfg *config.Config,
	authService *service.AuthService,
	userService *service.UserService,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		userService:  userService,
		cookieSecure: cfg.CookieSecure,
		cookieMaxAge: int(cfg.JWTExpiry.Seconds()),
		log:          log.With().Str("component", "auth_handler").Logger(),
	}
}

// Signup godoc
// POST /api/v1/auth/signup
// Creates a free account and starts a session.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Signup(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
			return
		}
		h.log.Error().Err(err).Msg("Signup failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.startSession(c, http.StatusCreated, user)
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password, sets the session cookie and returns the JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		h.log.Error().Err(err).Msg("Login failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.startSession(c, http.StatusOK, user)
}

// Logout godoc
// POST /api/v1/auth/logout
// Revokes the current token and clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Revoke(c.Request.Context(), claims); err != nil {
		h.log.Error().Err(err).Msg("Token revocation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.setCookie(c, "", -1)
	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the currently authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	userID, err := claims.UserUUID()
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	profile, err := service.Profile(user)
	if err != nil {
		h.log.Error().Err(err).Msg("Profile mapping failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": profile})
}

// startSession issues a token, sets the cookie and writes the auth response.
func (h *AuthHandler) startSession(c *gin.Context, status int, user *model.User) {
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		h.log.Error().Err(err).Msg("Token generation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	profile, err := service.Profile(user)
	if err != nil {
		h.log.Error().Err(err).Msg("Profile mapping failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.setCookie(c, token, h.cookieMaxAge)
	response.Success(c, status, model.AuthResponse{Token: token, User: profile})
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", h.cookieSecure, true)
}
