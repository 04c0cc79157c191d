package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"locallibrary/internal/model"
	"locallibrary/internal/repository"
	"locallibrary/internal/validation"
)

type AuthHandler struct {
	users      repository.UserRepository
	tokens     repository.TokenRepository
	session    *scs.SessionManager
	tokenTTL   time.Duration
	refreshTTL time.Duration
	now        nowFunc
}

func NewAuthHandler(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	session *scs.SessionManager,
	tokenTTL, refreshTTL time.Duration,
	now nowFunc,
) *AuthHandler {
	return &AuthHandler{
		users:      users,
		tokens:     tokens,
		session:    session,
		tokenTTL:   tokenTTL,
		refreshTTL: refreshTTL,
		now:        now,
	}
}

type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=150,alphanum"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type UserResponse struct {
	Data struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"data"`
}

type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenPairResponse struct {
	Data struct {
		Token        string `json:"token"`
		TokenExpiry  string `json:"token_expiry"`
		RefreshToken string `json:"refresh_token"`
	} `json:"data"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Signup godoc
// @Summary      Register an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        payload  body      SignupRequest  true  "New account"
// @Success      201      {object}  UserResponse
// @Failure      400      {object}  validation.ErrorResponse
// @Failure      409      {object}  validation.ErrorResponse
// @Router       /signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	user := model.User{
		Username: req.Username,
		Email:    req.Email,
	}
	if err := user.SetPassword(req.Password); err != nil {
		writeError(c, http.StatusInternalServerError,
			"SIGNUP_FAILED",
			"failed to create account",
		)
		return
	}

	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeError(c, http.StatusConflict,
				"USER_EXISTS",
				"username or email already taken",
			)
			return
		}
		writeError(c, http.StatusInternalServerError,
			"SIGNUP_FAILED",
			"failed to create account",
		)
		return
	}

	var resp UserResponse
	resp.Data.ID = user.ID.String()
	resp.Data.Username = user.Username
	resp.Data.Email = user.Email
	c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary      Start a web session
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        payload  body      CredentialsRequest  true  "Credentials"
// @Success      200      {object}  UserResponse
// @Failure      401      {object}  validation.ErrorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	user, err := h.authenticate(ctx, c, req.Username, req.Password)
	if err != nil {
		return
	}

	// Rotate the session id on privilege change.
	if err := h.session.RenewToken(ctx); err != nil {
		writeError(c, http.StatusInternalServerError,
			"LOGIN_FAILED",
			"failed to start session",
		)
		return
	}
	h.session.Put(ctx, sessionUserKey, user.ID.String())

	var resp UserResponse
	resp.Data.ID = user.ID.String()
	resp.Data.Username = user.Username
	resp.Data.Email = user.Email
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary      End the web session
// @Tags         accounts
// @Produce      json
// @Success      204  "No Content"
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.session.RenewToken(ctx); err != nil {
		writeError(c, http.StatusInternalServerError,
			"LOGOUT_FAILED",
			"failed to end session",
		)
		return
	}
	h.session.Remove(ctx, sessionUserKey)
	c.Status(http.StatusNoContent)
}

// IssueTokens godoc
// @Summary      Issue API tokens
// @Description  Exchanges credentials for a bearer token and a refresh token
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        payload  body      CredentialsRequest  true  "Credentials"
// @Success      201      {object}  TokenPairResponse
// @Failure      401      {object}  validation.ErrorResponse
// @Router       /token [post]
func (h *AuthHandler) IssueTokens(c *gin.Context) {
	var req CredentialsRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	user, err := h.authenticate(ctx, c, req.Username, req.Password)
	if err != nil {
		return
	}

	auth, err := model.GenerateToken(user.ID, h.tokenTTL, model.ScopeAuthentication)
	if err == nil {
		err = h.tokens.Insert(ctx, auth)
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"TOKEN_ISSUE_FAILED",
			"failed to issue token",
		)
		return
	}

	refresh, err := model.GenerateToken(user.ID, h.refreshTTL, model.ScopeRefresh)
	if err == nil {
		err = h.tokens.Insert(ctx, refresh)
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"TOKEN_ISSUE_FAILED",
			"failed to issue refresh token",
		)
		return
	}

	var resp TokenPairResponse
	resp.Data.Token = auth.Plaintext
	resp.Data.TokenExpiry = auth.Expiry.UTC().Format(time.RFC3339)
	resp.Data.RefreshToken = refresh.Plaintext
	c.JSON(http.StatusCreated, resp)
}

// RefreshToken godoc
// @Summary      Refresh an API token
// @Description  Exchanges a valid refresh token for a fresh bearer token
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        payload  body      RefreshRequest  true  "Refresh token"
// @Success      201      {object}  TokenPairResponse
// @Failure      401      {object}  validation.ErrorResponse
// @Router       /token/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	user, err := h.tokens.FindUser(ctx, model.ScopeRefresh, req.RefreshToken, h.now())
	if err != nil {
		writeError(c, http.StatusUnauthorized,
			"INVALID_REFRESH_TOKEN",
			"invalid or expired refresh token",
		)
		return
	}

	auth, err := model.GenerateToken(user.ID, h.tokenTTL, model.ScopeAuthentication)
	if err == nil {
		err = h.tokens.Insert(ctx, auth)
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"TOKEN_ISSUE_FAILED",
			"failed to issue token",
		)
		return
	}

	var resp TokenPairResponse
	resp.Data.Token = auth.Plaintext
	resp.Data.TokenExpiry = auth.Expiry.UTC().Format(time.RFC3339)
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) authenticate(ctx context.Context, c *gin.Context, username, password string) (*model.User, error) {
	user, err := h.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusUnauthorized,
				"INVALID_CREDENTIALS",
				"invalid username or password",
			)
			return nil, err
		}
		writeError(c, http.StatusInternalServerError,
			"LOGIN_FAILED",
			"failed to authenticate",
		)
		return nil, err
	}

	ok, err := user.PasswordMatches(password)
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"LOGIN_FAILED",
			"failed to authenticate",
		)
		return nil, err
	}
	if !ok {
		writeError(c, http.StatusUnauthorized,
			"INVALID_CREDENTIALS",
			"invalid username or password",
		)
		return nil, errors.New("password mismatch")
	}
	return user, nil
}
