package handlers

import (
	"net/http"

	"catframe/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest is the OAuth2 password-flow form. JSON bodies are accepted too.
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"correct-horse"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Username string `json:"username" example:"alice"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// @Summary      Log in (OAuth2 password flow)
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      200  {object}  TokenResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/token [post]
func (h *Handler) login(c *gin.Context) {
	var input LoginRequest
	if err := c.ShouldBind(&input); err != nil {
		h.log.Infow("auth_bad_request_body", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	token, err := h.services.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		h.opts.Metrics.AuthEvent("login", false)
		h.writeServiceError(c, err, "auth_login_failed", "username", input.Username)
		return
	}

	h.opts.Metrics.AuthEvent("login", true)
	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// @Summary      Register a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      RegisterRequest  true  "Credentials"
// @Success      201   {object}  models.UserResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      422   {object}  ValidationErrorResponse
// @Router       /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var input RegisterRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	u, err := h.services.Register(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		h.opts.Metrics.AuthEvent("register", false)
		h.writeServiceError(c, err, "auth_register_failed", "username", input.Username)
		return
	}

	h.opts.Metrics.AuthEvent("register", true)
	h.log.Infow("auth_registered", "user_id", u.ID, "username", u.Username)
	c.JSON(http.StatusCreated, u.Public())
}

// @Summary      Request a password reset token
// @Description  Always answers with the same message so account existence is not revealed.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      ForgotPasswordRequest  true  "Username"
// @Success      200   {object}  map[string]string
// @Failure      422   {object}  ValidationErrorResponse
// @Router       /auth/forgot-password [post]
func (h *Handler) forgotPassword(c *gin.Context) {
	var input ForgotPasswordRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	ticket, err := h.services.RequestPasswordReset(c.Request.Context(), input.Username)
	if err != nil {
		h.opts.Metrics.AuthEvent("forgot_password", false)
		h.writeServiceError(c, err, "auth_forgot_password_failed")
		return
	}

	h.opts.Metrics.AuthEvent("forgot_password", true)
	resp := gin.H{"message": ticket.Message}
	if h.opts.DebugEchoResetToken && ticket.Token != "" {
		resp["reset_token_for_testing"] = ticket.Token
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Reset a password with a reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      ResetPasswordRequest  true  "Token and new password"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  ErrorResponse
// @Failure      422   {object}  ValidationErrorResponse
// @Router       /auth/reset-password [post]
func (h *Handler) resetPassword(c *gin.Context) {
	var input ResetPasswordRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	if err := h.services.ResetPassword(c.Request.Context(), input.Token, input.NewPassword); err != nil {
		h.opts.Metrics.AuthEvent("reset_password", false)
		h.writeServiceError(c, err, "auth_reset_password_failed")
		return
	}

	h.opts.Metrics.AuthEvent("reset_password", true)
	c.JSON(http.StatusOK, gin.H{"message": service.PasswordResetMessage})
}

// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  models.UserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/users/me [get]
// @Security     BearerAuth
func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c).Public())
}
