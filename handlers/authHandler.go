package handlers

import (
	"SalvadoDental/middlewares"
	"SalvadoDental/services"
	"SalvadoDental/utils"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register handles new patient registration
func (h *AuthHandler) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}

	profile, err := h.service.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, profile, http.StatusCreated)
}

// ConfirmEmail checks the code mailed at registration.
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	var data struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.ShouldBindJSON(&data); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}

	if err := h.service.ConfirmEmail(c.Request.Context(), data.Email, data.Code); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *AuthHandler) ResendConfirmation(c *gin.Context) {
	var data struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&data); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}

	if err := h.service.ResendConfirmation(c.Request.Context(), data.Email); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// Login authenticates the profile and returns tokens along with profile info
func (h *AuthHandler) Login(c *gin.Context) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&credentials); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}

	profile, accessToken, refreshToken, err := h.service.Login(c.Request.Context(), credentials.Email, credentials.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SetAuthCookies(c, accessToken, refreshToken)
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"profile":      profile,
	})
}

// Session returns the profile behind the current access token.
func (h *AuthHandler) Session(c *gin.Context) {
	session, err := h.service.Session(c.Request.Context(), middlewares.AccessTokenFromRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": session.Profile, "role": session.Role})
}

// RefreshToken exchanges the refresh token for a new access token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var data struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = c.ShouldBindJSON(&data)
	if data.RefreshToken == "" {
		if cookie, err := c.Cookie(utils.RefreshTokenCookie); err == nil {
			data.RefreshToken = cookie
		}
	}
	if data.RefreshToken == "" {
		middlewares.HttpError(c, "Refresh token is required", http.StatusBadRequest, errors.New("missing refresh token"))
		return
	}

	accessToken, err := h.service.Refresh(c.Request.Context(), data.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SetAccessCookie(c, accessToken)
	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

// Logoff logs the profile out by clearing cookies
func (h *AuthHandler) Logoff(c *gin.Context) {
	utils.ClearAuthCookies(c)
	c.Status(http.StatusOK)
}
