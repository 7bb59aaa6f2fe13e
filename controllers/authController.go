package controllers

import (
	"SalvadoDental/handlers"
	"SalvadoDental/middlewares"
	"SalvadoDental/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Handler *handlers.AuthHandler
	tokens  *utils.TokenMaker
}

// NewAuthController creates a new AuthController with the given AuthHandler
func NewAuthController(authHandler *handlers.AuthHandler, tokens *utils.TokenMaker) *AuthController {
	return &AuthController{
		Handler: authHandler,
		tokens:  tokens,
	}
}

// RegisterRoutes initializes all authentication routes directly on the router
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	// Public routes: No session required
	router.POST("/auth/register", ac.Handler.Register)
	router.POST("/auth/confirm", ac.Handler.ConfirmEmail)
	router.POST("/auth/resend-confirmation", ac.Handler.ResendConfirmation)
	router.POST("/auth/login", ac.Handler.Login)
	router.POST("/auth/refresh-token", ac.Handler.RefreshToken)

	// Protected routes: Requires a valid session token
	authGroup := router.Group("/auth").Use(middlewares.TokenAuthMiddleware(ac.tokens))
	{
		authGroup.GET("/session", ac.Handler.Session)
		authGroup.POST("/logoff", ac.Handler.Logoff)
	}
}
