package handlers

import (
	"SalvadoDental/middlewares"
	"SalvadoDental/services"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto its HTTP status.
func respondError(c *gin.Context, err error) {
	var (
		validationErr  *services.ValidationError
		stateErr       *services.InvalidStateError
		notFoundErr    *services.NotFoundError
		authErr        *services.AuthError
		persistenceErr *services.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		middlewares.HttpError(c, validationErr.Message, http.StatusBadRequest, err)
	case errors.As(err, &stateErr):
		middlewares.HttpError(c, stateErr.Error(), http.StatusConflict, err)
	case errors.As(err, &notFoundErr):
		middlewares.HttpError(c, notFoundErr.Error(), http.StatusNotFound, err)
	case errors.As(err, &authErr):
		middlewares.HttpError(c, authErr.Message, http.StatusUnauthorized, err)
	case errors.As(err, &persistenceErr):
		middlewares.HttpError(c, persistenceErr.Error(), http.StatusBadGateway, err)
	default:
		middlewares.HttpError(c, "Internal server error", http.StatusInternalServerError, err)
	}
}

// actorFromContext returns the authenticated profile set by the token middleware.
func actorFromContext(c *gin.Context) (services.Actor, bool) {
	profileID, err := middlewares.ExtractProfileIDFromContext(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, "Missing session", http.StatusUnauthorized, err)
		return services.Actor{}, false
	}
	role, err := middlewares.ExtractProfileRoleFromContext(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, "Missing session", http.StatusUnauthorized, err)
		return services.Actor{}, false
	}
	return services.Actor{ProfileID: profileID, Role: role}, true
}
