package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/TusharChow20/project-Chef-Lokal/internal/identity"
	"github.com/TusharChow20/project-Chef-Lokal/internal/lifecycle"
	"github.com/TusharChow20/project-Chef-Lokal/internal/middleware"
	"github.com/TusharChow20/project-Chef-Lokal/internal/remote"
	"github.com/TusharChow20/project-Chef-Lokal/internal/service"
	"github.com/TusharChow20/project-Chef-Lokal/internal/session"
	"github.com/TusharChow20/project-Chef-Lokal/internal/upload"
)

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, remote.ErrUnauthorized),
		errors.Is(err, remote.ErrNoCredential),
		errors.Is(err, session.ErrSessionEnded),
		errors.Is(err, session.ErrInvalidToken),
		errors.Is(err, identity.ErrWrongPassword),
		errors.Is(err, identity.ErrUserNotFound):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotChef),
		errors.Is(err, lifecycle.ErrAccountRestricted),
		errors.Is(err, lifecycle.ErrCannotFlagAdmin):
		return http.StatusForbidden

	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrReviewNotFound),
		errors.Is(err, service.ErrFavoriteNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrMealNotFound),
		errors.Is(err, remote.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, lifecycle.ErrRequestPending),
		errors.Is(err, lifecycle.ErrAlreadyHasRole),
		errors.Is(err, lifecycle.ErrAlreadyFraud),
		errors.Is(err, lifecycle.ErrNotPending),
		errors.Is(err, lifecycle.ErrTerminalState),
		errors.Is(err, service.ErrAlreadyFavorite),
		errors.Is(err, service.ErrSubmissionInProgress),
		errors.Is(err, identity.ErrEmailExists),
		errors.Is(err, remote.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrPaymentRequired),
		errors.Is(err, lifecycle.ErrPaymentNotAllowed),
		errors.Is(err, lifecycle.ErrUnknownStatus),
		errors.Is(err, service.ErrPaymentNotVerified):
		return http.StatusUnprocessableEntity

	case errors.Is(err, lifecycle.ErrInvalidRating),
		errors.Is(err, lifecycle.ErrInvalidReviewText),
		errors.Is(err, lifecycle.ErrInvalidPrice),
		errors.Is(err, lifecycle.ErrNoIngredients),
		errors.Is(err, lifecycle.ErrInvalidQuantity),
		errors.Is(err, lifecycle.ErrInvalidRoleType),
		errors.Is(err, service.ErrImageRequired),
		errors.Is(err, upload.ErrEmptyImage),
		errors.Is(err, identity.ErrWeakPassword):
		return http.StatusBadRequest

	case errors.Is(err, identity.ErrTooManyAttempts):
		return http.StatusTooManyRequests

	case errors.Is(err, service.ErrDecisionRolledBack),
		errors.Is(err, service.ErrDecisionIncomplete),
		errors.Is(err, upload.ErrUploadFailed),
		errors.Is(err, identity.ErrNetwork),
		errors.Is(err, identity.ErrProviderRejected):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// respondError escribe el error con el status que le corresponde. Un 401
// lleva al cliente de vuelta al login.
func respondError(c *gin.Context, err error) {
	code := mapErrorToStatusCode(err)
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		_ = c.Error(err)
	}

	body := gin.H{"error": err.Error()}
	if code == http.StatusUnauthorized {
		body["redirect"] = middleware.LoginPath
	}
	c.JSON(code, body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// caller arma el Caller desde la sesión que dejó AuthMiddleware.
func caller(c *gin.Context) (service.Caller, bool) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no session", "redirect": middleware.LoginPath})
		return service.Caller{}, false
	}
	return service.Caller{SessionID: s.ID, Email: s.Email, Name: s.Name, Role: s.Role}, true
}

// IdempotencyHeader lo manda el cliente para que un reintento no duplique la escritura.
const IdempotencyHeader = "Idempotency-Key"

func idempotencyKey(c *gin.Context) string {
	return c.GetHeader(IdempotencyHeader)
}
