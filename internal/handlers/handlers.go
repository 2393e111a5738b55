// Package handlers wires the HTTP surface to the directory services.
package handlers

import (
	"errors"
	"log"
	"net/http"

	"linkdir/internal/auth"
	"linkdir/internal/services"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// ActorMiddleware parses the Authorization header into an ActorContext and
// stores it on the request. Missing or invalid tokens yield an anonymous
// actor; individual operations decide what that means.
func ActorMiddleware(verifier *auth.SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := verifier.Actor(c.GetHeader("Authorization"))
		c.Set(actorKey, actor)
		c.Next()
	}
}

// currentActor returns the actor attached by ActorMiddleware.
func currentActor(c *gin.Context) auth.ActorContext {
	if value, exists := c.Get(actorKey); exists {
		if actor, ok := value.(auth.ActorContext); ok {
			return actor
		}
	}
	return auth.ActorContext{}
}

// respondError maps a service error to an HTTP status and a machine-readable
// kind. Storage errors are reported generically; internal detail stays in the
// logs.
func respondError(c *gin.Context, err error) {
	kind := services.ErrorKind(err)

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation failed",
			"kind":   kind,
			"fields": verr.Fields,
		})
		return
	}

	status := http.StatusInternalServerError
	message := "something went wrong, please try again"
	if kind == "storage" {
		log.Printf("Request failed: %v", err)
	}

	switch kind {
	case "not_found":
		status, message = http.StatusNotFound, "not found"
	case "already_processed":
		status, message = http.StatusConflict, "submission was already reviewed"
	case "not_authorized":
		status, message = http.StatusForbidden, "not authorized"
	case "email_not_verified":
		status, message = http.StatusForbidden, "please verify your email first"
	case "rate_limited":
		status, message = http.StatusTooManyRequests, "too many requests, slow down"
	case "slug_exhausted":
		status, message = http.StatusConflict, "could not assign an identifier, try again"
	}

	c.JSON(status, gin.H{"error": message, "kind": kind})
}
