package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Daskott/zantag/colors"
	"github.com/Daskott/zantag/server/auth"
	"github.com/Daskott/zantag/server/metrics"
	"github.com/Daskott/zantag/server/models"
	"github.com/Daskott/zantag/server/ratelimit"
)

const decodedJWTKey = RequestContextKey("decodedJWT")

// Paths a signed in user may reach before verifying their email.
var unverifiedPaths = map[string]bool{
	"/api/v1/me":          true,
	"/api/v1/me/password": true,
}

type ResponseWriterWithStatus struct {
	http.ResponseWriter
	Status int
}

func (r *ResponseWriterWithStatus) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		responseWriter := &ResponseWriterWithStatus{
			ResponseWriter: w,
			Status:         200,
		}

		defer func() {
			metrics.HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(responseWriter.Status)).Inc()
			logg.Infof("%v %v %v %v",
				r.Method,
				r.RequestURI,
				colors.Status(responseWriter.Status),
				colors.Yellow(fmt.Sprintf("[%v]", time.Since(start))))
		}()

		next.ServeHTTP(responseWriter, r)
	})
}

func initialContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		// Add decoded token to request context
		ctx := context.WithValue(r.Context(), decodedJWTKey, decodeAndVerifyAuthHeader(r.Header.Get("Authorization")))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func protectedRouteMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decodedJWT := decodedJWTFromContext(r)
		if decodedJWT.ErrorMsg != "" {
			writeErrors(w, http.StatusUnauthorized, decodedJWT.ErrorMsg)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// verifiedEmailMiddleware keeps users with an unverified email out of
// everything but their account basics.
func verifiedEmailMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		if !user.IsEmailVerified && !unverifiedPaths[r.URL.Path] {
			writeErrors(w, http.StatusForbidden, "email is not verified")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func adminRouteMiddleware(next http.Handler) http.Handler {
	return rolesRouteMiddleware(next, models.SUPER_ADMIN_ROLE)
}

func businessAdminRouteMiddleware(next http.Handler) http.Handler {
	return rolesRouteMiddleware(next, models.SUPER_ADMIN_ROLE, models.BUSINESS_ADMIN_ROLE)
}

func rolesRouteMiddleware(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		for _, role := range roles {
			if user.RoleName() == role {
				next.ServeHTTP(w, r)
				return
			}
		}

		writeErrors(w, http.StatusForbidden, "action is forbidden")
	})
}

// rateLimitMiddleware rejects callers over the bucket's limit, keyed by keyFn.
func rateLimitMiddleware(bucket string, keyFn func(r *http.Request) string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, err := limiter.Allow(r.Context(), bucket, keyFn(r))
		if err != nil {
			logg.Warn(err)
		}

		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(ratelimit.WINDOW.Seconds())))
			writeErrors(w, http.StatusTooManyRequests, "too many requests, try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func decodeAndVerifyAuthHeader(authHeaderValue string) DecodedJWT {
	authHeaderList := strings.Split(authHeaderValue, "Bearer ")
	if len(authHeaderList) < 2 {
		return DecodedJWT{ErrorMsg: "no token provided"}
	}

	tokenClaims, err := auth.DecodeJWT(authHeaderList[1], authKeyPair)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	// validate that the user account still exists
	user, err := models.FindUserBy("id", tokenClaims.Subject)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	return DecodedJWT{Claims: tokenClaims, User: user}
}

func decodedJWTFromContext(r *http.Request) DecodedJWT {
	decodedJWT, _ := r.Context().Value(decodedJWTKey).(DecodedJWT)
	return decodedJWT
}

// currentUser returns the signed in user, only valid behind protectedRouteMiddleware.
func currentUser(r *http.Request) *models.User {
	return decodedJWTFromContext(r).User
}
