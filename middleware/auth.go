package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/websense/RPL/database"
	"github.com/websense/RPL/models"
	"github.com/websense/RPL/utils"
)

// AuthMiddleware authenticates staff requests via the Authorization bearer
// token and places {username, viewUnitcode} on the request context. Unit
// coordinator accounts carry their unit code as scope; the student-services
// account has an empty scope and sees every record.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// WebSocket upgrades authenticate via query token in the handler.
		if r.Header.Get("Upgrade") == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateJWT(tokenString)
		if err != nil {
			log.Printf("AuthMiddleware: JWT validation failed: %v", err)
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		var account models.Account
		err = database.DB().Collection("accounts").
			FindOne(r.Context(), bson.M{"username": claims.Username}).
			Decode(&account)
		if err != nil {
			log.Printf("AuthMiddleware: account %q not found: %v", claims.Username, err)
			utils.RespondWithError(w, http.StatusUnauthorized, "Account not found")
			return
		}

		ctx := context.WithValue(r.Context(), "username", account.Username)
		ctx = context.WithValue(ctx, "viewUnitcode", account.ViewUnitCode)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches identity when a valid token is present but never
// rejects. Used by /api/whoami, which answers anonymous callers too.
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Upgrade") == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := utils.ValidateJWT(tokenString)
			if err == nil {
				ctx := context.WithValue(r.Context(), "username", claims.Username)
				ctx = context.WithValue(ctx, "viewUnitcode", claims.ViewUnitCode)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}
