package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/websense/RPL/config"
	"github.com/websense/RPL/models"
	"github.com/websense/RPL/utils"
)

// Login authenticates staff. Two account kinds exist: the student-services
// admin, and unit coordinator accounts whose username is their unit code.
// Both are created on first login, matching the original deployment where
// accounts were provisioned lazily.
func Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Remember bool   `json:"remember"`
	}
	if err := utils.ParseJSON(r, &creds); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "username and password required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	switch {
	case strings.EqualFold(creds.Username, models.AdminUsername):
		loginAccount(ctx, w, models.AdminUsername, creds.Password, "")
	case isUnitCodeValid(ctx, creds.Username):
		code := strings.ToUpper(creds.Username)
		loginAccount(ctx, w, code, creds.Password, code)
	default:
		utils.RespondWithError(w, http.StatusUnauthorized, "Login failed: invalid account")
	}
}

// loginAccount finds or creates the account, verifies the password and issues
// a token.
func loginAccount(ctx context.Context, w http.ResponseWriter, username, password, viewUnitCode string) {
	var account models.Account
	err := accountCollection.FindOne(ctx, bson.M{"username": username}).Decode(&account)
	if err == mongo.ErrNoDocuments {
		hash, hashErr := utils.HashPassword(password)
		if hashErr != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create account")
			return
		}
		account = models.Account{
			Username:     username,
			PasswordHash: hash,
			ViewUnitCode: viewUnitCode,
			CreatedAt:    time.Now().UTC(),
		}
		if _, insErr := accountCollection.InsertOne(ctx, account); insErr != nil {
			log.Printf("Login: account create failed: %v", insErr)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create account")
			return
		}
	} else if err != nil {
		log.Printf("Login: account lookup failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Authentication service unavailable")
		return
	} else if !utils.CheckPasswordHash(password, account.PasswordHash) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Incorrect password")
		return
	}

	token, err := utils.GenerateJWT(account.Username, account.ViewUnitCode)
	if err != nil {
		log.Printf("Login: JWT generation failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"token":         token,
		"view_unitcode": account.ViewUnitCode,
	})
}

// isUnitCodeValid accepts usernames that are real handbook unit codes: the
// pattern must match, and the handbook must answer for the code.
func isUnitCodeValid(ctx context.Context, username string) bool {
	fetchCtx, cancel := context.WithTimeout(ctx, config.ScrapeTimeout)
	defer cancel()

	meta, err := unitFetcher.Fetch(fetchCtx, username)
	return err == nil && meta.Code != ""
}

// Logout is stateless on the server; the client discards its token.
func Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})

	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Whoami reports the caller's identity and coordinator scope, or nulls when
// anonymous. Always 200 so the UI can render either state.
func Whoami(w http.ResponseWriter, r *http.Request) {
	username, _ := r.Context().Value("username").(string)
	if username == "" {
		utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"username":      nil,
			"view_unitcode": nil,
		})
		return
	}

	viewUnitCode, _ := r.Context().Value("viewUnitcode").(string)
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"username":      username,
		"view_unitcode": viewUnitCode,
	})
}
