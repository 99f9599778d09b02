package handlers

import (
	"net/http"

	"github.com/websense/RPL/utils"
	"github.com/websense/RPL/websocket"
)

// ReviewFeed serves GET /api/ws/reviews. Browsers cannot set an Authorization
// header on a websocket handshake, so the token travels as a query parameter.
func ReviewFeed(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "missing token")
		return
	}

	claims, err := utils.ValidateJWT(token)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	websocket.ServeWS(w, r, claims.Username, claims.ViewUnitCode)
}
