package handlers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/websense/RPL/database"
	"github.com/websense/RPL/utils"
)

// HealthCheck reports process and database liveness.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	dbStatus := "ok"
	if err := database.Client.Ping(ctx, readpref.Primary()); err != nil {
		dbStatus = "unreachable"
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": dbStatus,
	})
}
