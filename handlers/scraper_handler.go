package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/websense/RPL/config"
	"github.com/websense/RPL/scraper"
	"github.com/websense/RPL/utils"
)

// GetUnitMetadata serves GET /api/uwa/{code}: handbook metadata for one unit,
// used by the form to autofill UWA unit fields.
func GetUnitMetadata(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	ctx, cancel := context.WithTimeout(r.Context(), config.ScrapeTimeout)
	defer cancel()

	meta, err := unitFetcher.Fetch(ctx, code)
	if err != nil {
		var invalid *scraper.InvalidCodeError
		if !errors.As(err, &invalid) {
			log.Printf("GetUnitMetadata: fetch failed for %q: %v", code, err)
		}
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, meta)
}
