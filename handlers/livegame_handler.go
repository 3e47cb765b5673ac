package handlers

import (
	"net/http"

	"github.com/hexisle/island-conquest/services"
)

type LiveGameHandler struct {
	liveGameService services.LiveGameService
}

func NewLiveGameHandler(lgs services.LiveGameService) *LiveGameHandler {
	return &LiveGameHandler{liveGameService: lgs}
}

// GetByIDHandler handles GET /games/{gameID}
func (h *LiveGameHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.liveGameService.GetLiveGame(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
