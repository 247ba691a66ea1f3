package handler

import (
	"net/http"

	"github.com/textchan-dev/textchan/shared/utils"
)

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.status.Get(r.Context()))
}
